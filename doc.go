/*
Package vault defines the common interfaces and primitives that tie together
the ledger extensions found under x/, as well as implementations of some of
the simpler components (when interfaces would be too much overhead).

Request scoped information, such as the current time and the logger, is
passed through context.Context. There exist two functions for every XYZ of
type T that we want to support in Context:

  WithXYZ(Context, T) Context
  XYZ(Context) (val T, err error)   or   GetXYZ(Context) T

WithXYZ panics if the value was previously set to avoid lower-level modules
overwriting the value.
*/
package vault
