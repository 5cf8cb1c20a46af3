/*
Package x contains the extensions of the vault ledger.

Sub-packages implement the domain: x/cash moves balances, x/bond keeps
time-locked bonds and x/sigs authenticates callers. This package holds the
Authenticator abstraction they share.
*/
package x
