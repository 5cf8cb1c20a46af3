/*
Package errors implements custom error interfaces for vault.

The idea is to reuse as many errors from this package as possible and define
custom package errors when absolutely necessary. Extensions register their own
root errors with Register(code, description), see x/bond for an example.

For reusing errors use ErrXyz.New and ErrXyz.Newf, or Wrap an existing error
with errors.Wrap(err, "...") at the point of creation to ensure a stacktrace is
attached. If you wrap multiple times, only the first wrap records the
stacktrace.

Once you have an error, you can use fmt.Printf/Sprintf to get more context for
the error
	%s is just the error message
	%+v is the full stack trace

To test an error kind, always use the Is method of the root error:

	if errors.ErrNotFound.Is(err) { ... }
*/
package errors
