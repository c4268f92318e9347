/*
Package errors implements custom error interfaces for barter.

The idea is to reuse as many errors from this package as possible and define
custom package errors when absolutely necessary.

If you want to register a custom error - use Register(code, description).
To create an error instance, wrap one of the registered root errors:

	errors.Wrap(errors.ErrNotFound, "escrow")
	errors.Wrapf(errors.ErrConstraint, "mint %s", mint)

Code stands for ABCI error code, which allows to distinguish types of errors
on the client side and act accordingly.

Wrapping attaches a stacktrace at the point of the first wrap. Once you have an
error, you can use `fmt.Printf/Sprintf` to get more context for the error

	%s is just the error message
	%+v is the full stack trace
*/
package errors
