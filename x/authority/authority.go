/*
Package authority lets handler code act on behalf of keyless principals.

A derived address has no private key, so no signature can ever authorize it.
Instead the extension that owns the address recomputes it from the full seed
list and places the matching condition in the context. Only in-process code
can do that: conditions decoded from a transaction never reach this context
key.
*/
package authority

import (
	"context"

	"github.com/iov-one/barter"
	"github.com/iov-one/barter/x"
)

type contextKey int

const (
	contextKeyDerived contextKey = iota
)

// Sign returns a context in which the address derived from ext and seeds is
// authorized, in addition to any derived address authorized before. The
// seeds must include the bump. A wrong seed produces a different address, so
// a ledger checking the expected authority rejects it.
func Sign(ctx barter.Context, ext string, seeds ...[]byte) (barter.Context, error) {
	cond, err := barter.DerivedCondition(ext, seeds...)
	if err != nil {
		return nil, err
	}
	if _, err := barter.CreateDerivedAddress(ext, seeds...); err != nil {
		return nil, err
	}
	prev := Authenticate{}.GetConditions(ctx)
	conds := make([]barter.Condition, 0, len(prev)+1)
	conds = append(conds, prev...)
	conds = append(conds, cond)
	return context.WithValue(ctx, contextKeyDerived, conds), nil
}

// Authenticate exposes the derived conditions placed in the context by Sign.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns the derived conditions of the current context.
func (Authenticate) GetConditions(ctx barter.Context) []barter.Condition {
	val, _ := ctx.Value(contextKeyDerived).([]barter.Condition)
	return val
}

// HasAddress returns true if the address was authorized with Sign.
func (a Authenticate) HasAddress(ctx barter.Context, addr barter.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
