package vaulttest

import (
	"context"
	"fmt"

	"github.com/iov-one/vault"
)

// CtxAuth implements x.Authenticator by reading the signers stored in the
// context under Key. Use SetConditions to sign a context.
type CtxAuth struct {
	Key string
}

// SetConditions returns a copy of ctx signed by given conditions. The first
// one is the main signer.
func (a *CtxAuth) SetConditions(ctx vault.Context, signers ...vault.Condition) vault.Context {
	return context.WithValue(ctx, a.Key, signers)
}

func (a *CtxAuth) GetConditions(ctx vault.Context) []vault.Condition {
	val := ctx.Value(a.Key)
	if val == nil {
		return nil
	}
	conds, ok := val.([]vault.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []vault.Condition got %T", val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx vault.Context, addr vault.Address) bool {
	for _, c := range a.GetConditions(ctx) {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}
