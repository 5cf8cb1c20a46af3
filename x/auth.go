package x

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
)

// Authenticator reveals who signed the operation carried by the context.
// Extensions receive one in their constructor so that the signature scheme
// can be swapped without touching them.
type Authenticator interface {
	// GetConditions returns every condition satisfied in ctx. The first
	// one is the main signer.
	GetConditions(vault.Context) []vault.Condition
	// HasAddress checks if any satisfied condition resolves to addr.
	HasAddress(vault.Context, vault.Address) bool
}

// MainSigner returns the first condition satisfied in ctx or nil.
func MainSigner(ctx vault.Context, auth Authenticator) vault.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// Caller returns the address of the main signer. ErrUnauthorized is
// returned when nobody signed.
func Caller(ctx vault.Context, auth Authenticator) (vault.Address, error) {
	signer := MainSigner(ctx, auth)
	if signer == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return signer.Address(), nil
}
