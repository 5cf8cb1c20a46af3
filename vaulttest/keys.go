package vaulttest

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/crypto"
)

// NewCondition returns the condition of a random ed25519 key.
func NewCondition() vault.Condition {
	return crypto.GenPrivKeyEd25519().PublicKey().Condition()
}
