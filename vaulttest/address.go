package vaulttest

import (
	"crypto/rand"
	"testing"

	"github.com/iov-one/vault"
)

// RandomAddr returns a valid random address generated on the fly.
func RandomAddr(t testing.TB) vault.Address {
	t.Helper()
	raw := make([]byte, vault.AddressLength)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("cannot generate a random address: %s", err)
	}
	return vault.Address(raw)
}
