package crypto

import (
	"github.com/iov-one/vault"
)

// ExtensionName is used for the Conditions we get from signatures
const ExtensionName = "sigs"

// PubKey represents a crypto public key we use
type PubKey interface {
	Verify(message []byte, sig *Signature) bool
	Condition() vault.Condition
}

// Signer is the functionality we use from a private key
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) (*Signature, error)
	PublicKey() *PublicKey
}

// Address returns the address derived from the public key condition, or nil
// for an empty key.
func (p *PublicKey) Address() vault.Address {
	c := p.Condition()
	if c == nil {
		return nil
	}
	return c.Address()
}
