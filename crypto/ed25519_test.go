package crypto

import (
	"bytes"
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/vaulttest/assert"
)

func TestEd25519Signing(t *testing.T) {
	key := GenPrivKeyEd25519()
	pub := key.PublicKey()

	issue := []byte("issue 1000 IOV at 5%")
	redeem := []byte("redeem bond 1")

	issueSig, err := key.Sign(issue)
	assert.Nil(t, err)
	redeemSig, err := key.Sign(redeem)
	assert.Nil(t, err)

	cases := map[string]struct {
		msg  []byte
		sig  *Signature
		want bool
	}{
		"issue":                {msg: issue, sig: issueSig, want: true},
		"redeem":               {msg: redeem, sig: redeemSig, want: true},
		"signature of another": {msg: issue, sig: redeemSig, want: false},
		"empty signature":      {msg: issue, sig: &Signature{}, want: false},
		"missing signature":    {msg: issue, sig: nil, want: false},
		"tampered message":     {msg: []byte("issue 9000 IOV at 5%"), sig: issueSig, want: false},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.want, pub.Verify(tc.msg, tc.sig))
		})
	}

	other := GenPrivKeyEd25519().PublicKey()
	if other.Verify(issue, issueSig) {
		t.Fatal("signature verified with a foreign key")
	}
}

func TestPublicKeyCondition(t *testing.T) {
	pub := GenPrivKeyEd25519().PublicKey()
	other := GenPrivKeyEd25519().PublicKey()

	assert.Nil(t, pub.Condition().Validate())
	if pub.Condition().Equals(other.Condition()) {
		t.Fatal("different keys share a condition")
	}

	ext, typ, data, err := pub.Condition().Parse()
	assert.Nil(t, err)
	assert.Equal(t, ExtensionName, ext)
	assert.Equal(t, "ed25519", typ)
	assert.Equal(t, pub.Ed25519, data)

	var empty PublicKey
	assert.Nil(t, empty.Condition())
	assert.Nil(t, empty.Address())

	raw, err := proto.Marshal(pub)
	assert.Nil(t, err)
	var read PublicKey
	assert.Nil(t, proto.Unmarshal(raw, &read))
	assert.Equal(t, pub.Address(), read.Address())
}

func TestPrivateKeyFromSeed(t *testing.T) {
	seed := bytes.Repeat([]byte{31}, 32)

	key, err := PrivateKeyFromSeed(seed)
	assert.Nil(t, err)
	assert.Equal(t, seed, key.Seed())

	again, err := PrivateKeyFromSeed(key.Seed())
	assert.Nil(t, err)
	assert.Equal(t, key.PublicKey().Address(), again.PublicKey().Address())

	for _, size := range []int{0, 1, 31, 33, 64} {
		if _, err := PrivateKeyFromSeed(make([]byte, size)); !errors.ErrInput.Is(err) {
			t.Fatalf("seed of %d bytes: want input error, got %+v", size, err)
		}
	}
}
