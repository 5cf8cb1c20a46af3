package sigs

import (
	"crypto/sha512"
	"encoding/binary"
	"regexp"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/crypto"
	"github.com/iov-one/vault/errors"
)

// SignCodeV1 is the current way to prefix the bytes we use to build
// a signature
var SignCodeV1 = []byte{0, 0xCA, 0xFE, 0}

// IsValidChainID is the RegExp to ensure valid chain IDs
var IsValidChainID = regexp.MustCompile(`^[a-zA-Z0-9_\-]{6,20}$`).MatchString

// StdSignature binds a signature to the signer public key and its sequence.
type StdSignature struct {
	Pubkey    *crypto.PublicKey `protobuf:"bytes,1,opt,name=pubkey,proto3" json:"pubkey,omitempty"`
	Signature *crypto.Signature `protobuf:"bytes,2,opt,name=signature,proto3" json:"signature,omitempty"`
	Sequence  int64             `protobuf:"varint,3,opt,name=sequence,proto3" json:"sequence,omitempty"`
}

func (m *StdSignature) Reset()         { *m = StdSignature{} }
func (m *StdSignature) String() string { return proto.CompactTextString(m) }
func (*StdSignature) ProtoMessage()    {}

// Validate ensures the signature is complete.
func (s *StdSignature) Validate() error {
	var errs error
	if s.Sequence < 0 {
		errs = errors.AppendField(errs, "Sequence", ErrInvalidSequence)
	}
	if s.Pubkey == nil || len(s.Pubkey.Ed25519) == 0 {
		errs = errors.AppendField(errs, "Pubkey", errors.ErrEmpty)
	}
	if s.Signature == nil || len(s.Signature.Ed25519) == 0 {
		errs = errors.AppendField(errs, "Signature", errors.ErrEmpty)
	}
	return errs
}

// VerifySignature checks the signature of payload and bumps the signer
// sequence in the store. On success the signer condition is added to the
// returned context, so that Authenticate reports it.
func VerifySignature(ctx vault.Context, db vault.KVStore, sig *StdSignature, payload []byte, chainID string) (vault.Context, error) {
	if err := sig.Validate(); err != nil {
		return ctx, err
	}

	bucket := NewBucket()
	addr := sig.Pubkey.Address()
	var user UserData
	switch err := bucket.One(db, addr, &user); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		user = UserData{
			Metadata: &vault.Metadata{Schema: 1},
			Pubkey:   sig.Pubkey,
		}
	default:
		return ctx, errors.Wrap(err, "load user")
	}

	toSign, err := BuildSignBytes(payload, chainID, sig.Sequence)
	if err != nil {
		return ctx, err
	}
	if !user.Pubkey.Verify(toSign, sig.Signature) {
		return ctx, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}
	if err := user.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return ctx, err
	}
	if err := bucket.Put(db, addr, &user); err != nil {
		return ctx, errors.Wrap(err, "save user")
	}
	return withSigners(ctx, user.Pubkey.Condition()), nil
}

/*
BuildSignBytes combines all signed information into a single message:

version | len(chainID) | chainID      | nonce             | payload
4bytes  | uint8        | ascii string | int64 (bigendian) | serialized message

This is then prehashed with sha512 before fed into
the public key signing/verification step
*/
func BuildSignBytes(payload []byte, chainID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "negative")
	}
	if !IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}

	nonce := make([]byte, 8)
	binary.BigEndian.PutUint64(nonce, uint64(seq))

	output := make([]byte, 0, 4+1+len(chainID)+8+len(payload))
	output = append(output, SignCodeV1...)
	output = append(output, uint8(len(chainID)))
	output = append(output, chainID...)
	output = append(output, nonce...)
	output = append(output, payload...)

	hashed := sha512.Sum512(output)
	return hashed[:], nil
}

// Sign creates a signature of payload for given chain and sequence.
func Sign(signer crypto.Signer, payload []byte, chainID string, seq int64) (*StdSignature, error) {
	toSign, err := BuildSignBytes(payload, chainID, seq)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(toSign)
	if err != nil {
		return nil, err
	}
	return &StdSignature{
		Pubkey:    signer.PublicKey(),
		Signature: sig,
		Sequence:  seq,
	}, nil
}
