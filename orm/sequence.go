package orm

import (
	"encoding/binary"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
)

// Sequence maintains a counter and generates a series of identifiers. The
// first value handed out is 0. Encoded values preserve the numeric order
// when compared with bytes.Compare.
type Sequence struct {
	id []byte
}

// NewSequence returns a sequence counter. Sequence is using following pattern
// to construct a key:
//    _s.<bucket>:<name>
func NewSequence(bucket, name string) Sequence {
	return Sequence{
		id: []byte("_s." + bucket + ":" + name),
	}
}

// Next returns the current value of the sequence and advances it. Values
// are never handed out twice.
func (s Sequence) Next(db vault.KVStore) (uint64, error) {
	val, err := s.Current(db)
	if err != nil {
		return 0, err
	}
	if val == ^uint64(0) {
		return 0, errors.Wrap(errors.ErrOverflow, "sequence exhausted")
	}
	if err := db.Set(s.id, EncodeSequence(val+1)); err != nil {
		return 0, errors.Wrap(err, "store sequence")
	}
	return val, nil
}

// Current returns the value that the next call to Next will hand out. This
// is the same as the number of values handed out so far.
func (s Sequence) Current(db vault.ReadOnlyKVStore) (uint64, error) {
	raw, err := db.Get(s.id)
	if err != nil {
		return 0, errors.Wrap(err, "load sequence")
	}
	if raw == nil {
		return 0, nil
	}
	if err := ValidateSequence(raw); err != nil {
		return 0, err
	}
	return DecodeSequence(raw), nil
}

// DecodeSequence reads a big endian encoded sequence value.
func DecodeSequence(bz []byte) uint64 {
	return binary.BigEndian.Uint64(bz)
}

// EncodeSequence returns an 8 byte big endian representation of val.
func EncodeSequence(val uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, val)
	return bz
}
