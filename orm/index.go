package orm

import (
	"bytes"
	"math"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
)

// Indexer calculates the secondary index key for a given model. Returning
// nil means the model is not indexed.
type Indexer func(Model) ([]byte, error)

const nativeIdxPrefix = "_x."

// index is using the database native key ordering to maintain a secondary
// index. Each indexed entity is a single empty-valued key in format
//    _x.<index name><value><entity key>
// with each chunk prefixed by its length.
type index struct {
	name    string
	indexer Indexer
	unique  bool
}

func newIndex(bucket, name string, indexer Indexer, unique bool) *index {
	return &index{
		name:    bucket + "_" + name,
		indexer: indexer,
		unique:  unique,
	}
}

// Update moves the index entry of an entity. prev is nil on insert, next is
// nil on delete.
func (ix *index) Update(db vault.KVStore, key []byte, prev, next Model) error {
	var prevVal, nextVal []byte
	var err error
	if prev != nil {
		if prevVal, err = ix.indexer(prev); err != nil {
			return errors.Wrap(err, "indexer")
		}
	}
	if next != nil {
		if nextVal, err = ix.indexer(next); err != nil {
			return errors.Wrap(err, "indexer")
		}
	}
	if prev != nil && next != nil && bytes.Equal(prevVal, nextVal) {
		return nil
	}

	if prevVal != nil {
		k, err := packNativeIdxKey([][]byte{[]byte(ix.name), prevVal, key})
		if err != nil {
			return errors.Wrap(err, "build index key")
		}
		if err := db.Delete(k); err != nil {
			return errors.Wrap(err, "db delete")
		}
	}

	if nextVal != nil {
		if ix.unique {
			keys, err := ix.Keys(db, nextVal)
			if err != nil {
				return err
			}
			if len(keys) != 0 {
				return errors.Wrapf(errors.ErrDuplicate, "index %s", ix.name)
			}
		}
		k, err := packNativeIdxKey([][]byte{[]byte(ix.name), nextVal, key})
		if err != nil {
			return errors.Wrap(err, "build index key")
		}
		if err := db.Set(k, []byte{}); err != nil {
			return errors.Wrap(err, "db set")
		}
	}
	return nil
}

// Keys returns the keys of all entities indexed under value, ordered by
// the entity key.
func (ix *index) Keys(db vault.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	lookup, err := packNativeIdxKey([][]byte{[]byte(ix.name), value})
	if err != nil {
		return nil, errors.Wrap(err, "build index key")
	}
	// MaxUint8 is never used as a chunk length, so it bounds all keys
	// sharing the lookup prefix.
	end := make([]byte, len(lookup)+1)
	copy(end, lookup)
	end[len(end)-1] = math.MaxUint8

	it, err := db.Iterator(lookup, end)
	if err != nil {
		return nil, errors.Wrap(err, "index iterator")
	}
	defer it.Close()

	var keys [][]byte
	for it.Valid() {
		chunks, err := unpackNativeIdxKey(it.Key())
		if err != nil {
			return nil, err
		}
		if len(chunks) != 3 {
			return nil, errors.Wrapf(errors.ErrDatabase, "malformed index key %x", it.Key())
		}
		keys = append(keys, chunks[2])
		if err := it.Next(); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// packNativeIdxKey serializes chunks into an index key. Each chunk is
// prefixed with its length, encoded as a uint8 value. A key created from
// chunks "aaa", "" and "c" is represented as
//
//   _x.<3>aaa<0><1>c
func packNativeIdxKey(chunks [][]byte) ([]byte, error) {
	size := len(nativeIdxPrefix)
	for _, b := range chunks {
		size += len(b) + 1
	}
	res := make([]byte, 0, size)
	res = append(res, nativeIdxPrefix...)
	for _, b := range chunks {
		// MaxUint8 is reserved for the search purpose.
		if len(b) > math.MaxUint8-1 {
			return nil, errors.Wrapf(errors.ErrInput, "no chunk can be bigger than %d bytes", math.MaxUint8-1)
		}
		res = append(res, uint8(len(b)))
		res = append(res, b...)
	}
	return res, nil
}

// unpackNativeIdxKey decodes native index key and extracts all chunks that
// compose that key.
func unpackNativeIdxKey(b []byte) ([][]byte, error) {
	if !bytes.HasPrefix(b, []byte(nativeIdxPrefix)) {
		return nil, errors.Wrap(errors.ErrInput, "not a native index key")
	}
	b = b[len(nativeIdxPrefix):]
	res := make([][]byte, 0, 3)
	for len(b) > 0 {
		size := int(b[0])
		if len(b) < 1+size {
			return nil, errors.Wrap(errors.ErrInput, "malformed offset")
		}
		res = append(res, b[1:1+size])
		b = b[1+size:]
	}
	return res, nil
}
