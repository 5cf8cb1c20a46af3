package store

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/iov-one/vault/vaulttest/assert"
)

// TestSuite runs the same set of checks against any CacheableKVStore
// implementation. Both the in-memory store and the iavl backed store are
// verified with it.
type TestSuite struct {
	makeBase TestStoreConstructor
}

// TestStoreConstructor returns a fresh store and a function releasing it.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

// NewTestSuite returns a suite that creates stores with given constructor.
func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{makeBase: constructor}
}

// Run executes all checks of the suite as subtests of t.
func (s *TestSuite) Run(t *testing.T) {
	t.Run("get set", s.GetSet)
	t.Run("cache conflicts", s.CacheConflicts)
	t.Run("iterator", s.Iterator)
}

// GetSet checks that writes to a cache wrap are isolated until Write is
// called and that Discard drops them.
func (s *TestSuite) GetSet(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	owner, balance := []byte("cash:owner"), []byte("100 IOV")
	s.AssertGetHas(t, base, owner, nil, false)
	assert.Nil(t, base.Set(owner, balance))
	s.AssertGetHas(t, base, owner, balance, true)

	cache := base.CacheWrap()
	s.AssertGetHas(t, cache, owner, balance, true)

	custody, reserve := []byte("cash:custody"), []byte("5000 IOV")
	assert.Nil(t, cache.Set(custody, reserve))
	s.AssertGetHas(t, cache, custody, reserve, true)
	s.AssertGetHas(t, base, custody, nil, false)

	assert.Nil(t, cache.Write())
	s.AssertGetHas(t, base, custody, reserve, true)

	discarded := base.CacheWrap()
	assert.Nil(t, discarded.Set(bondKey(1), []byte("pending")))
	assert.Nil(t, discarded.Delete(owner))
	discarded.Discard()
	s.AssertGetHas(t, base, bondKey(1), nil, false)
	s.AssertGetHas(t, base, owner, balance, true)

	removal := base.CacheWrap()
	assert.Nil(t, removal.Delete(owner))
	s.AssertGetHas(t, base, owner, balance, true)
	assert.Nil(t, removal.Write())
	s.AssertGetHas(t, base, owner, nil, false)
}

// CacheConflicts checks that a cache wrap can overwrite and delete values
// of its parent without affecting it before Write.
func (s *TestSuite) CacheConflicts(t *testing.T) {
	cases := map[string]struct {
		parentOps     []Op
		childOps      []Op
		parentQueries []Model
		childQueries  []Model
	}{
		"overwrite, delete and add": {
			parentOps: []Op{
				SetOp(bondKey(1), []byte("open")),
				SetOp(bondKey(2), []byte("open")),
			},
			childOps: []Op{
				SetOp(bondKey(1), []byte("settled")),
				DelOp(bondKey(2)),
				SetOp(bondKey(3), []byte("open")),
			},
			parentQueries: []Model{
				Pair(bondKey(1), []byte("open")),
				Pair(bondKey(2), []byte("open")),
				Pair(bondKey(3), nil),
			},
			childQueries: []Model{
				Pair(bondKey(1), []byte("settled")),
				Pair(bondKey(2), nil),
				Pair(bondKey(3), []byte("open")),
			},
		},
		"delete then set again": {
			parentOps: []Op{SetOp(bondKey(7), []byte("a"))},
			childOps: []Op{
				DelOp(bondKey(7)),
				SetOp(bondKey(7), []byte("b")),
			},
			parentQueries: []Model{Pair(bondKey(7), []byte("a"))},
			childQueries:  []Model{Pair(bondKey(7), []byte("b"))},
		},
		"delete missing key": {
			childOps:      []Op{DelOp(bondKey(9))},
			parentQueries: []Model{Pair(bondKey(9), nil)},
			childQueries:  []Model{Pair(bondKey(9), nil)},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := s.makeBase()
			defer cleanup()

			for _, op := range tc.parentOps {
				assert.Nil(t, op.Apply(parent))
			}
			child := parent.CacheWrap()
			for _, op := range tc.childOps {
				assert.Nil(t, op.Apply(child))
			}

			for _, q := range tc.parentQueries {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
			for _, q := range tc.childQueries {
				s.AssertGetHas(t, child, q.Key, q.Value, q.Value != nil)
			}

			assert.Nil(t, child.Write())
			for _, q := range tc.childQueries {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
		})
	}
}

// Iterator checks ranged iteration in both directions over a cache wrap
// that merges pending writes and deletes with its parent.
func (s *TestSuite) Iterator(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	// Parent holds even bonds, child adds odd ones and drops every fourth.
	for i := uint64(0); i < 20; i += 2 {
		assert.Nil(t, base.Set(bondKey(i), []byte("parent")))
	}
	child := base.CacheWrap()
	for i := uint64(1); i < 20; i += 2 {
		assert.Nil(t, child.Set(bondKey(i), []byte("child")))
	}
	for i := uint64(0); i < 20; i += 4 {
		assert.Nil(t, child.Delete(bondKey(i)))
	}
	assert.Nil(t, child.Set(bondKey(2), []byte("child")))

	var all []uint64
	for i := uint64(1); i < 20; i++ {
		if i%4 != 0 {
			all = append(all, i)
		}
	}

	cases := map[string]struct {
		start, end []byte
		reverse    bool
		want       []uint64
	}{
		"full range": {
			want: all,
		},
		"from start": {
			start: bondKey(10),
			want:  []uint64{10, 11, 13, 14, 15, 17, 18, 19},
		},
		"until end": {
			end:  bondKey(6),
			want: []uint64{1, 2, 3, 5},
		},
		"bounded": {
			start: bondKey(5),
			end:   bondKey(11),
			want:  []uint64{5, 6, 7, 9, 10},
		},
		"full range reversed": {
			reverse: true,
			want:    reversed(all),
		},
		"bounded reversed": {
			start:   bondKey(5),
			end:     bondKey(11),
			reverse: true,
			want:    []uint64{10, 9, 7, 6, 5},
		},
		"empty range": {
			start: bondKey(8),
			end:   bondKey(9),
			want:  nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var iter Iterator
			var err error
			if tc.reverse {
				iter, err = child.ReverseIterator(tc.start, tc.end)
			} else {
				iter, err = child.Iterator(tc.start, tc.end)
			}
			assert.Nil(t, err)
			defer iter.Close()

			var got []uint64
			for ; iter.Valid(); assert.Nil(t, iter.Next()) {
				key := iter.Key()
				if !bytes.HasPrefix(key, []byte("bond:")) {
					t.Fatalf("unexpected key %q", key)
				}
				id := binary.BigEndian.Uint64(key[len("bond:"):])
				want := []byte("parent")
				if id%2 == 1 || id == 2 {
					want = []byte("child")
				}
				assert.Equal(t, want, iter.Value())
				got = append(got, id)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

// AssertGetHas checks both Get and Has results for a single key.
func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

func bondKey(id uint64) []byte {
	key := make([]byte, len("bond:")+8)
	copy(key, "bond:")
	binary.BigEndian.PutUint64(key[len("bond:"):], id)
	return key
}

func reversed(ids []uint64) []uint64 {
	res := make([]uint64, len(ids))
	for i, id := range ids {
		res[len(ids)-1-i] = id
	}
	return res
}
