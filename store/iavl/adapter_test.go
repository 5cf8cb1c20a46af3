package iavl

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/vault/store"
	"github.com/iov-one/vault/vaulttest/assert"
)

func makeBase() (store.CacheableKVStore, func()) {
	commit := MemCommitStore()
	return commit.Adapter(), commit.Close
}

func TestAdapter(t *testing.T) {
	store.NewTestSuite(makeBase).Run(t)
}

func TestCommitOverwrite(t *testing.T) {
	suite := store.NewTestSuite(makeBase)
	commit := MemCommitStore()
	defer commit.Close()

	id, err := commit.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, int64(0), id.Version)

	parent := commit.CacheWrap()
	assert.Nil(t, parent.Set([]byte("one"), []byte("1")))
	assert.Nil(t, parent.Set([]byte("two"), []byte("2")))
	assert.Nil(t, parent.Write())
	id, err = commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), id.Version)
	if len(id.Hash) == 0 {
		t.Fatal("hash is empty")
	}

	child := commit.CacheWrap()
	assert.Nil(t, child.Set([]byte("one"), []byte("uno")))
	assert.Nil(t, child.Delete([]byte("two")))
	side := commit.CacheWrap()

	// side sees the unmodified state until the child is written
	suite.AssertGetHas(t, side, []byte("one"), []byte("1"), true)
	suite.AssertGetHas(t, side, []byte("two"), []byte("2"), true)
	suite.AssertGetHas(t, child, []byte("one"), []byte("uno"), true)
	suite.AssertGetHas(t, child, []byte("two"), nil, false)

	assert.Nil(t, child.Write())
	suite.AssertGetHas(t, side, []byte("one"), []byte("uno"), true)

	// committed state only changes on Commit
	got, err := commit.Get([]byte("one"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("1"), got)

	id, err = commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(2), id.Version)
	got, err = commit.Get([]byte("one"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("uno"), got)
}

func TestCommitStoreReload(t *testing.T) {
	dir, err := ioutil.TempDir("", "iavl-adapter-")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	first, err := NewCommitStore(dir, "vault")
	assert.Nil(t, err)
	cache := first.CacheWrap()
	assert.Nil(t, cache.Set([]byte("bond"), []byte("data")))
	assert.Nil(t, cache.Write())
	want, err := first.Commit()
	assert.Nil(t, err)

	// uncommitted changes are lost on reopen
	cache = first.CacheWrap()
	assert.Nil(t, cache.Set([]byte("lost"), []byte("data")))
	assert.Nil(t, cache.Write())
	first.Close()

	second, err := NewCommitStore(dir, "vault")
	assert.Nil(t, err)
	defer second.Close()

	got, err := second.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, want, got)

	val, err := second.Get([]byte("bond"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("data"), val)
	val, err = second.Get([]byte("lost"))
	assert.Nil(t, err)
	assert.Nil(t, val)
}
