package main

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/iov-one/vault/crypto"
	"github.com/iov-one/vault/errors"
)

var isKeyName = regexp.MustCompile(`^[a-zA-Z0-9_\-]{1,32}$`).MatchString

func keyPath(home, name string) (string, error) {
	if !isKeyName(name) {
		return "", errors.Wrapf(errors.ErrInput, "invalid key name %q", name)
	}
	return filepath.Join(home, "keys", name+".key"), nil
}

// createKey generates a new private key and stores its hex encoded seed.
// An existing key is never overwritten.
func createKey(home, name string) (*crypto.PrivateKey, error) {
	path, err := keyPath(home, name)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err == nil {
		return nil, errors.Wrapf(errors.ErrDuplicate, "key %q already exists", name)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	key := crypto.GenPrivKeyEd25519()
	raw := []byte(hex.EncodeToString(key.Seed()) + "\n")
	if err := ioutil.WriteFile(path, raw, 0600); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return key, nil
}

func loadKey(home, name string) (*crypto.PrivateKey, error) {
	path, err := keyPath(home, name)
	if err != nil {
		return nil, err
	}
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "key %q", name)
		}
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "key %q: %s", name, err)
	}
	key, err := crypto.PrivateKeyFromSeed(seed)
	if err != nil {
		return nil, errors.Wrapf(err, "key %q", name)
	}
	return key, nil
}
