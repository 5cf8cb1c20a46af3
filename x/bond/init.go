package bond

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/x/cash"
)

const optKey = "bond"

// Genesis is the bond section of the genesis file.
type Genesis struct {
	// Custody overwrites the default custody account address.
	Custody vault.Address `json:"custody"`
	// Reserve is issued to the custody account to pay out the yield.
	Reserve []coin.Coin `json:"reserve"`
}

// Initializer funds the custody account with the yield reserve declared in
// the genesis file.
type Initializer struct {
	Issuer cash.CoinIssuer
}

var _ vault.Initializer = Initializer{}

func (i Initializer) FromGenesis(opts vault.Options, kv vault.KVStore) error {
	var gen Genesis
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return err
	}
	custody := CustodyAddress()
	if len(gen.Custody) != 0 {
		custody = gen.Custody
	}
	for n, c := range gen.Reserve {
		if !c.IsPositive() {
			return errors.Wrapf(errors.ErrAmount, "reserve %d: must be greater than zero", n)
		}
		if err := i.Issuer.IssueCoins(kv, custody, c); err != nil {
			return errors.Wrapf(err, "reserve %d", n)
		}
	}
	return nil
}

// ReadCustody returns the custody address declared in the genesis options,
// or CustodyAddress if none is declared.
func ReadCustody(opts vault.Options) (vault.Address, error) {
	var gen Genesis
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return nil, err
	}
	if len(gen.Custody) == 0 {
		return CustodyAddress(), nil
	}
	return gen.Custody, nil
}
