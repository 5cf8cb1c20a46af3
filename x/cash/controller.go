package cash

import (
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/orm"
)

// CoinMover is an interface for moving coins between accounts.
type CoinMover interface {
	// MoveCoins removes funds from the source account and adds them to
	// the destination account. This operation is atomic.
	MoveCoins(db vault.KVStore, src, dest vault.Address, amount coin.Coin) error
}

// CoinIssuer creates or destroys funds.
type CoinIssuer interface {
	IssueCoins(db vault.KVStore, dest vault.Address, amount coin.Coin) error
}

// Balancer reads the funds held by an account.
type Balancer interface {
	Balance(db vault.ReadOnlyKVStore, addr vault.Address) (coin.Coins, error)
}

// Controller is the functionality needed by cash.Handler and cash.Decorator.
// BaseController should work plenty fine, but you can add other logic if so
// desired
type Controller interface {
	CoinMover
	CoinIssuer
	Balancer
}

// BaseController is a simple implementation of controller
// wallet must return something that supports AsSet
type BaseController struct {
	bucket orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller operating on the default wallet
// bucket.
func NewController() BaseController {
	return BaseController{bucket: NewBucket()}
}

// Balance returns the coins held by an address. ErrNotFound is returned for
// an unknown address.
func (c BaseController) Balance(db vault.ReadOnlyKVStore, addr vault.Address) (coin.Coins, error) {
	var set Set
	if err := c.bucket.One(db, addr, &set); err != nil {
		return nil, err
	}
	return coin.Coins(set.Coins), nil
}

// MoveCoins moves the given amount from src to dest.
// If src doesn't exist, or doesn't have sufficient
// coins, it fails.
func (c BaseController) MoveCoins(db vault.KVStore, src, dest vault.Address, amount coin.Coin) error {
	if !amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive amount %s", amount)
	}
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}

	var sender Set
	switch err := c.bucket.One(db, src, &sender); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		return errors.Wrapf(errors.ErrEmpty, "empty account %s", src)
	default:
		return errors.Wrap(err, "load sender")
	}
	if !coin.Coins(sender.Coins).Contains(amount) {
		return errors.Wrapf(errors.ErrInsufficientAmount, "%s has less than %s", src, amount)
	}

	recipient, err := c.loadOrCreate(db, dest)
	if err != nil {
		return err
	}

	// Subtract first, so that moving to self sees the updated sender.
	if sender.Coins, err = coin.Coins(sender.Coins).Subtract(amount); err != nil {
		return err
	}
	if err := c.bucket.Put(db, src, &sender); err != nil {
		return errors.Wrap(err, "save sender")
	}
	if src.Equals(dest) {
		recipient = &sender
	}
	if recipient.Coins, err = coin.Coins(recipient.Coins).Add(amount); err != nil {
		return err
	}
	if err := c.bucket.Put(db, dest, recipient); err != nil {
		return errors.Wrap(err, "save recipient")
	}
	return nil
}

// IssueCoins attempts to add the given amount of coins to the destination
// address. A negative amount removes funds. The resulting balance must not
// be negative or overflow.
func (c BaseController) IssueCoins(db vault.KVStore, dest vault.Address, amount coin.Coin) error {
	if err := amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	recipient, err := c.loadOrCreate(db, dest)
	if err != nil {
		return err
	}
	if recipient.Coins, err = coin.Coins(recipient.Coins).Add(amount); err != nil {
		return err
	}
	if !coin.Coins(recipient.Coins).IsNonNegative() {
		return errors.Wrapf(errors.ErrInsufficientAmount, "%s cannot cover %s", dest, amount.Negative())
	}
	return c.bucket.Put(db, dest, recipient)
}

func (c BaseController) loadOrCreate(db vault.ReadOnlyKVStore, addr vault.Address) (*Set, error) {
	var set Set
	switch err := c.bucket.One(db, addr, &set); {
	case err == nil:
		return &set, nil
	case errors.ErrNotFound.Is(err):
		return &Set{Metadata: &vault.Metadata{Schema: 1}}, nil
	default:
		return nil, errors.Wrap(err, "load wallet")
	}
}
