package cash

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/orm"
)

// BucketName is where we store the balances
const BucketName = "cash"

// Set is the wallet of a single address: a normalized set of coins.
type Set struct {
	Metadata *vault.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Coins    []*coin.Coin    `protobuf:"bytes,2,rep,name=coins,proto3" json:"coins,omitempty"`
}

func (m *Set) Reset()         { *m = Set{} }
func (m *Set) String() string { return proto.CompactTextString(m) }
func (*Set) ProtoMessage()    {}

var _ orm.Model = (*Set)(nil)

// Validate requires that all coins are positive and in alphabetical order.
func (s *Set) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", s.Metadata.Validate())
	errs = errors.AppendField(errs, "Coins", coin.Coins(s.Coins).Validate())
	for i, c := range s.Coins {
		if c != nil && !c.IsPositive() {
			errs = errors.AppendField(errs, "Coins", errors.Wrapf(errors.ErrAmount, "coin %d is not positive", i))
		}
	}
	return errs
}

// NewSet returns a wallet holding given coins.
func NewSet(coins ...coin.Coin) (*Set, error) {
	cs, err := coin.CombineCoins(coins...)
	if err != nil {
		return nil, err
	}
	return &Set{
		Metadata: &vault.Metadata{Schema: 1},
		Coins:    cs,
	}, nil
}

// NewBucket returns the bucket holding wallets keyed by address.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket(BucketName, &Set{})
}
