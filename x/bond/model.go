package bond

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/orm"
)

const bucketName = "bond"

// Bond is a single time-locked deposit. Only Settled may change after the
// bond was created.
type Bond struct {
	Metadata *vault.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	// Owner is the address of the depositor.
	Owner     vault.Address `protobuf:"bytes,2,opt,name=owner,proto3" json:"owner,omitempty"`
	Asset     string        `protobuf:"bytes,3,opt,name=asset,proto3" json:"asset,omitempty"`
	Principal int64         `protobuf:"varint,4,opt,name=principal,proto3" json:"principal,omitempty"`
	// YieldRate is a percentage of the principal paid on top of it at
	// redemption.
	YieldRate    int32          `protobuf:"varint,5,opt,name=yield_rate,json=yieldRate,proto3" json:"yield_rate,omitempty"`
	StartTime    vault.UnixTime `protobuf:"varint,6,opt,name=start_time,json=startTime,proto3" json:"start_time,omitempty"`
	MaturityTime vault.UnixTime `protobuf:"varint,7,opt,name=maturity_time,json=maturityTime,proto3" json:"maturity_time,omitempty"`
	Settled      bool           `protobuf:"varint,8,opt,name=settled,proto3" json:"settled,omitempty"`
}

func (m *Bond) Reset()         { *m = Bond{} }
func (m *Bond) String() string { return proto.CompactTextString(m) }
func (*Bond) ProtoMessage()    {}

var _ orm.Model = (*Bond)(nil)

func (m *Bond) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	if !coin.IsCC(m.Asset) {
		errs = errors.AppendField(errs, "Asset", errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", m.Asset))
	}
	if m.Principal <= 0 {
		errs = errors.AppendField(errs, "Principal", errors.Wrap(errors.ErrAmount, "must be greater than zero"))
	} else if m.Principal > coin.MaxAmount {
		errs = errors.AppendField(errs, "Principal", errors.ErrOverflow)
	}
	if m.YieldRate <= 0 {
		errs = errors.AppendField(errs, "YieldRate", errors.Wrap(errors.ErrInput, "must be greater than zero"))
	}
	errs = errors.AppendField(errs, "StartTime", m.StartTime.Validate())
	if m.MaturityTime <= m.StartTime {
		errs = errors.AppendField(errs, "MaturityTime", errors.Wrap(errors.ErrInput, "must be after start time"))
	}
	return errs
}

// Copy returns an independent copy of this bond.
func (m *Bond) Copy() *Bond {
	cpy := *m
	cpy.Metadata = m.Metadata.Copy()
	cpy.Owner = m.Owner.Clone()
	return &cpy
}

// Amount returns the principal as a coin.
func (m *Bond) Amount() coin.Coin {
	return coin.NewCoin(m.Principal, m.Asset)
}

// BondWithID is a bond together with its identifier.
type BondWithID struct {
	ID   uint64 `json:"id"`
	Bond *Bond  `json:"bond"`
}

// NewBondBucket returns a bucket storing bonds under their sequential
// identifiers. Bonds are indexed by owner.
func NewBondBucket() orm.ModelBucket {
	return orm.NewModelBucket(bucketName, &Bond{},
		orm.WithIndex("owner", bondOwner, false),
	)
}

func bondOwner(m orm.Model) ([]byte, error) {
	b, ok := m.(*Bond)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return b.Owner, nil
}

var bondSeq = orm.NewSequence(bucketName, "id")

// CustodyAddress returns the address of the account that keeps the funds of
// all active bonds.
func CustodyAddress() vault.Address {
	return vault.NewCondition("bond", "custody", []byte("ledger")).Address()
}
