package bond

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
)

// IssueMsg requests creation of a new bond owned by the signer.
type IssueMsg struct {
	Metadata     *vault.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Asset        string          `protobuf:"bytes,2,opt,name=asset,proto3" json:"asset,omitempty"`
	Principal    int64           `protobuf:"varint,3,opt,name=principal,proto3" json:"principal,omitempty"`
	YieldRate    int32           `protobuf:"varint,4,opt,name=yield_rate,json=yieldRate,proto3" json:"yield_rate,omitempty"`
	MaturityTime vault.UnixTime  `protobuf:"varint,5,opt,name=maturity_time,json=maturityTime,proto3" json:"maturity_time,omitempty"`
}

func (m *IssueMsg) Reset()         { *m = IssueMsg{} }
func (m *IssueMsg) String() string { return proto.CompactTextString(m) }
func (*IssueMsg) ProtoMessage()    {}

// Validate checks the message content. Maturity can be compared with the
// current time only by the ledger.
func (m *IssueMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.Principal <= 0 {
		errs = errors.AppendField(errs, "Principal", errors.Wrap(errors.ErrAmount, "must be greater than zero"))
	} else if m.Principal > coin.MaxAmount {
		errs = errors.AppendField(errs, "Principal", errors.ErrOverflow)
	}
	if m.YieldRate <= 0 {
		errs = errors.AppendField(errs, "YieldRate", errors.Wrap(errors.ErrInput, "must be greater than zero"))
	}
	if !coin.IsCC(m.Asset) {
		errs = errors.AppendField(errs, "Asset", errors.Wrapf(errors.ErrCurrency, "invalid ticker %q", m.Asset))
	}
	errs = errors.AppendField(errs, "MaturityTime", m.MaturityTime.Validate())
	return errs
}

// RedeemMsg requests the payout of a matured bond.
type RedeemMsg struct {
	Metadata *vault.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	BondID   uint64          `protobuf:"varint,2,opt,name=bond_id,json=bondId,proto3" json:"bond_id,omitempty"`
}

func (m *RedeemMsg) Reset()         { *m = RedeemMsg{} }
func (m *RedeemMsg) String() string { return proto.CompactTextString(m) }
func (*RedeemMsg) ProtoMessage()    {}

func (m *RedeemMsg) Validate() error {
	return errors.AppendField(nil, "Metadata", m.Metadata.Validate())
}
