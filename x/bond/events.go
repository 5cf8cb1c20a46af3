package bond

import (
	"fmt"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/orm"
	"github.com/tendermint/tendermint/libs/log"
)

// EventKind tells what happened to a bond.
type EventKind int32

const (
	BondCreated   EventKind = 1
	BondWithdrawn EventKind = 2
)

func (k EventKind) String() string {
	switch k {
	case BondCreated:
		return "BondCreated"
	case BondWithdrawn:
		return "BondWithdrawn"
	default:
		return fmt.Sprintf("EventKind(%d)", int32(k))
	}
}

// Event is a notification about a bond state change. BondCreated events
// carry the bond terms, BondWithdrawn events carry the paid out total.
type Event struct {
	Metadata     *vault.Metadata `protobuf:"bytes,1,opt,name=metadata,proto3" json:"metadata,omitempty"`
	Kind         EventKind       `protobuf:"varint,2,opt,name=kind,proto3" json:"kind,omitempty"`
	BondID       uint64          `protobuf:"varint,3,opt,name=bond_id,json=bondId,proto3" json:"bond_id"`
	Owner        vault.Address   `protobuf:"bytes,4,opt,name=owner,proto3" json:"owner,omitempty"`
	Asset        string          `protobuf:"bytes,5,opt,name=asset,proto3" json:"asset,omitempty"`
	Principal    int64           `protobuf:"varint,6,opt,name=principal,proto3" json:"principal,omitempty"`
	YieldRate    int32           `protobuf:"varint,7,opt,name=yield_rate,json=yieldRate,proto3" json:"yield_rate,omitempty"`
	MaturityTime vault.UnixTime  `protobuf:"varint,8,opt,name=maturity_time,json=maturityTime,proto3" json:"maturity_time,omitempty"`
	TotalPayout  int64           `protobuf:"varint,9,opt,name=total_payout,json=totalPayout,proto3" json:"total_payout,omitempty"`
}

func (m *Event) Reset()         { *m = Event{} }
func (m *Event) String() string { return proto.CompactTextString(m) }
func (*Event) ProtoMessage()    {}

var _ orm.Model = (*Event)(nil)

func (m *Event) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	switch m.Kind {
	case BondCreated:
		if m.Principal <= 0 {
			errs = errors.AppendField(errs, "Principal", errors.ErrAmount)
		}
		if m.YieldRate <= 0 {
			errs = errors.AppendField(errs, "YieldRate", errors.ErrInput)
		}
	case BondWithdrawn:
		if m.TotalPayout <= 0 {
			errs = errors.AppendField(errs, "TotalPayout", errors.ErrAmount)
		}
	default:
		errs = errors.AppendField(errs, "Kind", errors.Wrapf(errors.ErrInput, "unknown kind %d", m.Kind))
	}
	return errs
}

func newCreatedEvent(id uint64, b *Bond) *Event {
	return &Event{
		Metadata:     &vault.Metadata{Schema: 1},
		Kind:         BondCreated,
		BondID:       id,
		Owner:        b.Owner,
		Asset:        b.Asset,
		Principal:    b.Principal,
		YieldRate:    b.YieldRate,
		MaturityTime: b.MaturityTime,
	}
}

func newWithdrawnEvent(id uint64, b *Bond, total int64) *Event {
	return &Event{
		Metadata:    &vault.Metadata{Schema: 1},
		Kind:        BondWithdrawn,
		BondID:      id,
		Owner:       b.Owner,
		Asset:       b.Asset,
		TotalPayout: total,
	}
}

// EventSink receives events after the change they describe was written.
type EventSink interface {
	Publish(ctx vault.Context, e *Event) error
}

// LoggerSink writes every event to a logger.
type LoggerSink struct {
	Logger log.Logger
}

var _ EventSink = LoggerSink{}

func (s LoggerSink) Publish(ctx vault.Context, e *Event) error {
	s.Logger.Info("bond event",
		"kind", e.Kind.String(),
		"id", e.BondID,
		"owner", e.Owner,
		"asset", e.Asset,
		"principal", e.Principal,
		"rate", e.YieldRate,
		"maturity", int64(e.MaturityTime),
		"payout", e.TotalPayout,
	)
	return nil
}

const eventBucketName = "bond_event"

// NewEventBucket returns the append-only bucket of bond events, keyed by
// emission order.
func NewEventBucket() orm.ModelBucket {
	return orm.NewModelBucket(eventBucketName, &Event{})
}

var eventSeq = orm.NewSequence(eventBucketName, "id")

func appendEvent(db vault.KVStore, events orm.ModelBucket, e *Event) error {
	id, err := eventSeq.Next(db)
	if err != nil {
		return errors.Wrap(err, "event sequence")
	}
	if err := events.Put(db, orm.EncodeSequence(id), e); err != nil {
		return errors.Wrap(err, "store event")
	}
	return nil
}

func loadEvents(db vault.ReadOnlyKVStore, events orm.ModelBucket) ([]*Event, error) {
	it, err := events.Iterate(db)
	if err != nil {
		return nil, err
	}
	defer it.Release()

	var res []*Event
	for {
		var e Event
		switch _, err := it.LoadNext(&e); {
		case err == nil:
			res = append(res, &e)
		case errors.ErrIteratorDone.Is(err):
			return res, nil
		default:
			return nil, errors.Wrap(err, "load event")
		}
	}
}
