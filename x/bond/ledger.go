package bond

import (
	"sync"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/orm"
	"github.com/iov-one/vault/x"
	"github.com/iov-one/vault/x/cash"
)

// Ledger keeps track of all bonds. Mutating operations are serialized and
// exclude readers.
//
// Sinks are notified before the caller writes or commits the store it passed
// in. A caller that may still drop the changes should buffer the events and
// forward them once the state is durable.
type Ledger struct {
	mu      sync.RWMutex
	auth    x.Authenticator
	mover   cash.CoinMover
	custody vault.Address
	bonds   orm.ModelBucket
	events  orm.ModelBucket
	sinks   []EventSink
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithEventSink registers a sink that is notified about every event after
// it was stored. A failing sink does not fail the operation.
func WithEventSink(s EventSink) LedgerOption {
	return func(l *Ledger) {
		l.sinks = append(l.sinks, s)
	}
}

// WithCustody overwrites the account holding bond funds. By default
// CustodyAddress is used.
func WithCustody(addr vault.Address) LedgerOption {
	return func(l *Ledger) {
		l.custody = addr
	}
}

// NewLedger returns a ledger that identifies callers using given
// authenticator and moves funds using given mover.
func NewLedger(auth x.Authenticator, mover cash.CoinMover, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		auth:    auth,
		mover:   mover,
		custody: CustodyAddress(),
		bonds:   NewBondBucket(),
		events:  NewEventBucket(),
	}
	for _, fn := range opts {
		fn(l)
	}
	return l
}

// Custody returns the address of the account holding bond funds.
func (l *Ledger) Custody() vault.Address {
	return l.custody
}

// Issue creates a new bond owned by the caller and returns its identifier.
// Principal is moved from the caller to the custody account. Nothing is
// written unless all steps succeed.
func (l *Ledger) Issue(ctx vault.Context, db vault.CacheableKVStore, msg *IssueMsg) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	owner, err := x.Caller(ctx, l.auth)
	if err != nil {
		return 0, err
	}
	if err := msg.Validate(); err != nil {
		return 0, errors.Wrap(err, "invalid message")
	}
	now, err := vault.BlockTime(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "block time")
	}
	if msg.MaturityTime.Reached(now) {
		return 0, errors.Wrap(errors.ErrExpired, "maturity must be in the future")
	}
	if _, err := payoutAmount(msg.Principal, msg.YieldRate, msg.Asset); err != nil {
		return 0, errors.Wrap(err, "payout cannot be made")
	}

	bond := &Bond{
		Metadata:     &vault.Metadata{Schema: 1},
		Owner:        owner,
		Asset:        msg.Asset,
		Principal:    msg.Principal,
		YieldRate:    msg.YieldRate,
		StartTime:    vault.AsUnixTime(now),
		MaturityTime: msg.MaturityTime,
		Settled:      false,
	}

	cache := db.CacheWrap()
	defer cache.Discard()

	if err := l.mover.MoveCoins(cache, owner, l.custody, bond.Amount()); err != nil {
		return 0, errors.Wrap(err, "lock principal")
	}
	id, err := bondSeq.Next(cache)
	if err != nil {
		return 0, errors.Wrap(err, "bond sequence")
	}
	if err := l.bonds.Put(cache, orm.EncodeSequence(id), bond); err != nil {
		return 0, errors.Wrap(err, "store bond")
	}
	event := newCreatedEvent(id, bond)
	if err := appendEvent(cache, l.events, event); err != nil {
		return 0, err
	}
	if err := cache.Write(); err != nil {
		return 0, errors.Wrap(err, "write")
	}

	vault.GetLogger(ctx).Info("bond issued",
		"module", "bond", "id", id, "owner", owner, "principal", bond.Amount().String(), "rate", bond.YieldRate)
	l.publish(ctx, event)
	return id, nil
}

// Redeem pays out a matured bond to its owner. The bond is marked as settled
// before the funds are transferred. If the transfer fails the bond stays
// settled and ErrPayoutFailed is returned.
func (l *Ledger) Redeem(ctx vault.Context, db vault.CacheableKVStore, msg *RedeemMsg) (coin.Coin, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := msg.Validate(); err != nil {
		return coin.Coin{}, errors.Wrap(err, "invalid message")
	}
	key := orm.EncodeSequence(msg.BondID)
	var bond Bond
	if err := l.bonds.One(db, key, &bond); err != nil {
		return coin.Coin{}, errors.Wrapf(err, "bond %d", msg.BondID)
	}
	caller, err := x.Caller(ctx, l.auth)
	if err != nil {
		return coin.Coin{}, err
	}
	if !caller.Equals(bond.Owner) {
		return coin.Coin{}, errors.Wrap(errors.ErrUnauthorized, "not the bond's owner")
	}
	if bond.Settled {
		return coin.Coin{}, errors.Wrapf(ErrAlreadyWithdrawn, "bond %d", msg.BondID)
	}
	now, err := vault.BlockTime(ctx)
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "block time")
	}
	if !bond.MaturityTime.Reached(now) {
		return coin.Coin{}, errors.Wrapf(ErrNotMatured, "bond %d matures at %s", msg.BondID, bond.MaturityTime)
	}

	bond.Settled = true
	if err := l.bonds.Put(db, key, &bond); err != nil {
		return coin.Coin{}, errors.Wrap(err, "settle bond")
	}

	logger := vault.GetLogger(ctx).With("module", "bond", "id", msg.BondID)
	amount, event, err := l.payout(db, msg.BondID, &bond)
	if err != nil {
		logger.Error("bond settled without payout, manual reconciliation required",
			"owner", bond.Owner, "principal", bond.Amount().String(), "rate", bond.YieldRate, "err", err)
		return coin.Coin{}, errors.Wrapf(errors.Append(ErrPayoutFailed, err), "bond %d", msg.BondID)
	}
	logger.Info("bond redeemed", "owner", bond.Owner, "payout", amount.String())
	l.publish(ctx, event)
	return amount, nil
}

func (l *Ledger) payout(db vault.CacheableKVStore, id uint64, bond *Bond) (coin.Coin, *Event, error) {
	amount, err := payoutAmount(bond.Principal, bond.YieldRate, bond.Asset)
	if err != nil {
		return coin.Coin{}, nil, err
	}

	cache := db.CacheWrap()
	defer cache.Discard()

	if err := l.mover.MoveCoins(cache, l.custody, bond.Owner, amount); err != nil {
		return coin.Coin{}, nil, errors.Wrap(err, "transfer payout")
	}
	event := newWithdrawnEvent(id, bond, amount.Amount)
	if err := appendEvent(cache, l.events, event); err != nil {
		return coin.Coin{}, nil, err
	}
	if err := cache.Write(); err != nil {
		return coin.Coin{}, nil, errors.Wrap(err, "write")
	}
	return amount, event, nil
}

func (l *Ledger) publish(ctx vault.Context, e *Event) {
	for _, s := range l.sinks {
		if err := s.Publish(ctx, e); err != nil {
			vault.GetLogger(ctx).Error("cannot publish bond event",
				"module", "bond", "kind", e.Kind.String(), "id", e.BondID, "err", err)
		}
	}
}

// GetBond returns the bond with given identifier. ErrNotFound is returned if
// no such bond was issued.
func (l *Ledger) GetBond(db vault.ReadOnlyKVStore, id uint64) (*Bond, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var bond Bond
	if err := l.bonds.One(db, orm.EncodeSequence(id), &bond); err != nil {
		return nil, errors.Wrapf(err, "bond %d", id)
	}
	return bond.Copy(), nil
}

// Count returns the number of bonds ever issued. This is also the
// identifier of the next bond.
func (l *Ledger) Count(db vault.ReadOnlyKVStore) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return bondSeq.Current(db)
}

// ListByOwner returns all bonds of given owner in issuance order.
func (l *Ledger) ListByOwner(db vault.ReadOnlyKVStore, owner vault.Address) ([]BondWithID, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var bonds []*Bond
	keys, err := l.bonds.ByIndex(db, "owner", owner, &bonds)
	if err != nil {
		return nil, errors.Wrap(err, "owner index")
	}
	res := make([]BondWithID, len(bonds))
	for i, b := range bonds {
		res[i] = BondWithID{ID: orm.DecodeSequence(keys[i]), Bond: b}
	}
	return res, nil
}

// Events returns all bond events in emission order.
func (l *Ledger) Events(db vault.ReadOnlyKVStore) ([]*Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return loadEvents(db, l.events)
}
