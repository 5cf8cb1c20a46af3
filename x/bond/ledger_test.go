package bond

import (
	"bytes"
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/orm"
	"github.com/iov-one/vault/store"
	"github.com/iov-one/vault/vaulttest"
	"github.com/iov-one/vault/vaulttest/assert"
	"github.com/iov-one/vault/x/cash"
	"github.com/tendermint/tendermint/libs/log"
)

var now = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

const reserve = 1000000

type fixture struct {
	db     store.CacheableKVStore
	cash   cash.BaseController
	auth   *vaulttest.CtxAuth
	ledger *Ledger
}

// newFixture returns a ledger with the custody account funded with given
// yield reserve.
func newFixture(t testing.TB, yieldReserve int64, opts ...LedgerOption) *fixture {
	t.Helper()
	f := &fixture{
		db:   store.MemStore(),
		cash: cash.NewController(),
		auth: &vaulttest.CtxAuth{Key: "auth"},
	}
	f.ledger = NewLedger(f.auth, f.cash, opts...)
	if yieldReserve > 0 {
		f.fund(t, f.ledger.Custody(), yieldReserve)
	}
	return f
}

func (f *fixture) ctx(at time.Time, signer vault.Condition) vault.Context {
	ctx := vault.WithBlockTime(context.Background(), at)
	if signer != nil {
		ctx = f.auth.SetConditions(ctx, signer)
	}
	return ctx
}

func (f *fixture) fund(t testing.TB, addr vault.Address, amount int64) {
	t.Helper()
	if err := f.cash.IssueCoins(f.db, addr, coin.NewCoin(amount, "IOV")); err != nil {
		t.Fatalf("cannot fund %s: %s", addr, err)
	}
}

func (f *fixture) balance(t testing.TB, addr vault.Address) int64 {
	t.Helper()
	coins, err := f.cash.Balance(f.db, addr)
	if errors.ErrNotFound.Is(err) {
		return 0
	}
	assert.Nil(t, err)
	return coins.Get("IOV").Amount
}

func (f *fixture) issue(t testing.TB, signer vault.Condition, principal int64, rate int32, maturity time.Time) uint64 {
	t.Helper()
	id, err := f.ledger.Issue(f.ctx(now, signer), f.db, &IssueMsg{
		Metadata:     &vault.Metadata{Schema: 1},
		Asset:        "IOV",
		Principal:    principal,
		YieldRate:    rate,
		MaturityTime: vault.AsUnixTime(maturity),
	})
	if err != nil {
		t.Fatalf("cannot issue: %+v", err)
	}
	return id
}

func redeemMsg(id uint64) *RedeemMsg {
	return &RedeemMsg{Metadata: &vault.Metadata{Schema: 1}, BondID: id}
}

func TestIssue(t *testing.T) {
	f := newFixture(t, reserve)
	alice := vaulttest.NewCondition()
	f.fund(t, alice.Address(), 5000)

	maturity := now.Add(time.Hour)
	id := f.issue(t, alice, 1200, 7, maturity)
	assert.Equal(t, uint64(0), id)

	bond, err := f.ledger.GetBond(f.db, id)
	assert.Nil(t, err)
	want := &Bond{
		Metadata:     &vault.Metadata{Schema: 1},
		Owner:        alice.Address(),
		Asset:        "IOV",
		Principal:    1200,
		YieldRate:    7,
		StartTime:    vault.AsUnixTime(now),
		MaturityTime: vault.AsUnixTime(maturity),
		Settled:      false,
	}
	assert.Equal(t, want, bond)

	assert.Equal(t, int64(3800), f.balance(t, alice.Address()))
	assert.Equal(t, int64(reserve+1200), f.balance(t, f.ledger.Custody()))

	events, err := f.ledger.Events(f.db)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(events))
	assert.Equal(t, BondCreated, events[0].Kind)
	assert.Equal(t, uint64(0), events[0].BondID)
	assert.Equal(t, int64(1200), events[0].Principal)
	assert.Equal(t, int32(7), events[0].YieldRate)
	assert.Equal(t, vault.AsUnixTime(maturity), events[0].MaturityTime)
}

func TestSequentialIdentifiers(t *testing.T) {
	f := newFixture(t, reserve)
	alice := vaulttest.NewCondition()
	bob := vaulttest.NewCondition()
	f.fund(t, alice.Address(), 100)
	f.fund(t, bob.Address(), 100)

	count, err := f.ledger.Count(f.db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), count)

	maturity := now.Add(time.Minute)
	assert.Equal(t, uint64(0), f.issue(t, alice, 10, 1, maturity))
	assert.Equal(t, uint64(1), f.issue(t, bob, 10, 1, maturity))

	// A failed issue does not consume an identifier.
	_, err = f.ledger.Issue(f.ctx(now, alice), f.db, &IssueMsg{
		Metadata:     &vault.Metadata{Schema: 1},
		Asset:        "IOV",
		Principal:    1000,
		YieldRate:    1,
		MaturityTime: vault.AsUnixTime(maturity),
	})
	assert.IsErr(t, errors.ErrInsufficientAmount, err)

	assert.Equal(t, uint64(2), f.issue(t, alice, 10, 1, maturity))

	count, err = f.ledger.Count(f.db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(3), count)

	for id := uint64(0); id < count; id++ {
		if _, err := f.ledger.GetBond(f.db, id); err != nil {
			t.Fatalf("bond %d: %s", id, err)
		}
	}
	_, err = f.ledger.GetBond(f.db, count)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestIssueRejected(t *testing.T) {
	alice := vaulttest.NewCondition()
	poor := vaulttest.NewCondition()

	valid := func() IssueMsg {
		return IssueMsg{
			Metadata:     &vault.Metadata{Schema: 1},
			Asset:        "IOV",
			Principal:    100,
			YieldRate:    10,
			MaturityTime: vault.AsUnixTime(now.Add(time.Hour)),
		}
	}

	cases := map[string]struct {
		signer  vault.Condition
		modify  func(*IssueMsg)
		wantErr *errors.Error
	}{
		"no signer": {
			signer:  nil,
			wantErr: errors.ErrUnauthorized,
		},
		"zero principal": {
			signer:  alice,
			modify:  func(m *IssueMsg) { m.Principal = 0 },
			wantErr: errors.ErrAmount,
		},
		"negative principal": {
			signer:  alice,
			modify:  func(m *IssueMsg) { m.Principal = -100 },
			wantErr: errors.ErrAmount,
		},
		"zero rate": {
			signer:  alice,
			modify:  func(m *IssueMsg) { m.YieldRate = 0 },
			wantErr: errors.ErrInput,
		},
		"maturity now": {
			signer:  alice,
			modify:  func(m *IssueMsg) { m.MaturityTime = vault.AsUnixTime(now) },
			wantErr: errors.ErrExpired,
		},
		"maturity in the past": {
			signer:  alice,
			modify:  func(m *IssueMsg) { m.MaturityTime = vault.AsUnixTime(now.Add(-time.Hour)) },
			wantErr: errors.ErrExpired,
		},
		"invalid ticker": {
			signer:  alice,
			modify:  func(m *IssueMsg) { m.Asset = "X" },
			wantErr: errors.ErrCurrency,
		},
		"unknown asset": {
			signer:  alice,
			modify:  func(m *IssueMsg) { m.Asset = "ETH" },
			wantErr: errors.ErrInsufficientAmount,
		},
		"insufficient funds": {
			signer:  alice,
			modify:  func(m *IssueMsg) { m.Principal = 501 },
			wantErr: errors.ErrInsufficientAmount,
		},
		"no wallet": {
			signer:  poor,
			wantErr: errors.ErrEmpty,
		},
		"payout above maximum coin amount": {
			signer:  alice,
			modify:  func(m *IssueMsg) { m.Principal = coin.MaxAmount / 2; m.YieldRate = 200 },
			wantErr: errors.ErrOverflow,
		},
		"payout overflows int64": {
			signer:  alice,
			modify:  func(m *IssueMsg) { m.Principal = coin.MaxAmount; m.YieldRate = math.MaxInt32 },
			wantErr: errors.ErrOverflow,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, reserve)
			f.fund(t, alice.Address(), 500)

			msg := valid()
			if tc.modify != nil {
				tc.modify(&msg)
			}
			_, err := f.ledger.Issue(f.ctx(now, tc.signer), f.db, &msg)
			assert.IsErr(t, tc.wantErr, err)

			count, err := f.ledger.Count(f.db)
			assert.Nil(t, err)
			assert.Equal(t, uint64(0), count)
			assert.Equal(t, int64(500), f.balance(t, alice.Address()))
			assert.Equal(t, int64(reserve), f.balance(t, f.ledger.Custody()))
			events, err := f.ledger.Events(f.db)
			assert.Nil(t, err)
			assert.Equal(t, 0, len(events))
		})
	}
}

func TestRedeemPreconditions(t *testing.T) {
	alice := vaulttest.NewCondition()
	bob := vaulttest.NewCondition()
	maturity := now.Add(100 * time.Second)

	// Bond 0 is active, bond 1 is already settled.
	setup := func(t *testing.T) *fixture {
		f := newFixture(t, reserve)
		f.fund(t, alice.Address(), 1000)
		f.issue(t, alice, 100, 10, maturity)
		id := f.issue(t, alice, 100, 10, maturity)
		_, err := f.ledger.Redeem(f.ctx(maturity, alice), f.db, redeemMsg(id))
		assert.Nil(t, err)
		return f
	}

	cases := map[string]struct {
		id         uint64
		signer     vault.Condition
		at         time.Time
		wantErr    *errors.Error
		wantPayout int64
	}{
		"unknown bond is reported first": {
			id:      7,
			signer:  bob,
			at:      now,
			wantErr: errors.ErrNotFound,
		},
		"not the owner": {
			id:      0,
			signer:  bob,
			at:      maturity,
			wantErr: errors.ErrUnauthorized,
		},
		"not the owner before maturity": {
			id:      0,
			signer:  bob,
			at:      now,
			wantErr: errors.ErrUnauthorized,
		},
		"no signer": {
			id:      0,
			signer:  nil,
			at:      maturity,
			wantErr: errors.ErrUnauthorized,
		},
		"not the owner of a settled bond": {
			id:      1,
			signer:  bob,
			at:      maturity,
			wantErr: errors.ErrUnauthorized,
		},
		"settled is reported before maturity": {
			id:      1,
			signer:  alice,
			at:      now,
			wantErr: ErrAlreadyWithdrawn,
		},
		"not matured": {
			id:      0,
			signer:  alice,
			at:      maturity.Add(-time.Second),
			wantErr: ErrNotMatured,
		},
		"matured exactly now": {
			id:         0,
			signer:     alice,
			at:         maturity,
			wantPayout: 110,
		},
		"long after maturity": {
			id:         0,
			signer:     alice,
			at:         maturity.Add(24 * time.Hour),
			wantPayout: 110,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := setup(t)
			before := f.balance(t, alice.Address())

			payout, err := f.ledger.Redeem(f.ctx(tc.at, tc.signer), f.db, redeemMsg(tc.id))
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
				assert.Equal(t, before, f.balance(t, alice.Address()))
				if tc.id == 0 {
					bond, err := f.ledger.GetBond(f.db, 0)
					assert.Nil(t, err)
					assert.Equal(t, false, bond.Settled)
				}
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, coin.NewCoin(tc.wantPayout, "IOV"), payout)
			assert.Equal(t, before+tc.wantPayout, f.balance(t, alice.Address()))
			bond, err := f.ledger.GetBond(f.db, tc.id)
			assert.Nil(t, err)
			assert.Equal(t, true, bond.Settled)
		})
	}
}

func TestRedeemPayoutExamples(t *testing.T) {
	cases := map[string]struct {
		principal int64
		rate      int32
		want      int64
	}{
		"1000 at 10%": {principal: 1000, rate: 10, want: 1100},
		"7 at 10%":    {principal: 7, rate: 10, want: 7},
		"500 at 20%":  {principal: 500, rate: 20, want: 600},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, reserve)
			alice := vaulttest.NewCondition()
			f.fund(t, alice.Address(), tc.principal)

			maturity := now.Add(time.Second)
			id := f.issue(t, alice, tc.principal, tc.rate, maturity)
			assert.Equal(t, int64(0), f.balance(t, alice.Address()))

			payout, err := f.ledger.Redeem(f.ctx(maturity, alice), f.db, redeemMsg(id))
			assert.Nil(t, err)
			assert.Equal(t, tc.want, payout.Amount)
			assert.Equal(t, tc.want, f.balance(t, alice.Address()))
			assert.Equal(t, int64(reserve+tc.principal-tc.want), f.balance(t, f.ledger.Custody()))
		})
	}
}

func TestBondLifecycle(t *testing.T) {
	f := newFixture(t, reserve)
	alice := vaulttest.NewCondition()
	f.fund(t, alice.Address(), 500)

	maturity := now.Add(time.Second)
	id := f.issue(t, alice, 500, 20, maturity)

	_, err := f.ledger.Redeem(f.ctx(now, alice), f.db, redeemMsg(id))
	assert.IsErr(t, ErrNotMatured, err)

	payout, err := f.ledger.Redeem(f.ctx(maturity, alice), f.db, redeemMsg(id))
	assert.Nil(t, err)
	assert.Equal(t, coin.NewCoin(600, "IOV"), payout)
	assert.Equal(t, int64(600), f.balance(t, alice.Address()))

	_, err = f.ledger.Redeem(f.ctx(maturity.Add(time.Hour), alice), f.db, redeemMsg(id))
	assert.IsErr(t, ErrAlreadyWithdrawn, err)
	assert.Equal(t, int64(600), f.balance(t, alice.Address()))

	events, err := f.ledger.Events(f.db)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(events))
	assert.Equal(t, BondCreated, events[0].Kind)
	assert.Equal(t, BondWithdrawn, events[1].Kind)
	assert.Equal(t, id, events[1].BondID)
	assert.Equal(t, alice.Address(), events[1].Owner)
	assert.Equal(t, int64(600), events[1].TotalPayout)
}

func TestConcurrentRedeem(t *testing.T) {
	f := newFixture(t, reserve)
	alice := vaulttest.NewCondition()
	f.fund(t, alice.Address(), 1000)

	maturity := now.Add(time.Second)
	id := f.issue(t, alice, 1000, 10, maturity)

	const workers = 16
	var (
		wg   sync.WaitGroup
		errs = make(chan error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Redeem(f.ctx(maturity, alice), f.db, redeemMsg(id))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var success int
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		assert.IsErr(t, ErrAlreadyWithdrawn, err)
	}
	assert.Equal(t, 1, success)
	assert.Equal(t, int64(1100), f.balance(t, alice.Address()))
}

func TestFailedPayoutKeepsBondSettled(t *testing.T) {
	// Custody without yield reserve.
	f := newFixture(t, 1, WithCustody(vaulttest.RandomAddr(t)))
	alice := vaulttest.NewCondition()
	f.fund(t, alice.Address(), 1000)
	custody := f.ledger.Custody()

	maturity := now.Add(time.Second)
	id := f.issue(t, alice, 1000, 10, maturity)

	_, err := f.ledger.Redeem(f.ctx(maturity, alice), f.db, redeemMsg(id))
	assert.IsErr(t, ErrPayoutFailed, err)
	assert.IsErr(t, errors.ErrInsufficientAmount, err)
	if errors.ErrOverflow.Is(err) {
		t.Fatalf("custody failure reported as overflow: %+v", err)
	}

	bond, err := f.ledger.GetBond(f.db, id)
	assert.Nil(t, err)
	assert.Equal(t, true, bond.Settled)
	assert.Equal(t, int64(0), f.balance(t, alice.Address()))
	assert.Equal(t, int64(1001), f.balance(t, custody))

	_, err = f.ledger.Redeem(f.ctx(maturity, alice), f.db, redeemMsg(id))
	assert.IsErr(t, ErrAlreadyWithdrawn, err)

	events, err := f.ledger.Events(f.db)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(events))
	assert.Equal(t, BondCreated, events[0].Kind)
}

func TestPayoutOverflow(t *testing.T) {
	cases := map[string]struct {
		principal int64
		rate      int32
	}{
		"total above maximum coin amount": {
			principal: coin.MaxAmount,
			rate:      100,
		},
		"principal times rate overflows int64": {
			principal: coin.MaxAmount,
			rate:      math.MaxInt32,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			f := newFixture(t, 0, WithCustody(vaulttest.RandomAddr(t)))
			alice := vaulttest.NewCondition()
			f.fund(t, f.ledger.Custody(), tc.principal)

			// Issue refuses such a bond, so it is written directly.
			maturity := now.Add(time.Second)
			id, err := bondSeq.Next(f.db)
			assert.Nil(t, err)
			stored := &Bond{
				Metadata:     &vault.Metadata{Schema: 1},
				Owner:        alice.Address(),
				Asset:        "IOV",
				Principal:    tc.principal,
				YieldRate:    tc.rate,
				StartTime:    vault.AsUnixTime(now),
				MaturityTime: vault.AsUnixTime(maturity),
			}
			assert.Nil(t, f.ledger.bonds.Put(f.db, orm.EncodeSequence(id), stored))

			_, err = f.ledger.Redeem(f.ctx(maturity, alice), f.db, redeemMsg(id))
			assert.IsErr(t, ErrPayoutFailed, err)
			assert.IsErr(t, errors.ErrOverflow, err)

			bond, err := f.ledger.GetBond(f.db, id)
			assert.Nil(t, err)
			assert.Equal(t, true, bond.Settled)
			assert.Equal(t, tc.principal, f.balance(t, f.ledger.Custody()))
			assert.Equal(t, int64(0), f.balance(t, alice.Address()))
		})
	}
}

func TestConcurrentReads(t *testing.T) {
	f := newFixture(t, reserve)
	alice := vaulttest.NewCondition()
	f.fund(t, alice.Address(), 1000)

	const issued = 50
	maturity := now.Add(time.Hour)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < issued; i++ {
			_, err := f.ledger.Issue(f.ctx(now, alice), f.db, &IssueMsg{
				Metadata:     &vault.Metadata{Schema: 1},
				Asset:        "IOV",
				Principal:    10,
				YieldRate:    5,
				MaturityTime: vault.AsUnixTime(maturity),
			})
			if err != nil {
				t.Errorf("issue %d: %s", i, err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < issued; i++ {
			count, err := f.ledger.Count(f.db)
			if err != nil {
				t.Errorf("count: %s", err)
				return
			}
			if count == 0 {
				continue
			}
			if _, err := f.ledger.GetBond(f.db, count-1); err != nil {
				t.Errorf("bond %d: %s", count-1, err)
				return
			}
			if _, err := f.ledger.ListByOwner(f.db, alice.Address()); err != nil {
				t.Errorf("list: %s", err)
				return
			}
		}
	}()
	wg.Wait()

	count, err := f.ledger.Count(f.db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(issued), count)
	assert.Equal(t, int64(500), f.balance(t, alice.Address()))
}

func TestListByOwner(t *testing.T) {
	f := newFixture(t, reserve)
	alice := vaulttest.NewCondition()
	bob := vaulttest.NewCondition()
	f.fund(t, alice.Address(), 100)
	f.fund(t, bob.Address(), 100)

	maturity := now.Add(time.Minute)
	f.issue(t, alice, 10, 1, maturity)
	f.issue(t, bob, 20, 2, maturity)
	f.issue(t, alice, 30, 3, maturity)

	bonds, err := f.ledger.ListByOwner(f.db, alice.Address())
	assert.Nil(t, err)
	assert.Equal(t, 2, len(bonds))
	assert.Equal(t, uint64(0), bonds[0].ID)
	assert.Equal(t, int64(10), bonds[0].Bond.Principal)
	assert.Equal(t, uint64(2), bonds[1].ID)
	assert.Equal(t, int64(30), bonds[1].Bond.Principal)

	// Settling a bond must not remove it from the owner's list.
	_, err = f.ledger.Redeem(f.ctx(maturity, bob), f.db, redeemMsg(1))
	assert.Nil(t, err)
	bonds, err = f.ledger.ListByOwner(f.db, bob.Address())
	assert.Nil(t, err)
	assert.Equal(t, 1, len(bonds))
	assert.Equal(t, true, bonds[0].Bond.Settled)

	bonds, err = f.ledger.ListByOwner(f.db, vaulttest.RandomAddr(t))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(bonds))
}

type recordingSink struct {
	events []*Event
}

func (s *recordingSink) Publish(ctx vault.Context, e *Event) error {
	s.events = append(s.events, e)
	return nil
}

type failingSink struct{}

func (failingSink) Publish(vault.Context, *Event) error {
	return errors.Wrap(errors.ErrDatabase, "sink unavailable")
}

func TestEventSinks(t *testing.T) {
	var buf bytes.Buffer
	rec := &recordingSink{}
	f := newFixture(t, reserve,
		WithEventSink(failingSink{}),
		WithEventSink(rec),
		WithEventSink(LoggerSink{Logger: log.NewTMLogger(log.NewSyncWriter(&buf))}),
	)
	alice := vaulttest.NewCondition()
	f.fund(t, alice.Address(), 100)

	maturity := now.Add(time.Second)
	id := f.issue(t, alice, 100, 10, maturity)
	_, err := f.ledger.Redeem(f.ctx(maturity, alice), f.db, redeemMsg(id))
	assert.Nil(t, err)

	assert.Equal(t, 2, len(rec.events))
	assert.Equal(t, BondCreated, rec.events[0].Kind)
	assert.Equal(t, BondWithdrawn, rec.events[1].Kind)
	assert.Equal(t, int64(110), rec.events[1].TotalPayout)

	stored, err := f.ledger.Events(f.db)
	assert.Nil(t, err)
	assert.Equal(t, rec.events, stored)

	out := buf.String()
	for _, want := range []string{"BondCreated", "BondWithdrawn"} {
		if !strings.Contains(out, want) {
			t.Errorf("%q not logged: %s", want, out)
		}
	}
}

func TestLedgerOverCommitStore(t *testing.T) {
	cs, cleanup := vaulttest.CommitKVStore(t)
	defer cleanup()

	ctrl := cash.NewController()
	auth := &vaulttest.CtxAuth{Key: "auth"}
	ledger := NewLedger(auth, ctrl)
	alice := vaulttest.NewCondition()

	db := cs.Adapter()
	assert.Nil(t, ctrl.IssueCoins(db, ledger.Custody(), coin.NewCoin(100, "IOV")))
	assert.Nil(t, ctrl.IssueCoins(db, alice.Address(), coin.NewCoin(100, "IOV")))

	maturity := now.Add(time.Minute)
	ctx := auth.SetConditions(vault.WithBlockTime(context.Background(), now), alice)
	id, err := ledger.Issue(ctx, db, &IssueMsg{
		Metadata:     &vault.Metadata{Schema: 1},
		Asset:        "IOV",
		Principal:    100,
		YieldRate:    50,
		MaturityTime: vault.AsUnixTime(maturity),
	})
	assert.Nil(t, err)
	_, err = cs.Commit()
	assert.Nil(t, err)

	ctx = auth.SetConditions(vault.WithBlockTime(context.Background(), maturity), alice)
	payout, err := ledger.Redeem(ctx, db, redeemMsg(id))
	assert.Nil(t, err)
	assert.Equal(t, coin.NewCoin(150, "IOV"), payout)
	_, err = cs.Commit()
	assert.Nil(t, err)

	bond, err := ledger.GetBond(db, id)
	assert.Nil(t, err)
	assert.Equal(t, true, bond.Settled)
}
