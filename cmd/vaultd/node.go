package main

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/notify/redis"
	"github.com/iov-one/vault/orm"
	"github.com/iov-one/vault/store"
	"github.com/iov-one/vault/store/iavl"
	"github.com/iov-one/vault/x/bond"
	"github.com/iov-one/vault/x/cash"
	"github.com/iov-one/vault/x/sigs"
	"github.com/tendermint/tendermint/libs/log"
)

const genesisFile = "genesis.json"

// blockTimeKey holds the time of the last committed operation.
var blockTimeKey = []byte("_vaultd:blocktime")

// node is the local state of a vault together with the services operating
// on it.
type node struct {
	cfg    *Config
	home   string
	logger log.Logger
	store  iavl.CommitStore
	cash   cash.BaseController
	ledger *bond.Ledger
	redis  *redis.Sink
	events *pendingSink
	clock  func() time.Time
}

func openNode(ctx context.Context, cfg *Config, home string, logger log.Logger) (*node, error) {
	dir := cfg.Store.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(home, dir)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	cs, err := iavl.NewCommitStore(dir, cfg.Store.Name)
	if err != nil {
		return nil, err
	}

	opts, err := readGenesis(filepath.Join(home, genesisFile))
	if err != nil {
		cs.Close()
		return nil, err
	}
	custody, err := bond.ReadCustody(opts)
	if err != nil {
		cs.Close()
		return nil, err
	}

	n := &node{
		cfg:    cfg,
		home:   home,
		logger: logger,
		store:  cs,
		cash:   cash.NewController(),
		events: &pendingSink{},
		clock:  time.Now,
	}
	n.events.sinks = append(n.events.sinks, bond.LoggerSink{Logger: logger.With("module", "bond")})
	if cfg.Redis.Addr != "" {
		sink, err := redis.Dial(ctx, cfg.Redis)
		if err != nil {
			cs.Close()
			return nil, err
		}
		n.redis = sink
		n.events.sinks = append(n.events.sinks, sink)
	}
	n.ledger = bond.NewLedger(sigs.Authenticate{}, n.cash,
		bond.WithCustody(custody),
		bond.WithEventSink(n.events),
	)
	return n, nil
}

func (n *node) Close() {
	if n.redis != nil {
		if err := n.redis.Close(); err != nil {
			n.logger.Error("cannot close redis", "err", err)
		}
	}
	n.store.Close()
}

// db returns the working state. Changes are persisted by commit.
func (n *node) db() store.CacheableKVStore {
	return n.store.Adapter()
}

func (n *node) commit() error {
	id, err := n.store.Commit()
	if err != nil {
		return errors.Wrap(err, "commit")
	}
	n.logger.Debug("state committed", "version", id.Version, "hash", id.Hash)
	return nil
}

// initGenesis loads the initial wallets and the bond reserve.
func (n *node) initGenesis(opts vault.Options) error {
	genesis := vault.ChainInitializers(
		cash.Initializer{},
		bond.Initializer{Issuer: n.cash},
	)
	tx := n.db().CacheWrap()
	defer tx.Discard()
	if err := genesis.FromGenesis(opts, tx); err != nil {
		return errors.Wrap(err, "genesis")
	}
	if err := tx.Write(); err != nil {
		return errors.Wrap(err, "write")
	}
	return n.commit()
}

// blockTime returns the time the next operation executes at, taken from the
// node clock. It never falls behind the time of the last operation stored in
// db.
func (n *node) blockTime(db store.KVStore) (time.Time, error) {
	now := n.clock().UTC()
	raw, err := db.Get(blockTimeKey)
	if err != nil {
		return time.Time{}, err
	}
	if raw != nil {
		if len(raw) != 8 {
			return time.Time{}, errors.Wrap(errors.ErrState, "corrupted block time")
		}
		last := vault.UnixTime(orm.DecodeSequence(raw))
		if vault.AsUnixTime(now) < last {
			n.logger.Error("clock is behind the last block, using the block time",
				"now", now, "last", last.String())
			now = last.Time()
		}
	}
	if err := db.Set(blockTimeKey, orm.EncodeSequence(uint64(vault.AsUnixTime(now)))); err != nil {
		return time.Time{}, errors.Wrap(err, "store block time")
	}
	return now, nil
}

// deliver signs msg with the named key and runs fn as the signer against a
// cache-wrapped state. The state, including the signer sequence and the
// block time, is committed if fn succeeds or if keep returns true for its
// error. Events emitted by fn are published only once the state is
// committed.
func (n *node) deliver(keyName string, msg proto.Message, fn func(vault.Context, store.CacheableKVStore) error, keep func(error) bool) error {
	key, err := loadKey(n.home, keyName)
	if err != nil {
		return err
	}
	payload, err := proto.Marshal(msg)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	tx := n.db().CacheWrap()
	defer tx.Discard()
	defer n.events.drop()

	at, err := n.blockTime(tx)
	if err != nil {
		return err
	}
	seq, err := sigs.NextNonce(tx, key.PublicKey().Address())
	if err != nil {
		return err
	}
	sig, err := sigs.Sign(key, payload, n.cfg.ChainID, seq)
	if err != nil {
		return errors.Wrap(err, "sign")
	}

	ctx := vault.WithLogger(context.Background(), n.logger)
	ctx = vault.WithBlockTime(ctx, at)
	ctx, err = sigs.VerifySignature(ctx, tx, sig, payload, n.cfg.ChainID)
	if err != nil {
		return errors.Wrap(err, "verify signature")
	}

	runErr := fn(ctx, tx)
	if runErr != nil && !keep(runErr) {
		return runErr
	}
	if err := tx.Write(); err != nil {
		return errors.Wrap(err, "write")
	}
	if err := n.commit(); err != nil {
		return err
	}
	n.events.flush(ctx)
	return runErr
}

// pendingSink holds bond events until the operation emitting them is
// committed.
type pendingSink struct {
	events []*bond.Event
	sinks  []bond.EventSink
}

func (p *pendingSink) Publish(_ vault.Context, e *bond.Event) error {
	p.events = append(p.events, e)
	return nil
}

// flush forwards all held events to the sinks. A failing sink does not stop
// the others.
func (p *pendingSink) flush(ctx vault.Context) {
	events := p.events
	p.events = nil
	for _, e := range events {
		for _, s := range p.sinks {
			if err := s.Publish(ctx, e); err != nil {
				vault.GetLogger(ctx).Error("cannot publish bond event",
					"module", "bond", "kind", e.Kind.String(), "id", e.BondID, "err", err)
			}
		}
	}
}

func (p *pendingSink) drop() {
	p.events = nil
}

// readGenesis loads genesis options. A missing file results in empty
// options.
func readGenesis(path string) (vault.Options, error) {
	raw, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return vault.Options{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	var opts vault.Options
	if err := json.Unmarshal(raw, &opts); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "genesis %s: %s", path, err)
	}
	return opts, nil
}
