package redis

import (
	"context"
	"crypto/tls"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/iov-one/vault"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/x/bond"
	"github.com/redis/go-redis/v9"
)

// DefaultChannel is used when no channel is configured.
const DefaultChannel = "vault.bonds"

// Config holds connection parameters for the Redis client.
type Config struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	Channel    string `toml:"channel"`
	TLSEnabled bool   `toml:"tls"`
}

// Publisher is the part of the go-redis client used by the sink.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Sink implements bond.EventSink by publishing each event as a JSON
// message.
type Sink struct {
	pub     Publisher
	channel string
	close   func() error
}

var _ bond.EventSink = (*Sink)(nil)

// Dial connects to the Redis server and verifies the connection.
func Dial(ctx context.Context, cfg Config) (*Sink, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(errors.ErrDatabase, "redis ping %s: %s", cfg.Addr, err)
	}
	s := NewSink(rdb, cfg.Channel)
	s.close = rdb.Close
	return s, nil
}

// NewSink returns a sink publishing to given channel. An empty channel
// name means DefaultChannel.
func NewSink(pub Publisher, channel string) *Sink {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Sink{pub: pub, channel: channel}
}

// Message is the JSON document published for every event.
type Message struct {
	// ID is unique per delivery and can be used to drop duplicates.
	ID           string         `json:"id"`
	Kind         string         `json:"kind"`
	BondID       uint64         `json:"bond_id"`
	Owner        vault.Address  `json:"owner"`
	Asset        string         `json:"asset"`
	Principal    int64          `json:"principal,omitempty"`
	YieldRate    int32          `json:"yield_rate,omitempty"`
	MaturityTime vault.UnixTime `json:"maturity_time,omitempty"`
	TotalPayout  int64          `json:"total_payout,omitempty"`
}

// NewMessage converts an event into its published form.
func NewMessage(e *bond.Event) Message {
	return Message{
		ID:           uuid.NewString(),
		Kind:         e.Kind.String(),
		BondID:       e.BondID,
		Owner:        e.Owner,
		Asset:        e.Asset,
		Principal:    e.Principal,
		YieldRate:    e.YieldRate,
		MaturityTime: e.MaturityTime,
		TotalPayout:  e.TotalPayout,
	}
}

func (s *Sink) Publish(ctx vault.Context, e *bond.Event) error {
	payload, err := json.Marshal(NewMessage(e))
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := s.pub.Publish(ctx, s.channel, payload).Err(); err != nil {
		return errors.Wrapf(errors.ErrDatabase, "redis publish %s: %s", s.channel, err)
	}
	return nil
}

// Close releases the connection if the sink was created by Dial.
func (s *Sink) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
