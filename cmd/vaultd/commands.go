package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/iov-one/vault"
	"github.com/iov-one/vault/coin"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/store"
	"github.com/iov-one/vault/x/bond"
	"github.com/urfave/cli"
)

func commands() []cli.Command {
	keyFlag := cli.StringFlag{
		Name:  "key, k",
		Value: "",
		Usage: "*signing key `NAME`",
	}
	idFlag := cli.Uint64Flag{
		Name:  "id",
		Usage: "*bond `ID`",
	}

	return []cli.Command{
		{
			Name:      "init",
			Usage:     "initialize the state from a genesis file",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "genesis, g",
					Value: "",
					Usage: "*genesis `FILE` with cash and bond sections",
				},
			},
			Action: runInit,
		},
		{
			Name:  "keys",
			Usage: "manage signing keys",
			Subcommands: []cli.Command{
				{
					Name:      "new",
					Usage:     "generate a new key",
					ArgsUsage: "NAME",
					Action:    runKeysNew,
				},
				{
					Name:      "show",
					Usage:     "print the address of a key",
					ArgsUsage: "NAME",
					Action:    runKeysShow,
				},
			},
		},
		{
			Name:      "issue",
			Usage:     "lock funds in a new bond",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				keyFlag,
				cli.StringFlag{
					Name:  "amount, a",
					Value: "",
					Usage: "*principal `AMOUNT`, for example \"100 IOV\"",
				},
				cli.Int64Flag{
					Name:  "rate, r",
					Usage: "*yield rate in `PERCENT`",
				},
				cli.StringFlag{
					Name:  "maturity, m",
					Value: "",
					Usage: "*maturity as a duration from now or `RFC3339` time",
				},
			},
			Action: runIssue,
		},
		{
			Name:      "redeem",
			Usage:     "withdraw a matured bond",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{keyFlag, idFlag},
			Action:    runRedeem,
		},
		{
			Name:      "bond",
			Usage:     "print a single bond",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{idFlag},
			Action:    runBond,
		},
		{
			Name:   "count",
			Usage:  "print the number of bonds ever issued",
			Action: runCount,
		},
		{
			Name:      "bonds",
			Usage:     "list bonds of an owner",
			ArgsUsage: "\n   (+ = select one)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "owner, o",
					Value: "",
					Usage: "+owner `ADDRESS`",
				},
				cli.StringFlag{
					Name:  "key, k",
					Value: "",
					Usage: "+owner key `NAME`",
				},
			},
			Action: runBonds,
		},
		{
			Name:   "events",
			Usage:  "print all bond events",
			Action: runEvents,
		},
		{
			Name:      "balance",
			Usage:     "print the balance of an account",
			ArgsUsage: "\n   (+ = select one)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "address",
					Value: "",
					Usage: "+account `ADDRESS`",
				},
				cli.StringFlag{
					Name:  "key, k",
					Value: "",
					Usage: "+account key `NAME`",
				},
				cli.BoolFlag{
					Name:  "custody",
					Usage: "+the bond custody account",
				},
			},
			Action: runBalance,
		},
		{
			Name:  "version",
			Usage: "display vaultd version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", vault.Version())
				return nil
			},
		},
	}
}

func withNode(c *cli.Context, fn func(*node) error) error {
	m := c.App.Metadata["config"].(*metadata)
	logger := m.config.Logger()
	n, err := openNode(context.Background(), m.config, m.home, logger)
	if err != nil {
		return err
	}
	defer n.Close()
	return fn(n)
}

func runInit(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	path := c.String("genesis")
	if path == "" {
		return errors.Wrap(errors.ErrInput, "genesis file is required")
	}
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	dest := filepath.Join(m.home, genesisFile)
	if _, err := os.Stat(dest); err == nil {
		return errors.Wrapf(errors.ErrDuplicate, "already initialized: %s", dest)
	}
	if err := os.MkdirAll(m.home, 0700); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if err := ioutil.WriteFile(dest, raw, 0600); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}

	return withNode(c, func(n *node) error {
		opts, err := readGenesis(dest)
		if err != nil {
			return err
		}
		if err := n.initGenesis(opts); err != nil {
			return err
		}
		n.logger.Info("initialized", "home", m.home, "chain_id", n.cfg.ChainID)
		return nil
	})
}

func runKeysNew(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	key, err := createKey(m.home, c.Args().First())
	if err != nil {
		return err
	}
	return printAddress(c.App.Writer, key.PublicKey().Address())
}

func runKeysShow(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	key, err := loadKey(m.home, c.Args().First())
	if err != nil {
		return err
	}
	return printAddress(c.App.Writer, key.PublicKey().Address())
}

func printAddress(w io.Writer, addr vault.Address) error {
	b32, err := addr.Bech32()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\nbech32:%s\n", addr, b32)
	return err
}

func runIssue(c *cli.Context) error {
	amount, err := coin.ParseHumanFormat(c.String("amount"))
	if err != nil {
		return err
	}
	rate, err := parseRate(c.Int64("rate"))
	if err != nil {
		return err
	}
	return withNode(c, func(n *node) error {
		maturity, err := parseMaturity(n.clock(), c.String("maturity"))
		if err != nil {
			return err
		}
		msg := &bond.IssueMsg{
			Metadata:     &vault.Metadata{Schema: 1},
			Asset:        amount.Ticker,
			Principal:    amount.Amount,
			YieldRate:    rate,
			MaturityTime: maturity,
		}
		if err := msg.Validate(); err != nil {
			return errors.Wrapf(err, "check %v", errors.FieldNames(err))
		}
		var id uint64
		err = n.deliver(c.String("key"), msg, func(ctx vault.Context, db store.CacheableKVStore) error {
			var err error
			id, err = n.ledger.Issue(ctx, db, msg)
			return err
		}, never)
		if err != nil {
			return err
		}
		return printJSON(c.App.Writer, map[string]uint64{"id": id})
	})
}

func runRedeem(c *cli.Context) error {
	msg := &bond.RedeemMsg{
		Metadata: &vault.Metadata{Schema: 1},
		BondID:   c.Uint64("id"),
	}
	return withNode(c, func(n *node) error {
		var payout coin.Coin
		err := n.deliver(c.String("key"), msg, func(ctx vault.Context, db store.CacheableKVStore) error {
			var err error
			payout, err = n.ledger.Redeem(ctx, db, msg)
			return err
		}, bond.ErrPayoutFailed.Is)
		if err != nil {
			return err
		}
		return printJSON(c.App.Writer, map[string]string{"payout": payout.String()})
	})
}

func never(error) bool { return false }

func runBond(c *cli.Context) error {
	return withNode(c, func(n *node) error {
		id := c.Uint64("id")
		b, err := n.ledger.GetBond(n.db(), id)
		if err != nil {
			return err
		}
		return printJSON(c.App.Writer, bond.BondWithID{ID: id, Bond: b})
	})
}

func runCount(c *cli.Context) error {
	return withNode(c, func(n *node) error {
		count, err := n.ledger.Count(n.db())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.App.Writer, count)
		return err
	})
}

func runBonds(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	owner, err := selectAddress(m.home, c.String("owner"), c.String("key"))
	if err != nil {
		return err
	}
	return withNode(c, func(n *node) error {
		bonds, err := n.ledger.ListByOwner(n.db(), owner)
		if err != nil {
			return err
		}
		return printJSON(c.App.Writer, bonds)
	})
}

func runEvents(c *cli.Context) error {
	return withNode(c, func(n *node) error {
		events, err := n.ledger.Events(n.db())
		if err != nil {
			return err
		}
		return printJSON(c.App.Writer, events)
	})
}

func runBalance(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)
	return withNode(c, func(n *node) error {
		addr := n.ledger.Custody()
		if !c.Bool("custody") {
			var err error
			addr, err = selectAddress(m.home, c.String("address"), c.String("key"))
			if err != nil {
				return err
			}
		}
		coins, err := n.cash.Balance(n.db(), addr)
		if err != nil && !errors.ErrNotFound.Is(err) {
			return err
		}
		return printJSON(c.App.Writer, map[string]interface{}{
			"address": addr,
			"coins":   coins,
		})
	})
}

func selectAddress(home, address, keyName string) (vault.Address, error) {
	switch {
	case address != "" && keyName != "":
		return nil, errors.Wrap(errors.ErrInput, "select either an address or a key")
	case address != "":
		return vault.ParseAddress(address)
	case keyName != "":
		key, err := loadKey(home, keyName)
		if err != nil {
			return nil, err
		}
		return key.PublicKey().Address(), nil
	default:
		return nil, errors.Wrap(errors.ErrInput, "address or key is required")
	}
}

// parseRate narrows the yield rate flag to the range a bond can hold.
func parseRate(raw int64) (int32, error) {
	if raw < math.MinInt32 || raw > math.MaxInt32 {
		return 0, errors.Wrapf(errors.ErrInput, "rate %d out of range", raw)
	}
	return int32(raw), nil
}

// parseMaturity accepts either a duration relative to now, an RFC3339 time
// or a UNIX timestamp.
func parseMaturity(now time.Time, raw string) (vault.UnixTime, error) {
	if raw == "" {
		return 0, errors.Wrap(errors.ErrInput, "maturity is required")
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return vault.AsUnixTime(now.Add(d)), nil
	}
	t, err := vault.ParseUnixTime(raw)
	if err != nil {
		return 0, errors.Wrap(err, "maturity")
	}
	return t, nil
}

func printJSON(w io.Writer, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	_, err = fmt.Fprintf(w, "%s\n", raw)
	return err
}
