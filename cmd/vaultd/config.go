package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/iov-one/vault/errors"
	"github.com/iov-one/vault/notify/redis"
	"github.com/iov-one/vault/x/sigs"
	"github.com/joho/godotenv"
	"github.com/tendermint/tendermint/libs/log"
)

// Config is the vaultd configuration. Values are read from a TOML file,
// then overwritten by VAULT_* environment variables.
type Config struct {
	ChainID  string       `toml:"chain_id"`
	LogLevel string       `toml:"log_level"`
	Store    StoreConfig  `toml:"store"`
	Redis    redis.Config `toml:"redis"`
}

// StoreConfig describes the on disk state.
type StoreConfig struct {
	// Dir is relative to the home directory unless absolute.
	Dir  string `toml:"dir"`
	Name string `toml:"name"`
}

// Defaults returns the configuration used when nothing else is declared.
func Defaults() Config {
	return Config{
		ChainID:  "vault-local",
		LogLevel: "info",
		Store: StoreConfig{
			Dir:  "data",
			Name: "vault",
		},
		Redis: redis.Config{
			Channel: redis.DefaultChannel,
		},
	}
}

// LoadConfig reads the TOML file at path on top of the defaults. A missing
// file is not an error unless required is set. A .env file in the working
// directory is loaded if present.
func LoadConfig(path string, required bool) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		switch {
		case err == nil:
		case os.IsNotExist(err) && !required:
		default:
			return nil, errors.Wrapf(errors.ErrInput, "config %s: %s", path, err)
		}
	}

	_ = godotenv.Load()
	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.ChainID, "VAULT_CHAIN_ID")
	setStr(&cfg.LogLevel, "VAULT_LOG_LEVEL")

	setStr(&cfg.Store.Dir, "VAULT_STORE_DIR")
	setStr(&cfg.Store.Name, "VAULT_STORE_NAME")

	setStr(&cfg.Redis.Addr, "VAULT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "VAULT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "VAULT_REDIS_DB")
	setStr(&cfg.Redis.Channel, "VAULT_REDIS_CHANNEL")
	setBool(&cfg.Redis.TLSEnabled, "VAULT_REDIS_TLS_ENABLED")
}

func setStr(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// Validate returns an error if the configuration cannot be used.
func (c *Config) Validate() error {
	var errs error
	if !sigs.IsValidChainID(c.ChainID) {
		errs = errors.AppendField(errs, "ChainID", errors.Wrapf(errors.ErrInput, "invalid chain id %q", c.ChainID))
	}
	if _, err := log.AllowLevel(c.LogLevel); err != nil {
		errs = errors.AppendField(errs, "LogLevel", errors.Wrap(errors.ErrInput, err.Error()))
	}
	if c.Store.Name == "" {
		errs = errors.AppendField(errs, "Store.Name", errors.ErrEmpty)
	}
	return errs
}

// Logger returns a logger writing to stderr filtered by the configured
// level.
func (c *Config) Logger() log.Logger {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr))
	if opt, err := log.AllowLevel(c.LogLevel); err == nil {
		logger = log.NewFilter(logger, opt)
	}
	return logger.With("module", "vaultd")
}
