package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrymomot/otpfill/pkg/config"
	"github.com/dmitrymomot/otpfill/pkg/kvstore"
	"github.com/dmitrymomot/otpfill/pkg/mongo"
	"github.com/dmitrymomot/otpfill/pkg/pg"
	"github.com/dmitrymomot/otpfill/pkg/redis"
	"github.com/dmitrymomot/otpfill/pkg/totp"
)

// EnvPrefix prefixes every variable of Config.
const EnvPrefix = "OTPFILL_"

// Config holds the application settings, read from OTPFILL_* variables.
type Config struct {
	Env             string        `env:"ENV" envDefault:"development"`     // Env selects logger defaults.
	Namespace       string        `env:"NAMESPACE" envDefault:"otpfill"`   // Namespace prefixes storage identifiers.
	Store           Backend       `env:"STORE" envDefault:"file"`          // Store selects the key-value backend.
	DecodeMode      string        `env:"DECODE_MODE" envDefault:"legacy"`  // DecodeMode is legacy or standard.
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"1s"` // RefreshInterval is the autofill tick.
	AutoSubmit      bool          `env:"AUTO_SUBMIT" envDefault:"false"`   // AutoSubmit submits after the first complete fill.
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`      // LogLevel is debug, info, warn or error.
}

// Backends groups the per-backend settings. Only the selected one is used.
type Backends struct {
	File  kvstore.FileConfig
	Bolt  kvstore.BoltConfig
	S3    kvstore.S3Config
	Redis redis.Config
	PG    pg.Config
	Mongo mongo.Config
}

// LoadConfig reads Config from the environment and validates it.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Parse(&cfg, EnvPrefix); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadBackends reads the settings of every backend.
func LoadBackends() (Backends, error) {
	var b Backends
	if err := errors.Join(
		config.Load(&b.File),
		config.Load(&b.Bolt),
		config.Load(&b.S3),
		config.Load(&b.Redis),
		config.Load(&b.PG),
		config.Load(&b.Mongo),
	); err != nil {
		return Backends{}, err
	}
	return b, nil
}

// Validate checks enumerated values and the namespace.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Namespace) == "" {
		return errors.Join(ErrInvalidConfig, errors.New("namespace must not be empty"))
	}
	if !c.Store.Valid() {
		return errors.Join(ErrInvalidConfig, fmt.Errorf("unknown store backend %q", c.Store))
	}
	if _, err := totp.ParseDecodeMode(c.DecodeMode); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	if c.RefreshInterval <= 0 {
		return errors.Join(ErrInvalidConfig, errors.New("refresh interval must be positive"))
	}
	return nil
}

// Mode returns the parsed decode mode. Call after Validate.
func (c Config) Mode() totp.DecodeMode {
	mode, _ := totp.ParseDecodeMode(c.DecodeMode)
	return mode
}
