package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpfill/pkg/config"
)

type prefixedConfig struct {
	Namespace string        `env:"NAMESPACE" envDefault:"otpfill"`
	Interval  time.Duration `env:"INTERVAL" envDefault:"1s"`
}

func TestParse(t *testing.T) {
	t.Run("applies prefix and defaults", func(t *testing.T) {
		t.Setenv("PARSETEST_NAMESPACE", "work")

		var cfg prefixedConfig
		require.NoError(t, config.Parse(&cfg, "PARSETEST_"))
		assert.Equal(t, "work", cfg.Namespace)
		assert.Equal(t, time.Second, cfg.Interval)
	})

	t.Run("is not cached", func(t *testing.T) {
		t.Setenv("PARSETEST_NAMESPACE", "first")
		var a prefixedConfig
		require.NoError(t, config.Parse(&a, "PARSETEST_"))

		t.Setenv("PARSETEST_NAMESPACE", "second")
		var b prefixedConfig
		require.NoError(t, config.Parse(&b, "PARSETEST_"))

		assert.Equal(t, "first", a.Namespace)
		assert.Equal(t, "second", b.Namespace)
	})

	t.Run("reports parse errors", func(t *testing.T) {
		t.Setenv("PARSETEST_INTERVAL", "soon")

		var cfg prefixedConfig
		err := config.Parse(&cfg, "PARSETEST_")
		require.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		var cfg *prefixedConfig
		assert.ErrorIs(t, config.Parse(cfg, ""), config.ErrNilPointer)
	})
}
