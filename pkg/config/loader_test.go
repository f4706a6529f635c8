package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/accountkit/pkg/config"
)

type defaultsConfig struct {
	Name    string        `env:"CFG_TEST_NAME" envDefault:"accountd"`
	Workers int           `env:"CFG_TEST_WORKERS" envDefault:"4"`
	Enabled bool          `env:"CFG_TEST_ENABLED" envDefault:"true"`
	TTL     time.Duration `env:"CFG_TEST_TTL" envDefault:"15m"`
}

type cachedConfig struct {
	Value string `env:"CFG_TEST_CACHED" envDefault:"default"`
}

type requiredConfig struct {
	Secret string `env:"CFG_TEST_SECRET,required"`
}

type fileConfig struct {
	FromFile string `env:"CFG_TEST_FROM_FILE"`
}

func TestParse(t *testing.T) {
	t.Run("uses defaults", func(t *testing.T) {
		var cfg defaultsConfig
		require.NoError(t, config.Parse(&cfg))
		assert.Equal(t, "accountd", cfg.Name)
		assert.Equal(t, 4, cfg.Workers)
		assert.True(t, cfg.Enabled)
		assert.Equal(t, 15*time.Minute, cfg.TTL)
	})

	t.Run("reads environment", func(t *testing.T) {
		t.Setenv("CFG_TEST_WORKERS", "16")
		t.Setenv("CFG_TEST_TTL", "2h")

		var cfg defaultsConfig
		require.NoError(t, config.Parse(&cfg))
		assert.Equal(t, 16, cfg.Workers)
		assert.Equal(t, 2*time.Hour, cfg.TTL)
	})

	t.Run("missing required value", func(t *testing.T) {
		os.Unsetenv("CFG_TEST_SECRET")

		var cfg requiredConfig
		err := config.Parse(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		var cfg *defaultsConfig
		assert.ErrorIs(t, config.Parse(cfg), config.ErrNilPointer)
	})
}

func TestLoad_CachesPerType(t *testing.T) {
	config.ResetCache()
	t.Cleanup(config.ResetCache)

	t.Setenv("CFG_TEST_CACHED", "first")
	var first cachedConfig
	require.NoError(t, config.Load(&first))

	t.Setenv("CFG_TEST_CACHED", "second")
	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value)

	config.ResetCache()
	var third cachedConfig
	require.NoError(t, config.Load(&third))
	assert.Equal(t, "second", third.Value)
}

func TestMustLoad_Panics(t *testing.T) {
	config.ResetCache()
	os.Unsetenv("CFG_TEST_SECRET")

	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
}

func TestLoadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CFG_TEST_FROM_FILE=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("CFG_TEST_FROM_FILE") })

	require.NoError(t, config.LoadEnv(path))

	var cfg fileConfig
	require.NoError(t, config.Parse(&cfg))
	assert.Equal(t, "from-file", cfg.FromFile)

	assert.ErrorIs(t, config.LoadEnv(filepath.Join(t.TempDir(), "missing.env")), config.ErrLoadingEnvFile)
}
