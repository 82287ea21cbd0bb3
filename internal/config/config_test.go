package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cstockton/go-xray/internal/logging"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), `xray.toml`)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run(`Empty`, func(t *testing.T) {
		cfg, err := Load(``)
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})
	t.Run(`File`, func(t *testing.T) {
		t.Setenv(logging.EnvLogLevel, ``)
		t.Setenv(logging.EnvLogNoColor, ``)
		cfg, err := Load(filepath.Join(`testdata`, `xray.toml`))
		require.NoError(t, err)
		assert.Equal(t, 100, cfg.Decode.MaxRecords)
		assert.False(t, cfg.Decode.StopOnError)
		assert.Equal(t, `debug`, cfg.Log.Level)
		assert.True(t, cfg.Log.NoColor)

		lc := cfg.Log.Logging()
		assert.Equal(t, zerolog.DebugLevel, lc.Level)
		assert.True(t, lc.NoColor)
	})
	t.Run(`Env`, func(t *testing.T) {
		t.Setenv(logging.EnvLogLevel, `error`)
		t.Setenv(logging.EnvLogNoColor, `true`)
		cfg, err := Load(writeConfig(t, "[log]\nlevel = \"debug\"\n"))
		require.NoError(t, err)

		lc := cfg.Log.Logging()
		assert.Equal(t, zerolog.ErrorLevel, lc.Level, `environment wins over the file`)
		assert.True(t, lc.NoColor)
	})
	t.Run(`Partial`, func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "[log]\nlevel = \"warn\"\n"))
		require.NoError(t, err)
		assert.Equal(t, Default().Decode, cfg.Decode)
		assert.Equal(t, `warn`, cfg.Log.Level)
	})
	t.Run(`Missing`, func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), `nope.toml`))
		assert.Error(t, err)
	})
	t.Run(`Syntax`, func(t *testing.T) {
		_, err := Load(writeConfig(t, "[decode\n"))
		assert.Error(t, err)
	})
	t.Run(`UnknownKey`, func(t *testing.T) {
		_, err := Load(writeConfig(t, "[decode]\nmax_recrods = 1\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `decode.max_recrods`)
	})
	t.Run(`Invalid`, func(t *testing.T) {
		_, err := Load(writeConfig(t, "[decode]\nmax_records = -1\n"))
		assert.Error(t, err)

		_, err = Load(writeConfig(t, "[log]\nlevel = \"loud\"\n"))
		assert.Error(t, err)
	})
}
