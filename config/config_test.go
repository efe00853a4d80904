package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfp/sales-analysis/config"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ',', cfg.DelimiterRune())
	assert.Equal(t, ":memory:", cfg.Server.DBPath)
}

func TestLoadFile_OverlaysDefaults(t *testing.T) {
	// GIVEN: A YAML file that sets only some keys
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
data:
  path: ventas.csv
  delimiter: ";"
server:
  read_timeout: 5s
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	// WHEN: Loading it over the defaults
	cfg := config.Default()
	require.NoError(t, cfg.LoadFile(path))

	// THEN: File keys win, the rest keep their default
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "ventas.csv", cfg.Data.Path)
	assert.Equal(t, ';', cfg.DelimiterRune())
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, zerolog.DebugLevel, cfg.Logger().GetLevel())
}

func TestLoadFile_Errors(t *testing.T) {
	cfg := config.Default()
	assert.ErrorIs(t, cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")), os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
	assert.Error(t, cfg.LoadFile(path))
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := config.Default()
	cfg.Data.Path = ""
	cfg.Data.Delimiter = ";;"
	cfg.Server.Addr = ""
	cfg.Server.DBPath = ""
	cfg.Server.ShutdownTimeout = 0
	cfg.Log.Level = ""
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	for _, want := range []error{
		config.ErrNoDataPath,
		config.ErrBadDelimiter,
		config.ErrNoListenAddr,
		config.ErrNoSessionDB,
		config.ErrBadTimeout,
		config.ErrBadLogLevel,
		config.ErrBadLogFormat,
	} {
		assert.ErrorIs(t, err, want)
	}
}
