package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATA_SOURCE", "SYMBOL_SOURCE", "SYMBOLS_FILE", "OUTPUT_DIR", "SAVE_FORMAT", "LOG_LEVEL",
		"POLYGON_API_KEYS", "POLYGON_API_KEY", "IEX_TOKEN", "WORKERS", configEnv,
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "iex", cfg.DataSource)
	assert.Equal(t, "faang", cfg.SymbolSource)
	assert.Equal(t, "csv", cfg.SaveFormat)
	assert.Equal(t, 5, cfg.MissingThreshold)
	assert.Equal(t, 30, cfg.IEX.LookbackDays)
	assert.Equal(t, 12*time.Second, cfg.Polygon.Cooldown)
	assert.Equal(t, filepath.Join(HomeDir(), "iex"), cfg.DataDir())
}

func TestLoadConfigLayers(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_source: polygon
save_format: parquet
workers: 2
request_timeout: 10s
polygon:
  api_keys: [file-key]
  cooldown: 0s
schedule:
  update_cron: "0 30 0 * * *"
`), 0o644))
	t.Setenv("SAVE_FORMAT", "sqlite")
	t.Setenv("POLYGON_API_KEYS", " k1, k2 ,")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	cfg.Apply(Overrides{OutputDir: "/data/out", Workers: 4})
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "polygon", cfg.DataSource)
	assert.Equal(t, "sqlite", cfg.SaveFormat)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Polygon.APIKeys)
	assert.Equal(t, time.Duration(0), cfg.Polygon.Cooldown)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "/data/out", cfg.DataDir())
	assert.Equal(t, "0 30 0 * * *", cfg.Schedule.UpdateCron)
}

func TestLoadConfigErrors(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [1"), 0o644))
	_, err := LoadConfig(path)
	assert.ErrorIs(t, err, ErrConfig)

	t.Setenv("WORKERS", "many")
	_, err = LoadConfig("")
	assert.ErrorIs(t, err, ErrConfig)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"data source":  func(c *Config) { c.DataSource = "yahoo" },
		"symbol src":   func(c *Config) { c.SymbolSource = "nasdaq" },
		"save format":  func(c *Config) { c.SaveFormat = "xlsx" },
		"workers":      func(c *Config) { c.Workers = 0 },
		"symbols file": func(c *Config) { c.SymbolSource = "file" },
		"threshold":    func(c *Config) { c.MissingThreshold = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Defaults()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrConfig)
		})
	}

	cfg := Defaults()
	cfg.DataSource = " Polygon "
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "polygon", cfg.DataSource)
}

func TestConfigPath(t *testing.T) {
	t.Setenv(configEnv, "")
	assert.Equal(t, "x.yaml", ConfigPath("x.yaml"))
	assert.Equal(t, filepath.Join(HomeDir(), "config.yaml"), ConfigPath(""))
	t.Setenv(configEnv, "/etc/azul.yaml")
	assert.Equal(t, "/etc/azul.yaml", ConfigPath(""))
}
