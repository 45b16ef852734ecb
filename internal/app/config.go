package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/brettelliot/azul/internal/pipeline"
	"github.com/brettelliot/azul/internal/provider/iex"
	"github.com/brettelliot/azul/internal/provider/polygon"
)

// ErrConfig wraps every configuration failure.
var ErrConfig = errors.New("config")

const configEnv = "AZUL_CONFIG"

// PolygonConfig configures the Polygon data source.
type PolygonConfig struct {
	APIKeys  []string      `yaml:"api_keys"`
	BaseURL  string        `yaml:"base_url" validate:"omitempty,url"`
	Cooldown time.Duration `yaml:"cooldown" validate:"min=0"`
}

// IEXConfig configures the IEX data source.
type IEXConfig struct {
	Token        string `yaml:"token"`
	BaseURL      string `yaml:"base_url" validate:"omitempty,url"`
	LookbackDays int    `yaml:"lookback_days" validate:"min=1"`
}

// ScheduleConfig configures the scheduled update.
type ScheduleConfig struct {
	// UpdateCron is a six-field cron spec (seconds first). Empty runs update once.
	UpdateCron string `yaml:"update_cron"`
}

// Config holds application configuration.
type Config struct {
	DataSource       string         `yaml:"data_source" validate:"required,oneof=polygon iex"`
	SymbolSource     string         `yaml:"symbol_source" validate:"required,oneof=faang sp500 polygon_cs iex file"`
	SymbolsFile      string         `yaml:"symbols_file" validate:"required_if=SymbolSource file"`
	OutputDir        string         `yaml:"output_dir"`
	SaveFormat       string         `yaml:"save_format" validate:"required,oneof=csv json parquet sqlite"`
	LogLevel         string         `yaml:"log_level" validate:"oneof=debug info warn warning error"`
	Calendar         string         `yaml:"calendar" validate:"required"`
	MissingThreshold int            `yaml:"missing_threshold" validate:"min=1"`
	Workers          int            `yaml:"workers" validate:"min=1,max=64"`
	RequestTimeout   time.Duration  `yaml:"request_timeout" validate:"min=0"`
	Polygon          PolygonConfig  `yaml:"polygon"`
	IEX              IEXConfig      `yaml:"iex"`
	Schedule         ScheduleConfig `yaml:"schedule"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		DataSource:       "iex",
		SymbolSource:     "faang",
		SaveFormat:       "csv",
		LogLevel:         "info",
		Calendar:         "NYSE",
		MissingThreshold: pipeline.DefaultMissingThreshold,
		Workers:          1,
		RequestTimeout:   30 * time.Second,
		Polygon:          PolygonConfig{Cooldown: polygon.KeyCooldown},
		IEX:              IEXConfig{LookbackDays: iex.DefaultLookbackDays},
	}
}

// HomeDir is ~/.azul, or .azul when the home directory is unknown.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".azul"
	}
	return filepath.Join(home, ".azul")
}

// ConfigPath picks the config file: the flag value, then AZUL_CONFIG, then ~/.azul/config.yaml.
func ConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(configEnv); v != "" {
		return v
	}
	return filepath.Join(HomeDir(), "config.yaml")
}

// LoadConfig layers defaults, the YAML file at path and environment overrides.
// A missing file is not an error. Flags are applied by the caller before Validate.
func LoadConfig(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("%w: read %s: %v", ErrConfig, path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("%w: parse %s: %v", ErrConfig, path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	c.DataSource = getEnv("DATA_SOURCE", c.DataSource)
	c.SymbolSource = getEnv("SYMBOL_SOURCE", c.SymbolSource)
	c.SymbolsFile = getEnv("SYMBOLS_FILE", c.SymbolsFile)
	c.OutputDir = getEnv("OUTPUT_DIR", c.OutputDir)
	c.SaveFormat = getEnv("SAVE_FORMAT", c.SaveFormat)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.IEX.Token = getEnv("IEX_TOKEN", c.IEX.Token)
	if keys := parsePolygonAPIKeys(); keys != nil {
		c.Polygon.APIKeys = keys
	}
	if w := os.Getenv("WORKERS"); w != "" {
		v, err := strconv.Atoi(w)
		if err != nil {
			return fmt.Errorf("%w: WORKERS=%q is not a number", ErrConfig, w)
		}
		c.Workers = v
	}
	return nil
}

// Overrides are command-line values; empty fields leave the config unchanged.
type Overrides struct {
	DataSource   string
	SymbolSource string
	SymbolsFile  string
	OutputDir    string
	SaveFormat   string
	LogLevel     string
	Workers      int
	UpdateCron   string
}

// Apply copies the set fields of o onto c.
func (c *Config) Apply(o Overrides) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.DataSource, o.DataSource)
	set(&c.SymbolSource, o.SymbolSource)
	set(&c.SymbolsFile, o.SymbolsFile)
	set(&c.OutputDir, o.OutputDir)
	set(&c.SaveFormat, o.SaveFormat)
	set(&c.LogLevel, o.LogLevel)
	set(&c.Schedule.UpdateCron, o.UpdateCron)
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
}

// Validate normalizes enum fields and checks the struct tags.
func (c *Config) Validate() error {
	c.DataSource = strings.ToLower(strings.TrimSpace(c.DataSource))
	c.SymbolSource = strings.ToLower(strings.TrimSpace(c.SymbolSource))
	c.SaveFormat = strings.ToLower(strings.TrimSpace(c.SaveFormat))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s: %s %s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
			}
			return fmt.Errorf("%w: %s", ErrConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return nil
}

// DataDir is the output directory: output_dir, or ~/.azul/<data_source>.
func (c *Config) DataDir() string {
	if c.OutputDir != "" {
		return c.OutputDir
	}
	return filepath.Join(HomeDir(), c.DataSource)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parsePolygonAPIKeys() []string {
	s := os.Getenv("POLYGON_API_KEYS")
	if s == "" {
		s = os.Getenv("POLYGON_API_KEY")
	}
	if s == "" {
		return nil
	}
	keys := strings.Split(s, ",")
	out := keys[:0]
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
