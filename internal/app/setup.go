package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/brettelliot/azul/internal/httpx"
	"github.com/brettelliot/azul/internal/provider"
	"github.com/brettelliot/azul/internal/provider/iex"
	"github.com/brettelliot/azul/internal/provider/polygon"
	"github.com/brettelliot/azul/internal/symbols"
)

const userAgent = "azul/1.0"

// httpOptions configures a vendor client. Session fetches are never retried: a failed
// session counts as empty and the back-off decides what happens next.
func (c *Config) httpOptions(baseURL string, retries int, logger *slog.Logger) httpx.Options {
	return httpx.Options{
		BaseURL:   baseURL,
		Timeout:   c.RequestTimeout,
		Retries:   retries,
		UserAgent: userAgent,
		Logger:    logger,
	}
}

func createPolygonClient(cfg *Config, retries int, logger *slog.Logger) (*polygon.Client, error) {
	if len(cfg.Polygon.APIKeys) == 0 {
		return nil, fmt.Errorf("%w: POLYGON_API_KEY or POLYGON_API_KEYS not set", ErrConfig)
	}
	return polygon.New(polygon.Options{
		APIKeys:  cfg.Polygon.APIKeys,
		Cooldown: cfg.Polygon.Cooldown,
		HTTP:     cfg.httpOptions(cfg.Polygon.BaseURL, retries, logger),
	})
}

func createIEXClient(cfg *Config, retries int, logger *slog.Logger) (*iex.Client, error) {
	if strings.TrimSpace(cfg.IEX.Token) == "" {
		return nil, fmt.Errorf("%w: IEX_TOKEN not set", ErrConfig)
	}
	return iex.New(iex.Options{
		Token:        cfg.IEX.Token,
		LookbackDays: cfg.IEX.LookbackDays,
		HTTP:         cfg.httpOptions(cfg.IEX.BaseURL, retries, logger),
	})
}

// CreateDataSource creates the MinuteDataSource named by data_source.
// Caller must call Close when shutting down.
func CreateDataSource(cfg *Config, logger *slog.Logger) (provider.MinuteDataSource, error) {
	kind, err := provider.ParseKind(cfg.DataSource)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	switch kind {
	case provider.Polygon:
		c, err := createPolygonClient(cfg, 0, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case provider.IEX:
		c, err := createIEXClient(cfg, 0, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: unsupported data source %s", ErrConfig, kind)
	}
}

// CreateSymbolSource creates the symbol Source named by symbol_source.
func CreateSymbolSource(cfg *Config, logger *slog.Logger) (symbols.Source, error) {
	kind, err := symbols.ParseKind(cfg.SymbolSource)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	switch kind {
	case symbols.FAANG:
		return symbols.NewFAANG(), nil
	case symbols.SP500:
		return &symbols.SP500Wikipedia{HTTP: httpx.New(cfg.httpOptions("", httpx.DefaultRetries, logger))}, nil
	case symbols.PolygonCS:
		c, err := createPolygonClient(cfg, httpx.DefaultRetries, logger)
		if err != nil {
			return nil, err
		}
		return symbols.NewVendor(kind.String(), c.CommonStocks), nil
	case symbols.IEX:
		c, err := createIEXClient(cfg, httpx.DefaultRetries, logger)
		if err != nil {
			return nil, err
		}
		return symbols.NewVendor(kind.String(), c.Symbols), nil
	case symbols.File:
		if cfg.SymbolsFile == "" {
			return nil, fmt.Errorf("%w: symbols_file is required for the file symbol source", ErrConfig)
		}
		return &symbols.FileSource{Path: cfg.SymbolsFile}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported symbol source %s", ErrConfig, kind)
	}
}
