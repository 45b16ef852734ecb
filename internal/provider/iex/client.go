// Package iex fetches intraday minute bars and reference symbols from IEX Cloud.
package iex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-resty/resty/v2"

	"github.com/brettelliot/azul/internal/httpx"
	"github.com/brettelliot/azul/internal/model"
	"github.com/brettelliot/azul/internal/provider"
)

const (
	DefaultBaseURL = "https://cloud.iexapis.com/stable"

	// DefaultLookbackDays is how far back IEX serves intraday minute data.
	DefaultLookbackDays = 30
)

// Options configures a Client.
type Options struct {
	Token        string
	LookbackDays int
	HTTP         httpx.Options
}

// Client is a provider.MinuteDataSource backed by the IEX intraday chart endpoint.
type Client struct {
	http     *resty.Client
	token    string
	lookback int
	loc      *time.Location
	logger   *slog.Logger
}

var (
	_ provider.MinuteDataSource = (*Client)(nil)
	_ provider.LookbackLimiter  = (*Client)(nil)
)

// New creates an IEX client.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, errors.New("iex: token is required")
	}
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, fmt.Errorf("iex: %w", err)
	}
	if opts.HTTP.BaseURL == "" {
		opts.HTTP.BaseURL = DefaultBaseURL
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = DefaultLookbackDays
	}
	logger := opts.HTTP.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:     httpx.New(opts.HTTP),
		token:    opts.Token,
		lookback: opts.LookbackDays,
		loc:      loc,
		logger:   logger.With("source", "iex"),
	}, nil
}

func (c *Client) Name() string      { return provider.IEX.String() }
func (c *Client) LookbackDays() int { return c.lookback }
func (c *Client) Close() error      { return nil }

// FetchSession returns the session's minute bars in UTC.
// It fails with provider.ErrIncompletePayload when rows arrive without any consolidated price column.
func (c *Client) FetchSession(ctx context.Context, symbol string, session time.Time) (model.Series, error) {
	var rows []ChartBar
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"symbol": symbol, "date": session.Format("20060102")}).
		SetQueryParams(map[string]string{"chartByDay": "false", "token": c.token}).
		SetResult(&rows).
		Get("/stock/{symbol}/chart/date/{date}")
	if err != nil {
		return nil, fmt.Errorf("iex chart %s %s: %w", symbol, session.Format(time.DateOnly), err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("iex chart %s %s: status %d: %s", symbol, session.Format(time.DateOnly), resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return c.toSeries(symbol, rows)
}

func (c *Client) toSeries(symbol string, rows []ChartBar) (model.Series, error) {
	if len(rows) == 0 {
		return model.Series{}, nil
	}
	priced := false
	for _, r := range rows {
		if r.hasMarketPrices() {
			priced = true
			break
		}
	}
	if !priced {
		return nil, fmt.Errorf("iex chart %s: %w: no market price columns", symbol, provider.ErrIncompletePayload)
	}

	bars := make(model.Series, 0, len(rows))
	skipped := 0
	for _, r := range rows {
		b, ok := r.ToBar(c.loc)
		if !ok {
			skipped++
			continue
		}
		bars = append(bars, b)
	}
	if skipped > 0 {
		c.logger.Debug("skipped rows with bad timestamps", "symbol", symbol, "rows", skipped)
	}
	bars.SortAscending()
	return bars, nil
}

// Symbols lists enabled common stocks from the reference data.
func (c *Client) Symbols(ctx context.Context) ([]string, error) {
	var refs []RefSymbol
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("token", c.token).
		SetResult(&refs).
		Get("/ref-data/symbols")
	if err != nil {
		return nil, fmt.Errorf("iex ref-data symbols: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("iex ref-data symbols: status %d", resp.StatusCode())
	}
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.IsEnabled && strings.EqualFold(r.Type, "cs") {
			out = append(out, r.Symbol)
		}
	}
	return out, nil
}
