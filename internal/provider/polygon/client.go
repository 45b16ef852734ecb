// Package polygon fetches minute aggregates and reference data from the Polygon REST API.
package polygon

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/brettelliot/azul/internal/httpx"
	"github.com/brettelliot/azul/internal/model"
	"github.com/brettelliot/azul/internal/provider"
)

const (
	DefaultBaseURL = "https://api.polygon.io"

	// Max 50k results per request; one session is at most 960 extended-hours minutes.
	maxLimit = 50000

	tickersPageLimit = 1000
)

// Options configures a Client. Cooldown is the minimum spacing between requests on one key.
type Options struct {
	APIKeys  []string
	Cooldown time.Duration
	HTTP     httpx.Options
}

// Client is a provider.MinuteDataSource backed by Polygon aggregates.
type Client struct {
	http   *resty.Client
	keys   *KeyPool
	logger *slog.Logger
}

var (
	_ provider.MinuteDataSource = (*Client)(nil)
	_ provider.ListingDater     = (*Client)(nil)
)

// New creates a Polygon client.
func New(opts Options) (*Client, error) {
	keys, err := NewKeyPool(opts.APIKeys, opts.Cooldown)
	if err != nil {
		return nil, fmt.Errorf("polygon: %w", err)
	}
	if opts.HTTP.BaseURL == "" {
		opts.HTTP.BaseURL = DefaultBaseURL
	}
	logger := opts.HTTP.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:   httpx.New(opts.HTTP),
		keys:   keys,
		logger: logger.With("source", "polygon"),
	}, nil
}

// Name returns provider name
func (c *Client) Name() string { return provider.Polygon.String() }

// FetchSession returns the minute bars Polygon has for one session, including extended hours.
// A DELAYED response (session not yet available on the plan) is reported as no bars.
func (c *Client) FetchSession(ctx context.Context, symbol string, session time.Time) (model.Series, error) {
	day := session.Format(time.DateOnly)
	key, err := c.keys.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	var out AggregatesResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"ticker": symbol, "from": day, "to": day}).
		SetQueryParams(map[string]string{
			"adjusted": "true",
			"sort":     "asc",
			"limit":    strconv.Itoa(maxLimit),
			"apiKey":   key,
		}).
		SetResult(&out).
		Get("/v2/aggs/ticker/{ticker}/range/1/minute/{from}/{to}")
	if err != nil {
		return nil, fmt.Errorf("polygon aggregates %s %s: %w", symbol, day, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("polygon aggregates %s %s: status %d: %s", symbol, day, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	switch out.Status {
	case "OK":
	case "DELAYED":
		c.logger.Debug("aggregates delayed", "symbol", symbol, "session", day)
		return model.Series{}, nil
	default:
		return nil, fmt.Errorf("polygon aggregates %s %s: status %q %s", symbol, day, out.Status, out.Error)
	}

	bars := make(model.Series, 0, len(out.Results))
	for _, raw := range out.Results {
		bars = append(bars, raw.ToBar())
	}
	return bars, nil
}

// ListingDate looks up the symbol's list date. ok is false when Polygon does not know it.
func (c *Client) ListingDate(ctx context.Context, symbol string) (time.Time, bool) {
	key, err := c.keys.Acquire(ctx)
	if err != nil {
		return time.Time{}, false
	}
	var out TickerDetailsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("ticker", symbol).
		SetQueryParam("apiKey", key).
		SetResult(&out).
		Get("/v3/reference/tickers/{ticker}")
	if err != nil || resp.IsError() {
		c.logger.Info("could not get ticker details", "symbol", symbol, "status", statusOf(resp), "error", err)
		return time.Time{}, false
	}
	if out.Results.ListDate == "" {
		c.logger.Info("no list date provided", "symbol", symbol)
		return time.Time{}, false
	}
	listed, err := time.Parse(time.DateOnly, out.Results.ListDate)
	if err != nil {
		c.logger.Info("bad list date", "symbol", symbol, "list_date", out.Results.ListDate)
		return time.Time{}, false
	}
	c.logger.Debug("list date", "symbol", symbol, "list_date", out.Results.ListDate)
	return listed, true
}

// CommonStocks lists every active common-stock ticker, following next_url pagination.
func (c *Client) CommonStocks(ctx context.Context) ([]string, error) {
	var tickers []string
	next := "/v3/reference/tickers"
	for page := 1; next != ""; page++ {
		key, err := c.keys.Acquire(ctx)
		if err != nil {
			return nil, err
		}
		var out TickersResponse
		req := c.http.R().SetContext(ctx).SetQueryParam("apiKey", key).SetResult(&out)
		if page == 1 {
			req.SetQueryParams(map[string]string{
				"type":   "CS",
				"market": "stocks",
				"active": "true",
				"order":  "asc",
				"limit":  strconv.Itoa(tickersPageLimit),
			})
		}
		resp, err := req.Get(next)
		if err != nil {
			return nil, fmt.Errorf("polygon tickers page %d: %w", page, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("polygon tickers page %d: status %d", page, resp.StatusCode())
		}
		if out.Status != "OK" {
			return nil, fmt.Errorf("polygon tickers page %d: status %q", page, out.Status)
		}
		for _, r := range out.Results {
			tickers = append(tickers, r.Ticker)
		}
		c.logger.Info("got tickers page", "page", page, "count", len(out.Results))
		next = out.NextURL
	}
	return tickers, nil
}

// Close logs key usage. The HTTP transport keeps no idle connections.
func (c *Client) Close() error {
	for _, s := range c.keys.Stats() {
		c.logger.Debug("api key usage", "key", s.Prefix, "requests", s.Requests)
	}
	return nil
}

func statusOf(resp *resty.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode()
}
