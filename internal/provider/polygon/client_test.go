package polygon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettelliot/azul/internal/httpx"
	"github.com/brettelliot/azul/internal/slogx"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{
		APIKeys: []string{"test-key-123456"},
		HTTP:    httpx.Options{BaseURL: srv.URL, RetryWait: time.Millisecond, Logger: slogx.Discard()},
	})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestFetchSession(t *testing.T) {
	open := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	var gotPath, gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		resp := AggregatesResponse{
			Status: "OK",
			Results: []BarRaw{
				{Timestamp: open.UnixMilli(), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 1200},
				{Timestamp: open.Add(time.Minute).UnixMilli(), Open: 10.5, High: 12, Low: 10, Close: 11, Volume: 800},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))

	bars, err := c.FetchSession(context.Background(), "AAPL", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "/v2/aggs/ticker/AAPL/range/1/minute/2024-03-04/2024-03-04", gotPath)
	assert.Contains(t, gotQuery, "adjusted=true")
	assert.Contains(t, gotQuery, "apiKey=test-key-123456")
	assert.Contains(t, gotQuery, "limit=50000")

	require.Len(t, bars, 2)
	assert.Equal(t, open, bars[0].Time)
	assert.Equal(t, int64(1200), bars[0].Volume)
	assert.Equal(t, 1.0, bars[0].Split)
	assert.Equal(t, 0.0, bars[0].Dividend)
}

func TestFetchSessionDelayedIsEmpty(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"status":"DELAYED","results":[{"t":1,"o":1,"h":1,"l":1,"c":1,"v":1}]}`)
	}))
	bars, err := c.FetchSession(context.Background(), "AAPL", time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestFetchSessionErrors(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "BAD") {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"status":"NOT_AUTHORIZED"}`))
			return
		}
		writeJSON(w, `{"status":"ERROR","error":"unknown ticker"}`)
	}))
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	_, err := c.FetchSession(context.Background(), "BAD", day)
	assert.ErrorContains(t, err, "status 403")

	_, err = c.FetchSession(context.Background(), "NOPE", day)
	assert.ErrorContains(t, err, "unknown ticker")
}

func TestListingDate(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v3/reference/tickers/AAPL":
			writeJSON(w, `{"status":"OK","results":{"ticker":"AAPL","list_date":"1980-12-12"}}`)
		case "/v3/reference/tickers/NEW":
			writeJSON(w, `{"status":"OK","results":{"ticker":"NEW"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	ctx := context.Background()

	listed, ok := c.ListingDate(ctx, "AAPL")
	require.True(t, ok)
	assert.Equal(t, time.Date(1980, 12, 12, 0, 0, 0, 0, time.UTC), listed)

	_, ok = c.ListingDate(ctx, "NEW")
	assert.False(t, ok)
	_, ok = c.ListingDate(ctx, "GONE")
	assert.False(t, ok)
}

func TestCommonStocksFollowsNextURL(t *testing.T) {
	var srvURL string
	var calls int
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "test-key-123456", r.URL.Query().Get("apiKey"))
		if r.URL.Query().Get("cursor") == "" {
			assert.Equal(t, "CS", r.URL.Query().Get("type"))
			writeJSON(w, `{"status":"OK","results":[{"ticker":"A"},{"ticker":"AA"}],"next_url":"`+srvURL+`/v3/reference/tickers?cursor=p2"}`)
			return
		}
		writeJSON(w, `{"status":"OK","results":[{"ticker":"AAPL"}]}`)
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	c, err := New(Options{
		APIKeys: []string{"test-key-123456"},
		HTTP:    httpx.Options{BaseURL: srv.URL, Logger: slogx.Discard()},
	})
	require.NoError(t, err)

	tickers, err := c.CommonStocks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "AA", "AAPL"}, tickers)
	assert.Equal(t, 2, calls)
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}
