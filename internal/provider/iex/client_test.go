package iex

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettelliot/azul/internal/httpx"
	"github.com/brettelliot/azul/internal/provider"
	"github.com/brettelliot/azul/internal/slogx"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{
		Token: "tok",
		HTTP:  httpx.Options{BaseURL: srv.URL, RetryWait: time.Millisecond, Logger: slogx.Discard()},
	})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

var session = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func TestFetchSessionConvertsToUTC(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "tok", r.URL.Query().Get("token"))
		assert.Equal(t, "false", r.URL.Query().Get("chartByDay"))
		writeJSON(w, `[
			{"date":"2024-07-01","minute":"09:31","marketOpen":10.5,"marketHigh":11,"marketLow":10,"marketClose":10.8,"marketVolume":300,"open":99},
			{"date":"2024-07-01","minute":"09:30","marketOpen":10,"marketHigh":10.6,"marketLow":9.9,"marketClose":10.5,"marketVolume":1200}
		]`)
	})

	bars, err := c.FetchSession(context.Background(), "AAPL", session)
	require.NoError(t, err)
	assert.Equal(t, "/stock/AAPL/chart/date/20240701", gotPath)

	require.Len(t, bars, 2)
	// EDT is UTC-4
	assert.Equal(t, time.Date(2024, 7, 1, 13, 30, 0, 0, time.UTC), bars[0].Time)
	assert.Equal(t, 10.0, bars[0].Open)
	assert.Equal(t, int64(1200), bars[0].Volume)
	assert.Equal(t, 10.5, bars[1].Open)
	assert.Equal(t, 1.0, bars[1].Split)
}

func TestFetchSessionNullPricesBecomeNaN(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[
			{"date":"2024-07-01","minute":"09:30","marketOpen":10,"marketHigh":10,"marketLow":10,"marketClose":10,"marketVolume":5},
			{"date":"2024-07-01","minute":"09:31","marketOpen":null,"marketHigh":null,"marketLow":null,"marketClose":null,"marketVolume":0},
			{"date":"bad","minute":"09:32","marketOpen":1}
		]`)
	})

	bars, err := c.FetchSession(context.Background(), "AAPL", session)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.True(t, math.IsNaN(bars[1].Open))
	assert.Zero(t, bars[1].Volume)
}

func TestFetchSessionIncompletePayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[{"date":"2024-07-01","minute":"09:30","open":10,"close":11}]`)
	})
	_, err := c.FetchSession(context.Background(), "AAPL", session)
	assert.ErrorIs(t, err, provider.ErrIncompletePayload)
}

func TestFetchSessionEmptyAndErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/stock/NONE/chart/date/20240701" {
			writeJSON(w, `[]`)
			return
		}
		http.Error(w, "Unknown symbol", http.StatusNotFound)
	})

	bars, err := c.FetchSession(context.Background(), "NONE", session)
	require.NoError(t, err)
	assert.Empty(t, bars)

	_, err = c.FetchSession(context.Background(), "XXXX", session)
	assert.ErrorContains(t, err, "status 404")
}

func TestSymbolsFiltersCommonStock(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ref-data/symbols", r.URL.Path)
		writeJSON(w, `[
			{"symbol":"A","type":"cs","isEnabled":true},
			{"symbol":"SPY","type":"et","isEnabled":true},
			{"symbol":"OLD","type":"cs","isEnabled":false},
			{"symbol":"AAPL","type":"cs","isEnabled":true}
		]`)
	})
	syms, err := c.Symbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "AAPL"}, syms)
}

func TestNewDefaults(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	c, err := New(Options{Token: "tok"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLookbackDays, c.LookbackDays())
	assert.Equal(t, "iex", c.Name())
}
