package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/brettelliot/azul/internal/calendar"
	"github.com/brettelliot/azul/internal/model"
	"github.com/brettelliot/azul/internal/provider"
)

var errBoom = errors.New("boom")

func nyse(t testing.TB) *calendar.NYSE {
	t.Helper()
	c, err := calendar.NewNYSE()
	require.NoError(t, err)
	return c
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// sessionBars returns perSession bars for the session, priced by day so sessions are distinguishable.
func sessionBars(cal *calendar.NYSE, session time.Time, perSession int) model.Series {
	minutes := cal.SessionMinutes(session)
	if perSession > 0 && perSession < len(minutes) {
		minutes = minutes[:perSession]
	}
	base := float64(session.Day())
	out := make(model.Series, 0, len(minutes))
	for i, m := range minutes {
		out = append(out, model.Bar{
			Time:     m,
			Open:     base + float64(i)*0.01,
			High:     base + 1 + float64(i)*0.01,
			Low:      base - 1,
			Close:    base + 0.5,
			Volume:   100,
			Dividend: 0,
			Split:    1,
		})
	}
	return out
}

// fakeSource serves generated bars for sessions on or after from; earlier sessions are empty.
type fakeSource struct {
	cal        *calendar.NYSE
	from       time.Time
	perSession int
	fail       map[time.Time]bool
	lookback   int

	mu    sync.Mutex
	calls []time.Time
}

func (f *fakeSource) Name() string { return "fake" }
func (f *fakeSource) Close() error { return nil }

func (f *fakeSource) FetchSession(_ context.Context, symbol string, session time.Time) (model.Series, error) {
	f.mu.Lock()
	f.calls = append(f.calls, session)
	f.mu.Unlock()
	if f.fail[session] {
		return nil, fmt.Errorf("fetch %s: %w", symbol, errBoom)
	}
	if session.Before(f.from) {
		return nil, nil
	}
	return sessionBars(f.cal, session, f.perSession), nil
}

type limitedSource struct {
	*fakeSource
}

func (l limitedSource) LookbackDays() int { return l.lookback }

var (
	_ provider.MinuteDataSource = (*fakeSource)(nil)
	_ provider.LookbackLimiter  = limitedSource{}
)

// memorySink stores written series by granularity and symbol.
type memorySink struct {
	data   map[string]model.Series
	writes int
}

func newMemorySink() *memorySink { return &memorySink{data: make(map[string]model.Series)} }

func (m *memorySink) key(g model.Granularity, symbol string) string { return g.String() + "/" + symbol }

func (m *memorySink) Write(g model.Granularity, symbol string, bars model.Series) error {
	m.writes++
	m.data[m.key(g, symbol)] = bars.Clone()
	return nil
}

func (m *memorySink) Load(g model.Granularity, symbol string) (model.Series, error) {
	s, ok := m.data[m.key(g, symbol)]
	if !ok {
		return nil, fmt.Errorf("load %s: %w", symbol, fs.ErrNotExist)
	}
	return s.Clone(), nil
}
