package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettelliot/azul/internal/crawl"
	"github.com/brettelliot/azul/internal/pipeline"
	"github.com/brettelliot/azul/internal/slogx"
	"github.com/brettelliot/azul/internal/symbols"
)

type countingProcessor struct {
	mu      sync.Mutex
	updates []string
}

func (p *countingProcessor) Process(_ context.Context, symbol string, _, _ time.Time) (pipeline.Result, error) {
	return pipeline.Result{Symbol: symbol, Written: true, LastSession: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)}, nil
}

func (p *countingProcessor) Update(_ context.Context, symbol string, _ time.Time) (pipeline.Result, error) {
	p.mu.Lock()
	p.updates = append(p.updates, symbol)
	p.mu.Unlock()
	return pipeline.Result{Symbol: symbol}, nil
}

func (p *countingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.updates)
}

type failingSource struct{}

func (failingSource) Name() string { return "broken" }
func (failingSource) Symbols(context.Context) ([]string, error) {
	return nil, errors.New("unreachable")
}

func newRunApp(t *testing.T, proc crawl.Processor, src symbols.Source) *RunApp {
	t.Helper()
	log := slogx.Discard()
	return &RunApp{
		Logger:  log,
		Symbols: src,
		Runner:  &crawl.Runner{Processor: proc, Dir: t.TempDir(), Logger: log},
	}
}

func TestResolveSymbols(t *testing.T) {
	a := newRunApp(t, &countingProcessor{}, symbols.NewFAANG())

	list, err := a.ResolveSymbols(context.Background(), []string{" msft", "MSFT", "ibm"})
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT", "IBM"}, list)

	list, err = a.ResolveSymbols(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, list, 5)

	a.Symbols = failingSource{}
	_, err = a.ResolveSymbols(context.Background(), nil)
	assert.ErrorContains(t, err, "broken")
}

func TestDownloadAndUpdate(t *testing.T) {
	proc := &countingProcessor{}
	a := newRunApp(t, proc, symbols.NewStatic("test", "AAPL", "MSFT"))

	sum, err := a.Download(context.Background(), nil, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, sum.Success)

	sum, err = a.Update(context.Background(), []string{"IBM"})
	require.NoError(t, err)
	assert.Equal(t, []string{"IBM"}, sum.Success)
	assert.Equal(t, 1, proc.count())
}

func TestUpdateOnSchedule(t *testing.T) {
	proc := &countingProcessor{}
	a := newRunApp(t, proc, symbols.NewStatic("test", "AAPL"))

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()
	require.NoError(t, a.UpdateOnSchedule(ctx, "* * * * * *", nil))

	// The immediate run plus at least one tick.
	assert.GreaterOrEqual(t, proc.count(), 2)
}

func TestUpdateOnScheduleBadSpec(t *testing.T) {
	proc := &countingProcessor{}
	a := newRunApp(t, proc, symbols.NewStatic("test", "AAPL"))

	err := a.UpdateOnSchedule(context.Background(), "every day", nil)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Zero(t, proc.count())
}
