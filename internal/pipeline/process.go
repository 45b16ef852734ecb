package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/brettelliot/azul/internal/model"
)

// Sink persists reconciled series. Load returns an error wrapping fs.ErrNotExist
// when nothing is stored for the symbol.
type Sink interface {
	Write(g model.Granularity, symbol string, bars model.Series) error
	Load(g model.Granularity, symbol string) (model.Series, error)
}

// Result summarizes one symbol run. LastSession is the date of the newest written
// minute bar and is zero when nothing was written.
type Result struct {
	Symbol      string
	MinuteBars  int
	DailyBars   int
	MinuteDrift Drift
	DailyDrift  Drift
	LastSession time.Time
	Written     bool
}

// Processor runs the per-symbol pipeline: build, reconcile, write minute, resample, reconcile, write daily.
type Processor struct {
	Builder    *Builder
	Reconciler *Reconciler
	Sink       Sink
	Logger     *slog.Logger
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Process downloads symbol for [start, end] and writes minute and daily outputs.
// A symbol without data in the range succeeds without writing anything.
func (p *Processor) Process(ctx context.Context, symbol string, start, end time.Time) (Result, error) {
	minute, err := p.Builder.Build(ctx, symbol, start, end)
	if err != nil {
		return Result{Symbol: symbol}, err
	}
	return p.write(symbol, minute)
}

// Update appends sessions newer than the stored minute series and rewrites both outputs.
// since is the last session already stored; zero means derive it from the sink.
func (p *Processor) Update(ctx context.Context, symbol string, since time.Time) (Result, error) {
	stored, err := p.Sink.Load(model.Minute, symbol)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Result{Symbol: symbol}, fmt.Errorf("load stored minute bars: %w", err)
	}
	if since.IsZero() && len(stored) > 0 {
		since = model.Day(stored.Last().Time)
	}

	var start time.Time
	if !since.IsZero() {
		start = model.Day(since).AddDate(0, 0, 1)
		now := time.Now
		if p.Builder.Now != nil {
			now = p.Builder.Now
		}
		if start.After(model.Day(now())) {
			p.logger().Info("symbol up to date", "symbol", symbol, "last", since.Format(time.DateOnly))
			return Result{Symbol: symbol}, nil
		}
	}

	fresh, err := p.Builder.Build(ctx, symbol, start, time.Time{})
	if err != nil {
		return Result{Symbol: symbol}, err
	}
	if len(fresh) == 0 {
		p.logger().Info("no new minute data", "symbol", symbol)
		return Result{Symbol: symbol}, nil
	}

	merged := make(model.Series, 0, len(stored)+len(fresh))
	merged = append(merged, stored...)
	merged = append(merged, fresh...)
	return p.write(symbol, merged)
}

func (p *Processor) write(symbol string, minute model.Series) (Result, error) {
	res := Result{Symbol: symbol}
	if len(minute) == 0 {
		return res, nil
	}

	minute, res.MinuteDrift = p.Reconciler.Reconcile(symbol, minute, model.Minute)
	if len(minute) == 0 {
		return res, nil
	}
	if err := p.Sink.Write(model.Minute, symbol, minute); err != nil {
		return res, fmt.Errorf("write minute bars: %w", err)
	}
	res.MinuteBars = len(minute)
	res.LastSession = model.Day(minute.Last().Time)
	res.Written = true

	daily := ResampleDaily(minute)
	daily, res.DailyDrift = p.Reconciler.Reconcile(symbol, daily, model.Daily)
	if err := p.Sink.Write(model.Daily, symbol, daily); err != nil {
		return res, fmt.Errorf("write daily bars: %w", err)
	}
	res.DailyBars = len(daily)
	return res, nil
}
