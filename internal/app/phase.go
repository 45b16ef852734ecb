package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/brettelliot/azul/internal/crawl"
	"github.com/brettelliot/azul/internal/symbols"
)

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// ResolveSymbols returns explicit when non-empty, otherwise the configured source's list.
func (a *RunApp) ResolveSymbols(ctx context.Context, explicit []string) ([]string, error) {
	if list := symbols.Normalize(explicit); len(list) > 0 {
		return list, nil
	}
	list, err := a.Symbols.Symbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("symbols from %s: %w", a.Symbols.Name(), err)
	}
	a.Logger.Info("got symbols", "source", a.Symbols.Name(), "count", len(list))
	return list, nil
}

// Download runs a full download over [start, end]; zero bounds use the default range.
func (a *RunApp) Download(ctx context.Context, explicit []string, start, end time.Time) (crawl.Summary, error) {
	list, err := a.ResolveSymbols(ctx, explicit)
	if err != nil {
		return crawl.Summary{}, err
	}
	return a.Runner.Download(ctx, list, start, end)
}

// Update appends the sessions after each symbol's stored data.
func (a *RunApp) Update(ctx context.Context, explicit []string) (crawl.Summary, error) {
	list, err := a.ResolveSymbols(ctx, explicit)
	if err != nil {
		return crawl.Summary{}, err
	}
	return a.Runner.Update(ctx, list)
}

// UpdateOnSchedule runs Update now and then on every tick of spec (six fields, seconds first)
// until ctx is done. A tick that fires while the previous run is still going is skipped.
func (a *RunApp) UpdateOnSchedule(ctx context.Context, spec string, explicit []string) error {
	logger := cronLogger{l: a.Logger}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	run := func() {
		if ctx.Err() != nil {
			return
		}
		sum, err := a.Update(ctx, explicit)
		if err != nil && ctx.Err() == nil {
			a.Logger.Error("scheduled update failed", "error", err)
			return
		}
		a.Logger.Info("done, wait until next run", "run", sum.RunID, "success", len(sum.Success), "failed", len(sum.Failed))
	}
	id, err := c.AddFunc(spec, run)
	if err != nil {
		return fmt.Errorf("%w: update_cron %q: %v", ErrConfig, spec, err)
	}

	run()
	c.Start()
	a.Logger.Info("scheduler started", "cron", spec, "next_run", c.Entry(id).Next.Format("2006-01-02 15:04:05"))

	<-ctx.Done()
	a.Logger.Info("received signal, graceful shutdown")
	<-c.Stop().Done()
	a.Logger.Info("scheduler stopped")
	return nil
}

// cronLogger routes the scheduler's own logging to slog. Its chatty info lines go to debug.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron "+msg, append(keysAndValues, "error", err)...)
}
