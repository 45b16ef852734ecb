package crawl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/brettelliot/azul/internal/slogx"
)

// FanIn funnels log lines from concurrent symbol jobs through one channel onto w,
// so lines from different goroutines never interleave.
type FanIn struct {
	Logger *slog.Logger

	lines chan string
	wg    sync.WaitGroup
	once  sync.Once
}

// NewFanIn starts the writer goroutine. Close flushes and stops it.
func NewFanIn(w io.Writer, level slog.Level) *FanIn {
	f := &FanIn{lines: make(chan string, 2048)}
	f.Logger = slogx.NewChanLogger(f.lines, level)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		runLogWriter(w, f.lines)
	}()
	return f
}

// Close stops the writer after the buffered lines are written. Logging after Close panics.
func (f *FanIn) Close() {
	f.once.Do(func() {
		close(f.lines)
		f.wg.Wait()
	})
}

func runLogWriter(w io.Writer, lines <-chan string) {
	for s := range lines {
		fmt.Fprintln(w, s)
	}
}

type errorEntry struct {
	Symbol string
	Err    error
}

func runErrorHandler(errors <-chan errorEntry, logger *slog.Logger) {
	for e := range errors {
		logger.Error("symbol error", "symbol", e.Symbol, "error", e.Err)
	}
}

// counters is the shared tally read by the heartbeat.
type counters struct {
	mu         sync.Mutex
	success    int
	failed     int
	minuteBars int
	dailyBars  int
}

func (c *counters) snapshot() (success, failed, minuteBars, dailyBars int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.success, c.failed, c.minuteBars, c.dailyBars
}

func runHeartbeat(ctx context.Context, interval time.Duration, totalJobs int, c *counters, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s, f, m, d := c.snapshot()
			logger.Info("heartbeat", "done", s+f, "total", totalJobs, "success", s, "failed", f, "minute_bars", m, "daily_bars", d)
		}
	}
}
