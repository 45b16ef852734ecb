// Package crawl runs the per-symbol pipeline over many symbols in parallel.
package crawl

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/brettelliot/azul/internal/pipeline"
)

// Processor is the per-symbol pipeline. *pipeline.Processor implements it.
type Processor interface {
	Process(ctx context.Context, symbol string, start, end time.Time) (pipeline.Result, error)
	Update(ctx context.Context, symbol string, since time.Time) (pipeline.Result, error)
}

// Mode selects what a job does with its symbol.
type Mode int

const (
	// Download fetches [Start, End] and replaces stored output.
	Download Mode = iota
	// Update appends sessions after Since to stored output.
	Update
)

func (m Mode) String() string {
	if m == Update {
		return "update"
	}
	return "download"
}

// Job represents one symbol run
type Job struct {
	Mode   Mode
	Symbol string
	Start  time.Time
	End    time.Time
	Since  time.Time
}

func (j Job) dateRange() string {
	if j.Mode == Update {
		if j.Since.IsZero() {
			return "stored.."
		}
		return j.Since.Format(time.DateOnly) + ".."
	}
	format := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.DateOnly)
	}
	return format(j.Start) + ".." + format(j.End)
}

// JobResult is sent by workers for fan-in
type JobResult struct {
	Ok     bool
	NoData bool
	Symbol string
	Range  string
	Reason string
	Result pipeline.Result
}

// Summary describes one run. NoData lists the successful downloads that had no
// sessions to write.
type Summary struct {
	RunID      string
	Success    []string
	NoData     []string
	Failed     []FailedEntry
	MinuteBars int
	DailyBars  int
}

// Runner fans symbol jobs out to Workers goroutines. Per-symbol failures are reported,
// never returned; only cancellation of ctx ends a run early.
type Runner struct {
	Processor Processor
	Workers   int
	// Dir holds the run reports and the progress file.
	Dir       string
	Heartbeat time.Duration
	Logger    *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// ProgressPath is the progress file of this runner.
func (r *Runner) ProgressPath() string { return filepath.Join(r.Dir, ProgressFile) }

// DownloadJobs builds one download job per symbol.
func DownloadJobs(symbols []string, start, end time.Time) []Job {
	jobs := make([]Job, len(symbols))
	for i, s := range symbols {
		jobs[i] = Job{Mode: Download, Symbol: s, Start: start, End: end}
	}
	return jobs
}

// UpdateJobs builds one update job per symbol, resuming after the recorded last session.
// Symbols without progress resume from what the sink holds.
func UpdateJobs(symbols []string, progress map[string]string) []Job {
	jobs := make([]Job, len(symbols))
	for i, s := range symbols {
		jobs[i] = Job{Mode: Update, Symbol: s, Since: LastSession(progress, s)}
	}
	return jobs
}

// Download processes every symbol over [start, end].
func (r *Runner) Download(ctx context.Context, symbols []string, start, end time.Time) (Summary, error) {
	return r.Run(ctx, DownloadJobs(symbols, start, end))
}

// Update brings every symbol up to date.
func (r *Runner) Update(ctx context.Context, symbols []string) (Summary, error) {
	return r.Run(ctx, UpdateJobs(symbols, LoadProgress(r.ProgressPath())))
}

// Run executes jobs, writes the run report and keeps the progress file current.
func (r *Runner) Run(ctx context.Context, jobs []Job) (Summary, error) {
	runID := uuid.NewString()
	logger := r.logger().With("run", runID)
	sum := Summary{RunID: runID}
	if len(jobs) == 0 {
		logger.Info("no symbols to process, skip")
		return sum, nil
	}
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	logger.Info("run start", "mode", jobs[0].Mode, "jobs", len(jobs), "workers", workers)

	progress := make(chan ProgressUpdate, len(jobs))
	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		RunProgressWriter(r.ProgressPath(), progress)
	}()

	errs := make(chan errorEntry, 64)
	errDone := make(chan struct{})
	go func() {
		defer close(errDone)
		runErrorHandler(errs, logger)
	}()

	results := make(chan JobResult, len(jobs))
	var c counters
	resDone := make(chan struct{})
	go func() {
		defer close(resDone)
		for res := range results {
			c.mu.Lock()
			if res.Ok {
				c.success++
				c.minuteBars += res.Result.MinuteBars
				c.dailyBars += res.Result.DailyBars
				sum.Success = appendSuccess(sum.Success, res.Symbol)
				if res.NoData {
					sum.NoData = append(sum.NoData, res.Symbol)
				}
			} else {
				c.failed++
				sum.Failed = append(sum.Failed, FailedEntry{Symbol: res.Symbol, DateRange: res.Range, Reason: res.Reason})
			}
			c.mu.Unlock()
		}
	}()

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	if r.Heartbeat > 0 {
		go runHeartbeat(hbCtx, r.Heartbeat, len(jobs), &c, logger)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res := r.runJob(gctx, job, logger, errs)
			results <- res
			if res.Ok && res.Result.Written {
				progress <- ProgressUpdate{Symbol: job.Symbol, Date: res.Result.LastSession.Format(time.DateOnly)}
			}
			return nil
		})
	}
	_ = g.Wait()
	stopHeartbeat()
	close(results)
	<-resDone
	close(errs)
	<-errDone
	close(progress)
	<-progressDone

	sum.MinuteBars, sum.DailyBars = c.minuteBars, c.dailyBars
	logger.Info("summary", "success", len(sum.Success), "no_data", len(sum.NoData), "failed", len(sum.Failed), "minute_bars", sum.MinuteBars, "daily_bars", sum.DailyBars)
	if len(sum.Failed) > 0 {
		logger.Info("summary failed", "count", len(sum.Failed), "reasons", joinFailedReasons(sum.Failed))
	}
	if err := writeRunReport(r.Dir, sum.Success, sum.Failed); err != nil {
		logger.Warn("could not write run report", "error", err)
	}
	return sum, ctx.Err()
}

func (r *Runner) runJob(ctx context.Context, job Job, logger *slog.Logger, errs chan<- errorEntry) JobResult {
	out := JobResult{Symbol: job.Symbol, Range: job.dateRange()}
	var (
		res pipeline.Result
		err error
	)
	switch job.Mode {
	case Update:
		res, err = r.Processor.Update(ctx, job.Symbol, job.Since)
	default:
		res, err = r.Processor.Process(ctx, job.Symbol, job.Start, job.End)
	}
	out.Result = res

	switch {
	case err != nil:
		out.Reason = err.Error()
		select {
		case errs <- errorEntry{Symbol: job.Symbol, Err: err}:
		default:
		}
	case job.Mode == Download && !res.Written:
		out.Ok, out.NoData = true, true
		logger.Info("no data, nothing written", "symbol", job.Symbol, "date_range", out.Range)
	default:
		out.Ok = true
		logger.Info("symbol ok", "symbol", job.Symbol, "mode", job.Mode, "minute_bars", res.MinuteBars, "daily_bars", res.DailyBars)
	}
	return out
}
