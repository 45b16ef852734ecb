package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/brettelliot/azul/internal/calendar"
	"github.com/brettelliot/azul/internal/crawl"
	"github.com/brettelliot/azul/internal/pipeline"
	"github.com/brettelliot/azul/internal/provider"
	"github.com/brettelliot/azul/internal/saver"
	"github.com/brettelliot/azul/internal/slogx"
	"github.com/brettelliot/azul/internal/symbols"
)

// heartbeat is how often a run logs its progress.
const heartbeat = 30 * time.Second

// SymbolsApp holds what the symbols command needs (built by Wire).
type SymbolsApp struct {
	Config *Config
	Logger *slog.Logger
	Source symbols.Source
}

// RunApp holds what the download and update commands need (built by Wire).
type RunApp struct {
	Config  *Config
	Logger  *slog.Logger
	Symbols symbols.Source
	Runner  *crawl.Runner
}

// ProvideLogger returns the run logger. With more than one worker the lines of
// concurrent symbols go through a fan-in writer; the cleanup flushes it.
func ProvideLogger(cfg *Config) (*slog.Logger, func()) {
	if cfg.Workers > 1 {
		f := crawl.NewFanIn(os.Stderr, slogx.ParseLevel(cfg.LogLevel))
		return f.Logger, f.Close
	}
	return slogx.NewDefault(cfg.LogLevel), func() {}
}

// ProvideCalendar looks up the configured trading calendar (for Wire).
func ProvideCalendar(cfg *Config) (calendar.Calendar, error) {
	cal, err := calendar.Lookup(cfg.Calendar)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return cal, nil
}

// ProvideDataSource creates the configured MinuteDataSource; the cleanup closes it.
func ProvideDataSource(cfg *Config, logger *slog.Logger) (provider.MinuteDataSource, func(), error) {
	src, err := CreateDataSource(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return src, func() {
		if err := src.Close(); err != nil {
			logger.Warn("close data source", "source", src.Name(), "error", err)
		}
	}, nil
}

// ProvideSink opens the sink for save_format under the data dir; the cleanup closes it.
func ProvideSink(cfg *Config, logger *slog.Logger) (saver.Sink, func(), error) {
	sink, err := saver.NewSink(cfg.SaveFormat, cfg.DataDir())
	if err != nil {
		if errors.Is(err, saver.ErrUnknownFormat) {
			return nil, nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		return nil, nil, err
	}
	logger.Info("wire", "format", cfg.SaveFormat, "dir", cfg.DataDir())
	return sink, func() {
		if err := sink.Close(); err != nil {
			logger.Warn("close sink", "error", err)
		}
	}, nil
}

// ProvideBuilder creates the session builder (for Wire).
func ProvideBuilder(cfg *Config, cal calendar.Calendar, src provider.MinuteDataSource, logger *slog.Logger) *pipeline.Builder {
	return &pipeline.Builder{
		Calendar:         cal,
		Source:           src,
		MissingThreshold: cfg.MissingThreshold,
		Logger:           logger,
	}
}

// ProvideReconciler creates the calendar reconciler (for Wire).
func ProvideReconciler(cal calendar.Calendar, logger *slog.Logger) *pipeline.Reconciler {
	return &pipeline.Reconciler{Calendar: cal, Logger: logger}
}

// ProvideProcessor creates the per-symbol pipeline (for Wire).
func ProvideProcessor(b *pipeline.Builder, r *pipeline.Reconciler, sink saver.Sink, logger *slog.Logger) *pipeline.Processor {
	return &pipeline.Processor{Builder: b, Reconciler: r, Sink: sink, Logger: logger}
}

// ProvideRunner creates the fan-out runner writing its reports to the data dir (for Wire).
func ProvideRunner(cfg *Config, p *pipeline.Processor, logger *slog.Logger) *crawl.Runner {
	return &crawl.Runner{
		Processor: p,
		Workers:   cfg.Workers,
		Dir:       cfg.DataDir(),
		Heartbeat: heartbeat,
		Logger:    logger,
	}
}
