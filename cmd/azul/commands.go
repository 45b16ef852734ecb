package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/subcommands"

	"github.com/brettelliot/azul/internal/app"
	"github.com/brettelliot/azul/internal/slogx"
	"github.com/brettelliot/azul/internal/symbols"
)

// common holds the flags every command accepts.
type common struct {
	configPath string
	logLevel   string
	o          app.Overrides
}

func (c *common) setFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "config file (default $AZUL_CONFIG or ~/.azul/config.yaml)")
	f.StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error")
}

func (c *common) setRunFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.o.SymbolSource, "symbol-source", "", "symbol source: faang, sp500, polygon_cs, iex or file (default faang)")
	f.StringVar(&c.o.SymbolsFile, "symbols-file", "", "symbols file for --symbol-source=file (.txt or .json)")
	f.StringVar(&c.o.DataSource, "data-source", "", "data source: polygon or iex (default iex)")
	f.StringVar(&c.o.OutputDir, "o", "", "output directory (default ~/.azul/<data-source>)")
	f.StringVar(&c.o.SaveFormat, "format", "", "save format: csv, json, parquet or sqlite (default csv)")
	f.IntVar(&c.o.Workers, "workers", 0, "symbols processed in parallel (default 1)")
}

// load builds the validated config: defaults, file, environment, then flags.
func (c *common) load() (*app.Config, error) {
	cfg, err := app.LoadConfig(app.ConfigPath(c.configPath))
	if err != nil {
		return nil, err
	}
	c.o.LogLevel = c.logLevel
	cfg.Apply(c.o)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	slog.SetDefault(slogx.NewDefault(cfg.LogLevel))
	return cfg, nil
}

func splitSymbols(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func parseDate(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("-%s %q: want YYYY-MM-DD", name, s)
	}
	return t, nil
}

func fail(msg string, err error) subcommands.ExitStatus {
	slog.Error(msg, "error", err)
	return subcommands.ExitFailure
}

type symbolsCmd struct {
	common
	output string
}

func (*symbolsCmd) Name() string     { return "symbols" }
func (*symbolsCmd) Synopsis() string { return "fetch a symbol list and write it to a file" }
func (*symbolsCmd) Usage() string {
	return `symbols [--source faang|sp500|polygon_cs|iex|file] [-o path]:
  Write one symbol per line. The default path is ~/.azul/symbols/<source>.txt.
`
}

func (c *symbolsCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.o.SymbolSource, "source", "", "symbol source: faang, sp500, polygon_cs, iex or file")
	f.StringVar(&c.o.SymbolsFile, "symbols-file", "", "symbols file for --source=file")
	f.StringVar(&c.output, "o", "", "output file or directory")
}

func (c *symbolsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.load()
	if err != nil {
		return fail("invalid configuration", err)
	}
	a, cleanup, err := InitializeSymbols(cfg)
	if err != nil {
		return fail("failed to initialize app", err)
	}
	defer cleanup()

	ctx, stop := app.SignalContext(ctx)
	defer stop()

	list, err := a.Source.Symbols(ctx)
	if err != nil {
		a.Logger.Error("failed to get symbols", "source", a.Source.Name(), "error", err)
		return subcommands.ExitFailure
	}
	path, err := symbols.ResolveOutputPath(c.output, filepath.Join(app.HomeDir(), "symbols"), a.Source.Name()+".txt")
	if err != nil {
		a.Logger.Error("bad output path", "error", err)
		return subcommands.ExitFailure
	}
	if err := symbols.WriteSymbols(path, list); err != nil {
		a.Logger.Error("failed to write symbols", "error", err)
		return subcommands.ExitFailure
	}
	a.Logger.Info("symbols written", "source", a.Source.Name(), "count", len(list), "path", path)
	return subcommands.ExitSuccess
}

type downloadCmd struct {
	common
	start, end string
	symbols    string
}

func (*downloadCmd) Name() string     { return "download" }
func (*downloadCmd) Synopsis() string { return "download minute and daily bars for a symbol list" }
func (*downloadCmd) Usage() string {
	return `download [--symbol-source kind] [--data-source kind] [-o dir] [-s YYYY-MM-DD] [-e YYYY-MM-DD] [--symbols A,B]:
  Build, repair and reconcile each symbol's bars and replace its stored output.
`
}

func (c *downloadCmd) SetFlags(f *flag.FlagSet) {
	c.setRunFlags(f)
	f.StringVar(&c.start, "s", "", "first date (default: 30 days ago)")
	f.StringVar(&c.end, "e", "", "last date (default: today)")
	f.StringVar(&c.symbols, "symbols", "", "comma-separated symbols, overrides the symbol source")
}

func (c *downloadCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	start, err := parseDate("s", c.start)
	if err != nil {
		return fail("invalid flag", err)
	}
	end, err := parseDate("e", c.end)
	if err != nil {
		return fail("invalid flag", err)
	}
	cfg, err := c.load()
	if err != nil {
		return fail("invalid configuration", err)
	}
	a, cleanup, err := InitializeRun(cfg)
	if err != nil {
		return fail("failed to initialize app", err)
	}
	defer cleanup()

	ctx, stop := app.SignalContext(ctx)
	defer stop()

	a.Logger.Info("using data source", "data_source", cfg.DataSource, "symbol_source", cfg.SymbolSource, "dir", cfg.DataDir(), "format", cfg.SaveFormat)
	if _, err := a.Download(ctx, splitSymbols(c.symbols), start, end); err != nil {
		a.Logger.Error("download stopped", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type updateCmd struct {
	common
	symbols string
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "append new sessions to stored output" }
func (*updateCmd) Usage() string {
	return `update [--cron "<sec> <min> <hour> <dom> <mon> <dow>"] [--symbols A,B]:
  Fetch only the sessions after each symbol's stored data. With --cron, keep running
  on that schedule until interrupted.
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	c.setRunFlags(f)
	f.StringVar(&c.o.UpdateCron, "cron", "", "run on this schedule (seconds field first) until SIGINT/SIGTERM")
	f.StringVar(&c.symbols, "symbols", "", "comma-separated symbols, overrides the symbol source")
}

func (c *updateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.load()
	if err != nil {
		return fail("invalid configuration", err)
	}
	a, cleanup, err := InitializeRun(cfg)
	if err != nil {
		return fail("failed to initialize app", err)
	}
	defer cleanup()

	ctx, stop := app.SignalContext(ctx)
	defer stop()

	list := splitSymbols(c.symbols)
	if spec := cfg.Schedule.UpdateCron; spec != "" {
		if err := a.UpdateOnSchedule(ctx, spec, list); err != nil {
			a.Logger.Error("scheduler", "error", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	if _, err := a.Update(ctx, list); err != nil {
		a.Logger.Error("update stopped", "error", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
