// Package saver persists reconciled minute and daily bars.
package saver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brettelliot/azul/internal/model"
)

// ErrUnknownFormat is returned for a save format that has no implementation.
var ErrUnknownFormat = errors.New("unknown save format")

// Formats lists the supported save formats.
var Formats = []string{"csv", "json", "parquet", "sqlite"}

// PacketSaver encodes one symbol's bars to a single file.
// High-level (app) injects the implementation; the sink only depends on the interface.
type PacketSaver interface {
	Save(bars model.Series, g model.Granularity, path string) error
	Load(path string) (model.Series, error)
	Extension() string
}

// Sink stores series by granularity and symbol.
// Load returns an error wrapping fs.ErrNotExist when the symbol has nothing stored.
type Sink interface {
	Write(g model.Granularity, symbol string, bars model.Series) error
	Load(g model.Granularity, symbol string) (model.Series, error)
	Close() error
}

// NewPacketSaver creates implementation by format (csv, parquet, json).
func NewPacketSaver(format string) (PacketSaver, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}, nil
	case "parquet":
		return ParquetSaver{}, nil
	case "json":
		return JSONSaver{}, nil
	default:
		return nil, fmt.Errorf("%w %q (use: %s)", ErrUnknownFormat, format, strings.Join(Formats, ", "))
	}
}

// NewSink returns the sink for format rooted at dir: one file per symbol for csv, json
// and parquet, or a single database for sqlite.
func NewSink(format, dir string) (Sink, error) {
	if strings.EqualFold(strings.TrimSpace(format), "sqlite") {
		return OpenSQLite(dir)
	}
	ps, err := NewPacketSaver(format)
	if err != nil {
		return nil, err
	}
	return &FileSink{Dir: dir, Saver: ps}, nil
}
