package saver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/brettelliot/azul/internal/model"
)

// FileSink lays files out as <Dir>/<minute|daily>/<SYMBOL>.<ext>.
type FileSink struct {
	Dir   string
	Saver PacketSaver
}

// Path returns the file a symbol's series is stored in.
func (s *FileSink) Path(g model.Granularity, symbol string) string {
	return filepath.Join(s.Dir, g.String(), symbol+"."+s.Saver.Extension())
}

// Write replaces the symbol's file. The file is written under a temporary name and renamed,
// so readers never see a partial series.
func (s *FileSink) Write(g model.Granularity, symbol string, bars model.Series) error {
	path := s.Path(g, symbol)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s dir: %w", g, err)
	}
	tmp := path + ".tmp"
	if err := s.Saver.Save(bars, g, tmp); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func (s *FileSink) Load(g model.Granularity, symbol string) (model.Series, error) {
	path := s.Path(g, symbol)
	bars, err := s.Saver.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return bars, nil
}

func (s *FileSink) Close() error { return nil }
