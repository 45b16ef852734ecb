package symbols

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileSource reads symbols from a local list.
type FileSource struct {
	Path string
}

func (f *FileSource) Name() string { return File.String() }

func (f *FileSource) Symbols(context.Context) ([]string, error) {
	return LoadFromFile(f.Path)
}

// LoadFromFile reads a list of tickers from a file.
// Supported formats:
//   - .txt  : one ticker per line, '#' lines are treated as comments
//   - .json : JSON array of strings
func LoadFromFile(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("symbols file not set")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read symbols file: %w", err)
	}

	var tickers []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(content, &tickers); err != nil {
			return nil, fmt.Errorf("parse JSON %s: %w", path, err)
		}
	case ".txt", "":
		tickers = parseText(string(content))
	default:
		return nil, fmt.Errorf("unsupported symbols file extension %q (use .txt or .json)", filepath.Ext(path))
	}

	tickers = Normalize(tickers)
	slog.Debug("loaded symbols from file", "count", len(tickers), "path", path)
	return tickers, nil
}

// parseText returns every non-empty, non-comment line.
func parseText(s string) []string {
	var tickers []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			tickers = append(tickers, line)
		}
	}
	return tickers
}
