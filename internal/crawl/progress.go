package crawl

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// ProgressFile holds symbol → last written session (YYYY-MM-DD) inside the output dir.
const ProgressFile = ".lastday.json"

// ProgressUpdate is sent when a symbol run writes data
type ProgressUpdate struct {
	Symbol string
	Date   string
}

// LoadProgress reads the progress file; a missing or corrupt file yields an empty map.
func LoadProgress(path string) map[string]string {
	data, err := os.ReadFile(path)
	if err != nil {
		return make(map[string]string)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return make(map[string]string)
	}
	return m
}

// LastSession returns the recorded last session of symbol, zero when unknown.
func LastSession(progress map[string]string, symbol string) time.Time {
	s, ok := progress[symbol]
	if !ok {
		return time.Time{}
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// RunProgressWriter receives updates and persists to file (run as goroutine)
func RunProgressWriter(path string, updates <-chan ProgressUpdate) {
	m := LoadProgress(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Warn("progress dir error", "error", err)
	}
	for u := range updates {
		m[u.Symbol] = u.Date
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			slog.Warn("progress marshal error", "error", err)
			continue
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			slog.Warn("progress write error", "error", err)
		}
	}
}
