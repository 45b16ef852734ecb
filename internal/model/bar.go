package model

import (
	"math"
	"sort"
	"time"
)

// Columns is the fixed output column order for minute and daily bars.
var Columns = []string{"open", "high", "low", "close", "volume", "dividend", "split"}

// Bar represents one OHLCV bar (minute or daily).
// Time is always UTC; daily bars are labelled at midnight of the session date.
type Bar struct {
	Time     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   int64     `json:"volume"`
	Dividend float64   `json:"dividend"`
	Split    float64   `json:"split"`
}

// Valid reports whether every price column is defined.
func (b Bar) Valid() bool {
	return !math.IsNaN(b.Open) && !math.IsNaN(b.High) && !math.IsNaN(b.Low) && !math.IsNaN(b.Close) &&
		!math.IsNaN(b.Dividend) && !math.IsNaN(b.Split)
}

// Series is a time-ordered sequence of bars for one symbol.
type Series []Bar

// Clone returns a copy that shares no backing array with s.
func (s Series) Clone() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// SortAscending sorts by timestamp, keeping the relative order of equal timestamps.
func (s Series) SortAscending() {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Time.Before(s[j].Time) })
}

// First returns the oldest bar. Callers must check Len first.
func (s Series) First() Bar { return s[0] }

// Last returns the newest bar. Callers must check Len first.
func (s Series) Last() Bar { return s[len(s)-1] }

// Dedupe drops repeated timestamps from an ascending series; the first occurrence wins.
// Returns the deduplicated series and the number of rows removed.
func (s Series) Dedupe() (Series, int) {
	if len(s) < 2 {
		return s, 0
	}
	out := make(Series, 0, len(s))
	for i, b := range s {
		if i > 0 && b.Time.Equal(out[len(out)-1].Time) {
			continue
		}
		out = append(out, b)
	}
	return out, len(s) - len(out)
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
