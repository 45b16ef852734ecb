package pipeline

import (
	"math"

	"github.com/brettelliot/azul/internal/model"
)

// invalidPrice reports vendor sentinels for halted or illiquid minutes.
func invalidPrice(v float64) bool {
	return math.IsNaN(v) || v == 0 || v == -1
}

// Repair replaces sentinel prices (0, -1) with carried values.
// Open and close are back-filled then forward-filled; missing low, high and close fall back to the open.
// A bar whose four prices were all invalid becomes a flat bar at its repaired open.
// Rows left without an open (every row invalid) are dropped.
func Repair(s model.Series) model.Series {
	out := s.Clone()
	if len(out) == 0 {
		return out
	}

	flat := make([]bool, len(out))
	missing := false
	for i := range out {
		b := &out[i]
		o, h, l, c := invalidPrice(b.Open), invalidPrice(b.High), invalidPrice(b.Low), invalidPrice(b.Close)
		if o {
			b.Open = math.NaN()
		}
		if h {
			b.High = math.NaN()
		}
		if l {
			b.Low = math.NaN()
		}
		if c {
			b.Close = math.NaN()
		}
		flat[i] = o && h && l && c
		missing = missing || o || h || l || c
	}
	if !missing {
		return out
	}

	fill(out, func(b *model.Bar) *float64 { return &b.Open })
	fill(out, func(b *model.Bar) *float64 { return &b.Close })

	kept := out[:0]
	for i := range out {
		b := out[i]
		if math.IsNaN(b.Open) {
			continue
		}
		if flat[i] {
			b.Close = b.Open
		}
		if math.IsNaN(b.Low) {
			b.Low = b.Open
		}
		if math.IsNaN(b.High) {
			b.High = b.Open
		}
		if math.IsNaN(b.Close) {
			b.Close = b.Open
		}
		kept = append(kept, b)
	}
	return kept
}

// fill back-fills then forward-fills NaNs in the selected column.
func fill(s model.Series, col func(*model.Bar) *float64) {
	next := math.NaN()
	for i := len(s) - 1; i >= 0; i-- {
		v := col(&s[i])
		if math.IsNaN(*v) {
			*v = next
		} else {
			next = *v
		}
	}
	prev := math.NaN()
	for i := range s {
		v := col(&s[i])
		if math.IsNaN(*v) {
			*v = prev
		} else {
			prev = *v
		}
	}
}
