package pipeline

import (
	"math"
	"time"

	"github.com/brettelliot/azul/internal/model"
)

// dailyAgg accumulates one calendar day. NaN inputs are skipped.
type dailyAgg struct {
	day                    time.Time
	open, high, low, close float64
	dividend, split        float64
	volume                 int64
}

func newDailyAgg(day time.Time) *dailyAgg {
	nan := math.NaN()
	return &dailyAgg{day: day, open: nan, high: nan, low: nan, close: nan, dividend: nan, split: nan}
}

func (a *dailyAgg) add(b model.Bar) {
	if math.IsNaN(a.open) {
		a.open = b.Open
	}
	if !math.IsNaN(b.High) && (math.IsNaN(a.high) || b.High > a.high) {
		a.high = b.High
	}
	if !math.IsNaN(b.Low) && (math.IsNaN(a.low) || b.Low < a.low) {
		a.low = b.Low
	}
	if !math.IsNaN(b.Close) {
		a.close = b.Close
	}
	if !math.IsNaN(b.Dividend) {
		a.dividend = b.Dividend
	}
	if !math.IsNaN(b.Split) {
		a.split = b.Split
	}
	a.volume += b.Volume
}

func (a *dailyAgg) bar() model.Bar {
	return model.Bar{
		Time:     a.day,
		Open:     a.open,
		High:     a.high,
		Low:      a.low,
		Close:    a.close,
		Volume:   a.volume,
		Dividend: a.dividend,
		Split:    a.split,
	}
}

// ResampleDaily folds a minute series into one bar per UTC calendar day [00:00, 24:00).
// open=first, high=max, low=min, close=last, volume=sum, dividend=last, split=last.
// Days with any undefined aggregate are dropped.
func ResampleDaily(s model.Series) model.Series {
	if len(s) == 0 {
		return model.Series{}
	}
	sorted := s.Clone()
	sorted.SortAscending()

	out := make(model.Series, 0, len(sorted)/390+1)
	var cur *dailyAgg
	flush := func() {
		if cur == nil {
			return
		}
		if b := cur.bar(); b.Valid() {
			out = append(out, b)
		}
	}
	for _, b := range sorted {
		day := model.Day(b.Time)
		if cur == nil || !cur.day.Equal(day) {
			flush()
			cur = newDailyAgg(day)
		}
		cur.add(b)
	}
	flush()
	return out
}
