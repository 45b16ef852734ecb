package pipeline

import (
	"fmt"
	"time"

	"github.com/brettelliot/azul/internal/model"
)

// DefaultLookbackDays is the range length used when no start date is given.
const DefaultLookbackDays = 30

// Range is a normalized, inclusive date range. Start and End are UTC midnights.
type Range struct {
	Start   time.Time
	End     time.Time
	Clamped bool
	Notes   []string
}

// Empty reports whether nothing of the requested range survived clamping.
func (r Range) Empty() bool { return r.Start.After(r.End) }

// Validator normalizes caller-supplied dates. It has no side effects; callers log Notes.
type Validator struct {
	// LookbackDays caps how far back the source serves minute data. Zero means no cap.
	LookbackDays int
	// Now is the evaluation instant; nil means time.Now.
	Now func() time.Time
}

func (v Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// Validate defaults missing (zero) dates, swaps reversed dates and applies the lookback cap.
func (v Validator) Validate(start, end time.Time) Range {
	now := v.now()
	if start.IsZero() {
		start = now.AddDate(0, 0, -DefaultLookbackDays)
	}
	if end.IsZero() {
		end = now
	}
	r := Range{Start: model.Day(start), End: model.Day(end)}
	if r.Start.After(r.End) {
		r.Start, r.End = r.End, r.Start
		r.Notes = append(r.Notes, fmt.Sprintf("start after end, swapped to %s..%s", r.Start.Format(time.DateOnly), r.End.Format(time.DateOnly)))
	}
	if v.LookbackDays <= 0 {
		return r
	}

	today := model.Day(now)
	earliest := today.AddDate(0, 0, -v.LookbackDays)
	if r.Start.Before(earliest) {
		r.Notes = append(r.Notes, fmt.Sprintf("start %s is older than the %d day limit, using %s",
			r.Start.Format(time.DateOnly), v.LookbackDays, earliest.Format(time.DateOnly)))
		r.Start = earliest
		r.Clamped = true
	}
	if r.End.After(today) {
		r.Notes = append(r.Notes, fmt.Sprintf("end %s is in the future, using %s",
			r.End.Format(time.DateOnly), today.Format(time.DateOnly)))
		r.End = today
		r.Clamped = true
	}
	if r.Empty() {
		r.Notes = append(r.Notes, "requested range lies entirely outside the available history")
	}
	return r
}
