package pipeline

import (
	"log/slog"
	"time"

	"github.com/brettelliot/azul/internal/calendar"
	"github.com/brettelliot/azul/internal/model"
)

// Drift counts how far a series was from the calendar before reconciliation.
type Drift struct {
	Extra      int // rows outside the calendar, dropped
	Duplicates int // repeated timestamps, dropped
	Missing    int // calendar rows absent from the series and not filled
	Filled     int // daily sessions synthesized by carry-forward
}

// Reconciler aligns series to a trading calendar.
type Reconciler struct {
	Calendar calendar.Calendar
	Logger   *slog.Logger
}

func (r *Reconciler) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

// Reconcile aligns s to the calendar at granularity g and returns the aligned copy.
//
// Minute: rows outside the session minutes spanned by s are dropped and gaps are left unfilled.
// Daily: rows outside the sessions spanned by s are dropped and every missing session is
// filled with the previous session's values at zero volume.
func (r *Reconciler) Reconcile(symbol string, s model.Series, g model.Granularity) (model.Series, Drift) {
	if len(s) == 0 {
		return s, Drift{}
	}
	sorted := s.Clone()
	sorted.SortAscending()

	var (
		out   model.Series
		drift Drift
	)
	if g == model.Daily {
		out, drift = r.reconcileDaily(sorted)
	} else {
		out, drift = r.reconcileMinute(sorted)
	}

	log := r.logger().With("symbol", symbol, "granularity", g.String())
	if drift.Extra > 0 || drift.Duplicates > 0 {
		log.Info("removed rows outside calendar", "extra", drift.Extra, "duplicates", drift.Duplicates)
	}
	if drift.Missing > 0 {
		log.Info("missing rows", "missing", drift.Missing)
	}
	if drift.Filled > 0 {
		log.Info("filled missing sessions", "filled", drift.Filled)
	}
	if g == model.Daily {
		log.Info("downsampled daily bars", "bars", len(out))
	} else {
		log.Info("processed minute bars", "bars", len(out))
	}
	return out, drift
}

func (r *Reconciler) reconcileMinute(s model.Series) (model.Series, Drift) {
	var drift Drift
	s, drift.Duplicates = s.Dedupe()

	sessions := r.Calendar.SessionsInRange(s.First().Time, s.Last().Time)
	if len(sessions) == 0 {
		drift.Extra = len(s)
		return model.Series{}, drift
	}
	minutes := r.Calendar.MinutesInSessionRange(sessions[0], sessions[len(sessions)-1])
	valid := make(map[int64]struct{}, len(minutes))
	for _, m := range minutes {
		valid[m.UnixNano()] = struct{}{}
	}

	out := make(model.Series, 0, len(s))
	for _, b := range s {
		if _, ok := valid[b.Time.UnixNano()]; ok {
			out = append(out, b)
			continue
		}
		drift.Extra++
	}
	drift.Missing = len(minutes) - len(out)
	return out, drift
}

func (r *Reconciler) reconcileDaily(s model.Series) (model.Series, Drift) {
	var drift Drift

	byDay := make(map[time.Time]model.Bar, len(s))
	for _, b := range s {
		day := model.Day(b.Time)
		if _, dup := byDay[day]; dup {
			drift.Duplicates++
			continue
		}
		b.Time = day
		byDay[day] = b
	}

	sessions := r.Calendar.SessionsInRange(s.First().Time, s.Last().Time)
	inCalendar := make(map[time.Time]bool, len(sessions))
	out := make(model.Series, 0, len(sessions))
	filled := make(map[time.Time]model.Bar, len(sessions))
	for _, session := range sessions {
		inCalendar[session] = true
		if b, ok := byDay[session]; ok {
			out = append(out, b)
			filled[session] = b
			continue
		}
		prev, ok := filled[r.Calendar.PreviousSession(session)]
		if !ok {
			// No earlier session in the series to carry forward.
			drift.Missing++
			continue
		}
		prev.Time = session
		prev.Volume = 0
		out = append(out, prev)
		filled[session] = prev
		drift.Filled++
	}
	for day := range byDay {
		if !inCalendar[day] {
			drift.Extra++
		}
	}
	return out, drift
}
