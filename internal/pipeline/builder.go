package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/brettelliot/azul/internal/calendar"
	"github.com/brettelliot/azul/internal/model"
	"github.com/brettelliot/azul/internal/provider"
)

// DefaultMissingThreshold is the number of consecutive empty sessions after which
// a symbol is considered to have no older history.
const DefaultMissingThreshold = 5

// Builder assembles a symbol's minute series one calendar session at a time.
// MissingThreshold stops the backwards scan after that many consecutive empty sessions.
type Builder struct {
	Calendar         calendar.Calendar
	Source           provider.MinuteDataSource
	MissingThreshold int
	Now              func() time.Time
	Logger           *slog.Logger
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

func (b *Builder) threshold() int {
	if b.MissingThreshold > 0 {
		return b.MissingThreshold
	}
	return DefaultMissingThreshold
}

// Validator returns the range validator for the configured source.
func (b *Builder) Validator() Validator {
	v := Validator{Now: b.Now}
	if l, ok := b.Source.(provider.LookbackLimiter); ok {
		v.LookbackDays = l.LookbackDays()
	}
	return v
}

// Build returns the minute bars of symbol in [start, end], oldest first.
//
// Sessions are requested newest to oldest so that a symbol's listing date need not be known:
// the scan stops after MissingThreshold consecutive sessions without data. A failed or
// malformed session counts as empty. The returned error is non-nil only when ctx is done,
// in which case the bars gathered so far are returned with it.
func (b *Builder) Build(ctx context.Context, symbol string, start, end time.Time) (model.Series, error) {
	log := b.logger().With("symbol", symbol, "source", b.Source.Name())

	r := b.Validator().Validate(start, end)
	for _, note := range r.Notes {
		log.Info("date range adjusted", "note", note)
	}
	if r.Empty() {
		return model.Series{}, nil
	}

	if ld, ok := b.Source.(provider.ListingDater); ok {
		if listed, ok := ld.ListingDate(ctx, symbol); ok && model.Day(listed).After(r.Start) {
			log.Info("symbol listed after start, adjusting start", "list_date", listed.Format(time.DateOnly))
			r.Start = model.Day(listed)
		}
	}

	sessions := b.Calendar.SessionsInRange(r.Start, r.End)
	if len(sessions) == 0 {
		log.Info("symbol did not trade in range", "start", r.Start.Format(time.DateOnly), "end", r.End.Format(time.DateOnly))
		return model.Series{}, nil
	}

	combined := make(model.Series, 0, len(sessions)*390)
	missing := 0
	for i := len(sessions) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			combined.SortAscending()
			return combined, err
		}
		session := sessions[i]
		day := session.Format(time.DateOnly)

		bars, err := b.Source.FetchSession(ctx, symbol, session)
		if err == nil {
			bars = Repair(bars)
		}
		if err != nil || len(bars) == 0 {
			missing++
			if err != nil {
				log.Info("no minute data", "session", day, "error", err)
			} else {
				log.Info("no minute data", "session", day)
			}
		} else {
			missing = 0
			log.Debug("retrieved minute data", "session", day, "bars", len(bars))
			combined = append(combined, bars...)
		}

		if missing >= b.threshold() {
			log.Info("no minute data for consecutive sessions, stopping", "sessions", missing, "oldest", day)
			break
		}
	}

	combined.SortAscending()
	return combined, nil
}
