// Package calendar models exchange trading calendars: which dates are sessions
// and which minutes belong to each session.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownCalendar is returned by Lookup for calendar names it does not know.
var ErrUnknownCalendar = errors.New("unknown trading calendar")

// Calendar answers session and session-minute queries for one exchange.
// Session labels are midnight UTC of the session date; minutes are UTC.
type Calendar interface {
	Name() string
	// SessionsInRange returns the ordered sessions whose date lies in [start, end].
	SessionsInRange(start, end time.Time) []time.Time
	// MinutesInSessionRange returns the ordered minutes of every session from first through last.
	MinutesInSessionRange(first, last time.Time) []time.Time
	// PreviousSession returns the session immediately before the date of session.
	PreviousSession(session time.Time) time.Time
}

// Lookup returns the calendar registered under name.
func Lookup(name string) (Calendar, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "NYSE", "XNYS", "":
		return NewNYSE()
	default:
		return nil, fmt.Errorf("%w: %q (use: NYSE)", ErrUnknownCalendar, name)
	}
}

func dateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
