package calendar

import (
	"fmt"
	"time"
	_ "time/tzdata"

	xcal "github.com/scmhub/calendar"
)

const (
	openHour, openMinute = 9, 30
	regularCloseHour     = 16
	earlyCloseHour       = 13

	// firstYear bounds the holiday tables; earlier dates only skip weekends.
	firstYear = 1970
	// mlkFirstYear is the first year the exchange closed for Martin Luther King Jr. Day.
	mlkFirstYear = 1998
)

// corrections patches the exchange tables where they disagree with NYSE history.
// true closes the date, false keeps it open.
var corrections = map[time.Time]bool{
	utcDate(2018, time.November, 30): false, // listed as the Bush mourning day, traded normally
	utcDate(2018, time.December, 5):  true,  // President George H. W. Bush
	utcDate(2025, time.January, 9):   true,  // President Jimmy Carter
}

func utcDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NYSE is the New York Stock Exchange regular-hours calendar backed by the XNYS
// holiday and early-close tables. Minutes are labelled by the bar's opening minute:
// 09:30 through 15:59 New York time.
type NYSE struct {
	loc  *time.Location
	x    *xcal.Calendar
	last int
}

// NewNYSE creates the NYSE calendar covering 1970 through ten years from now.
func NewNYSE() (*NYSE, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, fmt.Errorf("load New York timezone: %w", err)
	}
	// The library resolves its zone at init, before the embedded tzdata is registered.
	if xcal.NewYork == nil {
		xcal.NewYork = loc
	}
	last := time.Now().Year() + 10
	return &NYSE{loc: loc, x: xcal.XNYS(firstYear, last), last: last}, nil
}

func (c *NYSE) Name() string { return "NYSE" }

func (c *NYSE) inTables(d time.Time) bool {
	return d.Year() >= firstYear && d.Year() <= c.last
}

// local is noon New York time on date d, the form the XNYS tables are keyed by.
func (c *NYSE) local(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, c.loc)
}

func (c *NYSE) holiday(d time.Time) bool {
	if closed, ok := corrections[d]; ok {
		return closed
	}
	if !c.inTables(d) {
		return false
	}
	if d.Year() < mlkFirstYear {
		mlk := xcal.MLKDay.Calc(d.Year(), c.loc)
		if mlk.Month() == d.Month() && mlk.Day() == d.Day() {
			return false
		}
	}
	return c.x.IsHoliday(c.local(d))
}

func (c *NYSE) earlyClose(d time.Time) bool {
	return c.inTables(d) && c.x.IsEarlyClose(c.local(d))
}

// IsSession reports whether the date of t is a trading session.
func (c *NYSE) IsSession(t time.Time) bool {
	d := dateOf(t)
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !c.holiday(d)
}

func (c *NYSE) SessionsInRange(start, end time.Time) []time.Time {
	from, to := dateOf(start), dateOf(end)
	if from.After(to) {
		return nil
	}
	var sessions []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if c.IsSession(d) {
			sessions = append(sessions, d)
		}
	}
	return sessions
}

// SessionMinutes returns the UTC minutes of the session on the date of session.
// Returns nil when that date is not a session.
func (c *NYSE) SessionMinutes(session time.Time) []time.Time {
	d := dateOf(session)
	if !c.IsSession(d) {
		return nil
	}
	closeHour := regularCloseHour
	if c.earlyClose(d) {
		closeHour = earlyCloseHour
	}
	open := time.Date(d.Year(), d.Month(), d.Day(), openHour, openMinute, 0, 0, c.loc)
	closeAt := time.Date(d.Year(), d.Month(), d.Day(), closeHour, 0, 0, 0, c.loc)
	minutes := make([]time.Time, 0, int(closeAt.Sub(open)/time.Minute))
	for m := open; m.Before(closeAt); m = m.Add(time.Minute) {
		minutes = append(minutes, m.UTC())
	}
	return minutes
}

func (c *NYSE) MinutesInSessionRange(first, last time.Time) []time.Time {
	var minutes []time.Time
	for _, s := range c.SessionsInRange(first, last) {
		minutes = append(minutes, c.SessionMinutes(s)...)
	}
	return minutes
}

func (c *NYSE) PreviousSession(session time.Time) time.Time {
	d := dateOf(session).AddDate(0, 0, -1)
	for !c.IsSession(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
