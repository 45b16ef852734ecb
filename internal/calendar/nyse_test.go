package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNYSE(t *testing.T) *NYSE {
	t.Helper()
	c, err := NewNYSE()
	require.NoError(t, err)
	return c
}

func TestSessionsPerYear(t *testing.T) {
	c := newNYSE(t)
	cases := map[int]int{2023: 250, 2024: 252}
	for year, want := range cases {
		got := c.SessionsInRange(utcDate(year, time.January, 1), utcDate(year, time.December, 31))
		assert.Len(t, got, want, "year %d", year)
	}
}

func TestHolidays(t *testing.T) {
	c := newNYSE(t)
	closed := []time.Time{
		utcDate(2024, time.January, 1),
		utcDate(2024, time.January, 15),  // MLK
		utcDate(2024, time.March, 29),    // Good Friday
		utcDate(2022, time.June, 20),     // Juneteenth observed
		utcDate(2023, time.January, 2),   // New Year observed
		utcDate(2021, time.December, 24), // Christmas observed
		utcDate(2025, time.April, 18),    // Good Friday
		utcDate(2025, time.January, 9),   // national day of mourning
	}
	for _, d := range closed {
		assert.False(t, c.IsSession(d), d.Format("2006-01-02"))
	}
	open := []time.Time{
		utcDate(2021, time.December, 31), // New Year 2022 fell on a Saturday
		utcDate(2024, time.January, 2),
		utcDate(2021, time.June, 18), // before Juneteenth became a holiday
	}
	for _, d := range open {
		assert.True(t, c.IsSession(d), d.Format("2006-01-02"))
	}
}

func TestSessionMinutes(t *testing.T) {
	c := newNYSE(t)

	winter := c.SessionMinutes(utcDate(2024, time.March, 4))
	require.Len(t, winter, 390)
	assert.Equal(t, time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC), winter[0])
	assert.Equal(t, time.Date(2024, 3, 4, 20, 59, 0, 0, time.UTC), winter[389])

	summer := c.SessionMinutes(utcDate(2024, time.July, 1))
	require.Len(t, summer, 390)
	assert.Equal(t, time.Date(2024, 7, 1, 13, 30, 0, 0, time.UTC), summer[0])

	early := c.SessionMinutes(utcDate(2024, time.July, 3))
	assert.Len(t, early, 210)
	assert.Len(t, c.SessionMinutes(utcDate(2024, time.November, 29)), 210)
	assert.Len(t, c.SessionMinutes(utcDate(2024, time.December, 24)), 210)

	assert.Nil(t, c.SessionMinutes(utcDate(2024, time.March, 2)))
}

func TestMinutesInSessionRange(t *testing.T) {
	c := newNYSE(t)
	// Fri, (weekend), Mon
	got := c.MinutesInSessionRange(utcDate(2024, time.March, 1), utcDate(2024, time.March, 4))
	require.Len(t, got, 780)
	for i := 1; i < len(got); i++ {
		require.True(t, got[i-1].Before(got[i]))
	}
}

func TestPreviousSession(t *testing.T) {
	c := newNYSE(t)
	assert.Equal(t, utcDate(2024, time.January, 12), c.PreviousSession(utcDate(2024, time.January, 16)))
	assert.Equal(t, utcDate(2024, time.March, 1), c.PreviousSession(utcDate(2024, time.March, 3)))
}

func TestSessionsInRangeReversedIsEmpty(t *testing.T) {
	c := newNYSE(t)
	assert.Empty(t, c.SessionsInRange(utcDate(2024, time.March, 5), utcDate(2024, time.March, 4)))
}

func TestLookup(t *testing.T) {
	c, err := Lookup("xnys")
	require.NoError(t, err)
	assert.Equal(t, "NYSE", c.Name())

	_, err = Lookup("LSE")
	assert.ErrorIs(t, err, ErrUnknownCalendar)
}

func TestHistoricalClosures(t *testing.T) {
	c := newNYSE(t)
	closed := []time.Time{
		utcDate(2001, time.September, 13), // September 11
		utcDate(2004, time.June, 11),      // Reagan
		utcDate(2012, time.October, 30),   // Hurricane Sandy
		utcDate(2018, time.December, 5),   // Bush
		utcDate(1999, time.January, 18),   // MLK once observed
	}
	for _, d := range closed {
		assert.False(t, c.IsSession(d), d.Format("2006-01-02"))
	}
	open := []time.Time{
		utcDate(2018, time.November, 30),
		utcDate(1997, time.January, 20), // MLK before the exchange observed it
	}
	for _, d := range open {
		assert.True(t, c.IsSession(d), d.Format("2006-01-02"))
	}
}

func TestEarlyCloseAfterIndependenceDay(t *testing.T) {
	c := newNYSE(t)
	// Friday July 5 closed early before 2013.
	assert.Len(t, c.SessionMinutes(utcDate(2002, time.July, 5)), 210)
	assert.Len(t, c.SessionMinutes(utcDate(2019, time.July, 5)), 390)
}

func TestDatesOutsideTables(t *testing.T) {
	c := newNYSE(t)
	assert.True(t, c.IsSession(utcDate(1965, time.January, 4)))
	assert.False(t, c.IsSession(utcDate(1965, time.January, 2)))
	assert.Len(t, c.SessionMinutes(utcDate(1965, time.January, 4)), 390)
}
