package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)

func TestValidateSwapsReversedDates(t *testing.T) {
	v := Validator{Now: fixedClock(testNow)}
	r := v.Validate(date(2030, 1, 1), date(2020, 1, 1))

	assert.Equal(t, date(2020, 1, 1), r.Start)
	assert.Equal(t, date(2030, 1, 1), r.End)
	assert.False(t, r.Clamped)
	assert.Len(t, r.Notes, 1)
}

func TestValidateDefaults(t *testing.T) {
	v := Validator{Now: fixedClock(testNow)}
	r := v.Validate(time.Time{}, time.Time{})

	assert.Equal(t, date(2026, 9, 15), r.Start)
	assert.Equal(t, date(2026, 10, 15), r.End)
	assert.Empty(t, r.Notes)
}

func TestValidateLookbackCap(t *testing.T) {
	v := Validator{LookbackDays: 30, Now: fixedClock(testNow)}
	r := v.Validate(testNow.AddDate(0, 0, -40), testNow)

	assert.Equal(t, date(2026, 9, 15), r.Start)
	assert.Equal(t, date(2026, 10, 15), r.End)
	assert.True(t, r.Clamped)
	assert.NotEmpty(t, r.Notes)
}

func TestValidateLookbackCapFutureEnd(t *testing.T) {
	v := Validator{LookbackDays: 30, Now: fixedClock(testNow)}
	r := v.Validate(date(2026, 10, 1), date(2027, 1, 1))

	assert.Equal(t, date(2026, 10, 1), r.Start)
	assert.Equal(t, date(2026, 10, 15), r.End)
	assert.True(t, r.Clamped)
}

func TestValidateWithinCapUntouched(t *testing.T) {
	v := Validator{LookbackDays: 30, Now: fixedClock(testNow)}
	r := v.Validate(date(2026, 10, 1), date(2026, 10, 10))

	assert.Equal(t, date(2026, 10, 1), r.Start)
	assert.Equal(t, date(2026, 10, 10), r.End)
	assert.False(t, r.Clamped)
	assert.False(t, r.Empty())
}

func TestValidateRangeOutsideCapIsEmpty(t *testing.T) {
	v := Validator{LookbackDays: 30, Now: fixedClock(testNow)}
	r := v.Validate(date(2017, 1, 1), date(2017, 2, 1))

	assert.True(t, r.Empty())
	assert.True(t, r.Clamped)
}
