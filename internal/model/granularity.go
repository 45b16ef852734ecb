package model

import "fmt"

// Granularity is the bar size of a series.
type Granularity int

const (
	Minute Granularity = iota
	Daily
)

// String returns the directory / table name used for the granularity.
func (g Granularity) String() string {
	switch g {
	case Minute:
		return "minute"
	case Daily:
		return "daily"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// DateLayout is the layout used for the date column of this granularity.
func (g Granularity) DateLayout() string {
	if g == Daily {
		return "2006-01-02"
	}
	return "2006-01-02T15:04:05Z07:00"
}
