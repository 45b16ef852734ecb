package saver

import (
	"fmt"
	"time"

	"github.com/brettelliot/azul/internal/model"
)

// record is the on-disk row shared by the json and parquet savers.
// Date is RFC3339 for minute bars and YYYY-MM-DD for daily bars.
type record struct {
	Date     string  `json:"date" parquet:"date"`
	Open     float64 `json:"open" parquet:"open"`
	High     float64 `json:"high" parquet:"high"`
	Low      float64 `json:"low" parquet:"low"`
	Close    float64 `json:"close" parquet:"close"`
	Volume   int64   `json:"volume" parquet:"volume"`
	Dividend float64 `json:"dividend" parquet:"dividend"`
	Split    float64 `json:"split" parquet:"split"`
}

func toRecords(bars model.Series, g model.Granularity) []record {
	layout := g.DateLayout()
	out := make([]record, len(bars))
	for i, b := range bars {
		out[i] = record{
			Date:     b.Time.UTC().Format(layout),
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			Volume:   b.Volume,
			Dividend: b.Dividend,
			Split:    b.Split,
		}
	}
	return out
}

func fromRecords(recs []record) (model.Series, error) {
	out := make(model.Series, len(recs))
	for i, r := range recs {
		t, err := parseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = model.Bar{
			Time:     t,
			Open:     r.Open,
			High:     r.High,
			Low:      r.Low,
			Close:    r.Close,
			Volume:   r.Volume,
			Dividend: r.Dividend,
			Split:    r.Split,
		}
	}
	return out, nil
}

// parseDate accepts either output layout.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q", s)
	}
	return t, nil
}
