package iex

import (
	"math"
	"time"

	"github.com/brettelliot/azul/internal/model"
)

// ChartBar is one intraday row of /stock/{symbol}/chart/date/{date}.
// Only the consolidated market* columns are used; the IEX-only columns are ignored.
// Prices are null for minutes without trades.
type ChartBar struct {
	Date         string   `json:"date"`   // YYYY-MM-DD
	Minute       string   `json:"minute"` // HH:MM, America/New_York
	Label        string   `json:"label,omitempty"`
	MarketOpen   *float64 `json:"marketOpen"`
	MarketHigh   *float64 `json:"marketHigh"`
	MarketLow    *float64 `json:"marketLow"`
	MarketClose  *float64 `json:"marketClose"`
	MarketVolume *float64 `json:"marketVolume"`
}

// hasMarketPrices reports whether any consolidated price column was sent.
func (cb ChartBar) hasMarketPrices() bool {
	return cb.MarketOpen != nil || cb.MarketHigh != nil || cb.MarketLow != nil || cb.MarketClose != nil
}

// ToBar converts the row to a UTC model.Bar. ok is false when date and minute do not parse.
// Missing prices become NaN and are repaired downstream.
func (cb ChartBar) ToBar(loc *time.Location) (model.Bar, bool) {
	t, err := time.ParseInLocation("2006-01-02 15:04", cb.Date+" "+cb.Minute, loc)
	if err != nil {
		return model.Bar{}, false
	}
	var vol int64
	if cb.MarketVolume != nil && *cb.MarketVolume > 0 {
		vol = int64(*cb.MarketVolume)
	}
	return model.Bar{
		Time:     t.UTC(),
		Open:     orNaN(cb.MarketOpen),
		High:     orNaN(cb.MarketHigh),
		Low:      orNaN(cb.MarketLow),
		Close:    orNaN(cb.MarketClose),
		Volume:   vol,
		Dividend: 0,
		Split:    1,
	}, true
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// RefSymbol is one entry of /ref-data/symbols.
type RefSymbol struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	IsEnabled bool   `json:"isEnabled"`
}
