package polygon

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/brettelliot/azul/internal/model"
)

// BarRaw is raw bar for JSON with FlexibleInt64 for Volume
type BarRaw struct {
	Timestamp    int64         `json:"t"` // Unix timestamp in milliseconds, bar open
	Open         float64       `json:"o"`
	High         float64       `json:"h"`
	Low          float64       `json:"l"`
	Close        float64       `json:"c"`
	Volume       FlexibleInt64 `json:"v"`
	VWAP         float64       `json:"vw,omitempty"`
	Transactions FlexibleInt64 `json:"n,omitempty"`
}

// ToBar converts BarRaw to model.Bar. Aggregates are split-adjusted, so split is 1 and dividend 0.
func (br BarRaw) ToBar() model.Bar {
	return model.Bar{
		Time:     time.UnixMilli(br.Timestamp).UTC(),
		Open:     br.Open,
		High:     br.High,
		Low:      br.Low,
		Close:    br.Close,
		Volume:   br.Volume.Int64(),
		Dividend: 0,
		Split:    1,
	}
}

// AggregatesResponse is Polygon API response with next_url
type AggregatesResponse struct {
	Ticker       string   `json:"ticker"`
	QueryCount   int      `json:"queryCount"`
	ResultsCount int      `json:"resultsCount"`
	Adjusted     bool     `json:"adjusted"`
	Results      []BarRaw `json:"results"`
	Status       string   `json:"status"`
	RequestID    string   `json:"request_id"`
	Count        int      `json:"count"`
	NextURL      string   `json:"next_url,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// TickerDetailsResponse is the /v3/reference/tickers/{ticker} payload.
type TickerDetailsResponse struct {
	Status  string `json:"status"`
	Results struct {
		Ticker   string `json:"ticker"`
		Name     string `json:"name"`
		ListDate string `json:"list_date"`
	} `json:"results"`
}

// TickersResponse is one page of /v3/reference/tickers.
type TickersResponse struct {
	Status  string `json:"status"`
	Count   int    `json:"count"`
	NextURL string `json:"next_url,omitempty"`
	Results []struct {
		Ticker string `json:"ticker"`
		Type   string `json:"type"`
		Active bool   `json:"active"`
	} `json:"results"`
}

// FlexibleInt64 parses int or float (scientific notation) to int64
type FlexibleInt64 int64

// UnmarshalJSON parses int or float
func (f *FlexibleInt64) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		val, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return err
		}
		*f = FlexibleInt64(int64(val))
		return nil
	}

	var floatVal float64
	if err := json.Unmarshal(data, &floatVal); err == nil {
		*f = FlexibleInt64(int64(floatVal))
		return nil
	}

	return fmt.Errorf("cannot parse as int64: %s", string(data))
}

// Int64 returns int64 value
func (f FlexibleInt64) Int64() int64 {
	return int64(f)
}
