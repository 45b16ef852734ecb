package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brettelliot/azul/internal/model"
)

var (
	// ErrNoData means the vendor answered successfully but had no bars for the session.
	ErrNoData = errors.New("no data")
	// ErrIncompletePayload means the vendor payload lacked required price columns.
	ErrIncompletePayload = errors.New("incomplete payload")
)

// MinuteDataSource is the abstraction the pipeline uses to pull one session of minute bars.
// Implementations own their transport and credentials.
type MinuteDataSource interface {
	Name() string
	// FetchSession returns the minute bars of symbol for the session dated session (UTC midnight).
	// Any error is treated by callers as "no data for that session".
	FetchSession(ctx context.Context, symbol string, session time.Time) (model.Series, error)
	Close() error
}

// LookbackLimiter is implemented by sources that only serve a limited minute-data history.
type LookbackLimiter interface {
	LookbackDays() int
}

// ListingDater is implemented by sources that know when a symbol was listed.
type ListingDater interface {
	ListingDate(ctx context.Context, symbol string) (time.Time, bool)
}

// Kind enumerates the supported data sources.
type Kind int

const (
	Polygon Kind = iota + 1
	IEX
)

// Kinds lists every data source, in help-text order.
var Kinds = []Kind{Polygon, IEX}

func (k Kind) String() string {
	switch k {
	case Polygon:
		return "polygon"
	case IEX:
		return "iex"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a configuration value to a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(strings.TrimSpace(s), k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unsupported data source %q (use: polygon, iex)", s)
}
