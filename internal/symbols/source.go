// Package symbols produces the lists of ticker symbols to download.
package symbols

import (
	"context"
	"fmt"
	"strings"
)

// Source yields a list of ticker symbols.
type Source interface {
	Name() string
	Symbols(ctx context.Context) ([]string, error)
}

// Kind enumerates the supported symbol sources.
type Kind int

const (
	FAANG Kind = iota + 1
	SP500
	PolygonCS
	IEX
	File
)

// Kinds lists every symbol source, in help-text order.
var Kinds = []Kind{FAANG, SP500, PolygonCS, IEX, File}

func (k Kind) String() string {
	switch k {
	case FAANG:
		return "faang"
	case SP500:
		return "sp500"
	case PolygonCS:
		return "polygon_cs"
	case IEX:
		return "iex"
	case File:
		return "file"
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
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = k.String()
	}
	return 0, fmt.Errorf("unsupported symbol source %q (use: %s)", s, strings.Join(names, ", "))
}

// Normalize upper-cases and trims symbols, dropping blanks and repeats. Order is kept.
func Normalize(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Static is a fixed symbol list.
type Static struct {
	name string
	list []string
}

// NewStatic returns a Source that always yields list.
func NewStatic(name string, list ...string) *Static {
	return &Static{name: name, list: list}
}

// NewFAANG returns the FAANG list.
func NewFAANG() *Static {
	return NewStatic(FAANG.String(), "FB", "AMZN", "AAPL", "NFLX", "GOOG")
}

func (s *Static) Name() string { return s.name }

func (s *Static) Symbols(context.Context) ([]string, error) {
	return Normalize(s.list), nil
}

// Lister is anything that can list tickers, such as a vendor reference-data client.
type Lister func(ctx context.Context) ([]string, error)

// Vendor adapts a vendor listing call to a Source.
type Vendor struct {
	name string
	list Lister
}

// NewVendor wraps list as a named Source.
func NewVendor(name string, list Lister) *Vendor {
	return &Vendor{name: name, list: list}
}

func (v *Vendor) Name() string { return v.name }

func (v *Vendor) Symbols(ctx context.Context) ([]string, error) {
	list, err := v.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s symbols: %w", v.name, err)
	}
	return Normalize(list), nil
}
