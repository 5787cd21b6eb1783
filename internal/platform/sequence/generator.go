package sequence

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	// width is the minimum digit count of the sequence segment. A
	// prefix scope that grows past 9999 keeps counting with wider
	// numbers rather than failing intake.
	width     = 4
	separator = "-"
)

// Generator produces case numbers of the form
// {year-month}-{zero padded sequence}-{country code}, e.g.
// 2026-08-0001-TZ. Numbers are strictly increasing within a prefix
// scope and never reused.
type Generator struct {
	counter Counter
	suffix  string
}

func NewGenerator(counter Counter, countryCode string) *Generator {
	return &Generator{counter: counter, suffix: strings.ToUpper(countryCode)}
}

// Prefix returns the scope key for the given date.
func Prefix(t time.Time) string {
	return t.Format("2006-01")
}

// Next allocates the next number in the scope of the given date. When
// the counter store is unreachable the error propagates and no number
// is assigned.
func (g *Generator) Next(ctx context.Context, t time.Time) (string, error) {
	prefix := Prefix(t)
	n, err := g.counter.Next(ctx, prefix)
	if err != nil {
		return "", err
	}
	return Format(prefix, n, g.suffix), nil
}

// Format renders a case number from its parts.
func Format(prefix string, seq int64, suffix string) string {
	return strings.ToUpper(fmt.Sprintf("%s%s%0*d%s%s", prefix, separator, width, seq, separator, suffix))
}
