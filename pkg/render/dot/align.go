package dot

import (
	"cmp"
	"fmt"
	"strings"
	"time"
)

// Granularity is the precision used when ordering commits by date.
type Granularity int

const (
	AlignNone Granularity = iota
	AlignYear
	AlignMonth
	AlignDay
	AlignHour
	AlignMinute
	AlignSecond
)

var granularityNames = []string{"none", "year", "month", "day", "hour", "minute", "second"}

func (g Granularity) String() string {
	if g < 0 || int(g) >= len(granularityNames) {
		return fmt.Sprintf("Granularity(%d)", int(g))
	}
	return granularityNames[g]
}

// Granularities lists the accepted names, for help text and validation.
func Granularities() []string { return granularityNames }

// ParseGranularity accepts "none", "year", "month", "day", "hour", "minute"
// and "second". An empty string is "none".
func ParseGranularity(s string) (Granularity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return AlignNone, nil
	}
	for i, name := range granularityNames {
		if s == name {
			return Granularity(i), nil
		}
	}
	return AlignNone, fmt.Errorf("unknown granularity %q (want one of %s)", s, strings.Join(granularityNames, ", "))
}

// Truncate zeroes every wall-clock field of t finer than g, in t's own
// location.
func (g Granularity) Truncate(t time.Time) time.Time {
	f := wallFields(t)
	for i := int(g); i < len(f); i++ {
		if i == 1 || i == 2 {
			f[i] = 1
		} else {
			f[i] = 0
		}
	}
	return time.Date(f[0], time.Month(f[1]), f[2], f[3], f[4], f[5], 0, t.Location())
}

// Compare orders two times by their wall-clock fields down to g, ignoring
// their locations. Commits made in different zones are compared by what the
// committer's clock showed.
func (g Granularity) Compare(a, b time.Time) int {
	fa, fb := wallFields(a), wallFields(b)
	for i := 0; i < int(g) && i < len(fa); i++ {
		if c := cmp.Compare(fa[i], fb[i]); c != 0 {
			return c
		}
	}
	return 0
}

func wallFields(t time.Time) [6]int {
	return [6]int{t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second()}
}
