// Package dates turns the free-text dates printed by the verification service
// into calendar timestamps.
//
// Parsing never fails loudly: anything that cannot be understood becomes the
// zero Date, which renders as "Unknown" and is skipped by reconciliation.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DisplayLayout is the report rendering, DD/MM/YY HH:MM.
const DisplayLayout = "02/01/06 15:04"

// UnknownText is how an unparseable date is rendered.
const UnknownText = "Unknown"

var (
	parenPattern    = regexp.MustCompile(`\(.*?\)`)
	nonASCIIPattern = regexp.MustCompile(`[^\x20-\x7E]+`)
	gmtPattern      = regexp.MustCompile(`(?i)gmt[+-]\d{2}:\d{2}`)
	utcPattern      = regexp.MustCompile(`(?i)utc[+-]?\d*`)

	isoLikePattern = regexp.MustCompile(`(\d{4})[-/](\d{1,2})[-/](\d{1,2}).*?(\d{1,2}):(\d{1,2})`)
	slashPattern   = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{2,4})`)
)

// Date is a parsed calendar timestamp with minute precision, or the
// unparseable marker (the zero value). It does not remember which input
// format produced it.
type Date struct {
	t  time.Time
	ok bool
}

// Unparseable is the explicit "could not parse" marker.
var Unparseable = Date{}

// Of wraps t, truncated to the minute and moved to UTC wall time.
func Of(t time.Time) Date {
	return Date{
		t:  time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC),
		ok: true,
	}
}

// Valid reports whether d holds a timestamp.
func (d Date) Valid() bool { return d.ok }

// Time returns the timestamp; the zero time for Unparseable.
func (d Date) Time() time.Time { return d.t }

// Before reports whether d is strictly earlier than o. Both must be valid.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// Equal reports whether both are unparseable or both hold the same instant.
func (d Date) Equal(o Date) bool {
	if d.ok != o.ok {
		return false
	}
	return !d.ok || d.t.Equal(o.t)
}

// String renders DD/MM/YY HH:MM, or "Unknown".
func (d Date) String() string {
	if !d.ok {
		return UnknownText
	}
	return d.t.Format(DisplayLayout)
}

// Normalizer parses dates under a fixed Policy.
type Normalizer struct {
	policy Policy
}

// NewNormalizer returns a Normalizer; zero fields of p take their defaults.
func NewNormalizer(p Policy) *Normalizer {
	return &Normalizer{policy: p.withDefaults()}
}

var defaultNormalizer = NewNormalizer(DefaultPolicy())

// Parse parses s with the default policy.
func Parse(s string) Date {
	return defaultNormalizer.Parse(s)
}

// Clean strips parenthetical annotations, non-printable-ASCII decoration and
// GMT/UTC offset labels, then trims.
func Clean(s string) string {
	s = parenPattern.ReplaceAllString(s, "")
	s = nonASCIIPattern.ReplaceAllString(s, " ")
	s = gmtPattern.ReplaceAllString(s, "")
	s = utcPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Parse returns the timestamp described by s, or Unparseable.
func (n *Normalizer) Parse(s string) Date {
	s = Clean(s)
	if s == "" || strings.EqualFold(s, UnknownText) {
		return Unparseable
	}

	for _, layout := range n.policy.Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Of(t)
		}
	}

	if m := isoLikePattern.FindStringSubmatch(s); m != nil {
		if t, ok := civil(atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4]), atoi(m[5])); ok {
			return Of(t)
		}
	}

	if m := slashPattern.FindStringSubmatch(s); m != nil {
		month, day := atoi(m[1]), atoi(m[2])
		if month > n.policy.DayFirstThreshold {
			month, day = day, month
		}
		year := ExpandYear(atoi(m[3]), len(m[3]), n.policy.TwoDigitYearPivot)
		if t, ok := civil(year, month, day, 0, 0); ok {
			return Of(t)
		}
	}

	return Unparseable
}

// civil builds a UTC timestamp, rejecting anything time.Date would normalize.
func civil(year, month, day, hour, minute int) (time.Time, bool) {
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// atoi is only fed regex digit groups.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
