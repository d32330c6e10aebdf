package dates

// DefaultLayouts is the ordered list of exact layouts tried before the regex
// fallbacks. Month-first slash layouts come before day-first ones, so an
// ambiguous "08/01/23" reads as August 1st.
var DefaultLayouts = []string{
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006/1/2 15:04",
	"2 Jan 2006 15:04",
	"Jan 2, 2006 15:04",
	"1/2/06 15:04",
	"2/1/06 15:04",
	"1/2/2006 15:04",
	"2/1/2006 15:04",
	"2006-1-2",
	"2 Jan 2006",
	"Jan 2, 2006",
	"1/2/06",
	"2/1/06",
	"1/2/2006",
	"2/1/2006",
}

const (
	// DefaultTwoDigitYearPivot: a bare two-digit year below the pivot lands in
	// the 2000s, anything from the pivot up to 99 lands in the 1900s.
	// Applies to the slash fallback only; exact layouts use Go's own "06" rule.
	DefaultTwoDigitYearPivot = 50

	// DefaultDayFirstThreshold: in the slash fallback a leading group above
	// this value cannot be a month, so the first two groups are swapped.
	DefaultDayFirstThreshold = 12
)

// Policy holds the tunables of the normalizer. Service wording drifts, so
// layouts and heuristics are data rather than code.
type Policy struct {
	Layouts           []string
	TwoDigitYearPivot int
	DayFirstThreshold int
}

// DefaultPolicy returns the policy the verification service output was
// calibrated against.
func DefaultPolicy() Policy {
	layouts := make([]string, len(DefaultLayouts))
	copy(layouts, DefaultLayouts)
	return Policy{
		Layouts:           layouts,
		TwoDigitYearPivot: DefaultTwoDigitYearPivot,
		DayFirstThreshold: DefaultDayFirstThreshold,
	}
}

// withDefaults fills zero-valued fields from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if len(p.Layouts) == 0 {
		p.Layouts = def.Layouts
	}
	if p.TwoDigitYearPivot <= 0 {
		p.TwoDigitYearPivot = def.TwoDigitYearPivot
	}
	if p.DayFirstThreshold <= 0 {
		p.DayFirstThreshold = def.DayFirstThreshold
	}
	return p
}

// ExpandYear widens a two-digit year around pivot. Years written with any
// other number of digits are returned unchanged.
func ExpandYear(year, digits, pivot int) int {
	if digits != 2 {
		return year
	}
	if year < pivot {
		return 2000 + year
	}
	return 1900 + year
}
