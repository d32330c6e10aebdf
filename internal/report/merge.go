package report

import (
	"fmt"
	"strings"

	"p12status/internal/dates"
	"p12status/internal/reconcile"
	"p12status/internal/status"
)

// DefaultRecommendMarker marks the line preceding the recommended highlight.
const DefaultRecommendMarker = "Recommend Certificate"

// Merge folds a fresh result into row. Status is always replaced; a date
// cell is only replaced when the fresh date parsed, so a flaky extraction
// never erases a previously known date.
func Merge(row Row, outcome status.Outcome, w reconcile.Window) Row {
	row.Status = outcome.Decoration()
	if from := w.Effective.String(); from != dates.UnknownText {
		row.ValidFrom = from
	}
	if to := w.Expiration.String(); to != dates.UnknownText {
		row.ValidTo = to
	}
	return row
}

// Highlight is the bold line written under the recommend marker.
func Highlight(company string, outcome status.Outcome) string {
	return fmt.Sprintf("**%s - %s**", company, outcome.Decoration())
}

// UpdateRecommended rewrites the line after every line containing marker
// with company's highlight. It reports whether any line changed.
func (t *Table) UpdateRecommended(marker, company string, outcome status.Outcome) bool {
	if marker == "" {
		marker = DefaultRecommendMarker
	}
	changed := false
	want := Highlight(company, outcome)
	for i := 0; i+1 < len(t.Lines); i++ {
		if !strings.Contains(t.Lines[i], marker) {
			continue
		}
		if t.Lines[i+1] != want {
			t.Lines[i+1] = want
			changed = true
		}
	}
	return changed
}
