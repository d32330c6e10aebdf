package runner

import (
	"p12status/internal/dates"
	"p12status/internal/extract"
	"p12status/internal/reconcile"
	"p12status/internal/status"
)

// Assessment is the verdict derived from one service response.
type Assessment struct {
	Outcome status.Outcome
	Window  reconcile.Window

	// Result is nil when the response had no result block.
	Result *extract.ParsedResult
}

// Assess extracts, classifies and reconciles a response page. When the page
// cannot be segmented it still returns an all-Unknown assessment along with
// the error, so callers may log the gap and carry on.
func Assess(markup string, n *dates.Normalizer, c *status.Classifier) (*Assessment, error) {
	res, err := extract.Parse(markup)
	if err != nil {
		return &Assessment{Outcome: status.Unknown}, err
	}
	return AssessResult(res, n, c), nil
}

// AssessResult derives the verdict from already-extracted fields. The
// certificate block's status decides; the first binding certificate's status
// is consulted only when that is inconclusive.
func AssessResult(res *extract.ParsedResult, n *dates.Normalizer, c *status.Classifier) *Assessment {
	if n == nil {
		n = dates.NewNormalizer(dates.DefaultPolicy())
	}
	if c == nil {
		c = status.NewClassifier(status.DefaultKeywords())
	}

	outcome := c.Classify(res.Certificate.Value(extract.FieldStatus))
	if outcome == status.Unknown {
		outcome = c.Classify(res.Binding.Value(extract.FieldStatus))
	}

	certWindow := reconcile.Window{
		Effective:  n.Parse(res.Certificate.Value(extract.FieldEffective)),
		Expiration: n.Parse(res.Certificate.Value(extract.FieldExpiration)),
	}
	profileWindow := reconcile.Window{
		Effective:  n.Parse(res.Profile.Value(extract.FieldEffective)),
		Expiration: n.Parse(res.Profile.Value(extract.FieldExpiration)),
	}

	return &Assessment{
		Outcome: outcome,
		Window:  reconcile.Reconcile(certWindow, profileWindow),
		Result:  res,
	}
}
