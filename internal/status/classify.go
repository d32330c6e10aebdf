// Package status maps the verification service's status phrases onto a
// closed set of outcomes.
package status

import (
	"strings"
	"unicode"
)

// Outcome is the verdict for a credential pair.
type Outcome int

const (
	Unknown Outcome = iota
	Valid
	Revoked
)

func (o Outcome) String() string {
	switch o {
	case Valid:
		return "Valid"
	case Revoked:
		return "Revoked"
	default:
		return "Unknown"
	}
}

// Symbol is the glyph used in the report and on the console.
func (o Outcome) Symbol() string {
	switch o {
	case Valid:
		return "✅"
	case Revoked:
		return "❌"
	default:
		return "⚠️"
	}
}

// Decoration is the full status cell text written to the report.
func (o Outcome) Decoration() string {
	switch o {
	case Valid:
		return "✅ Signed"
	case Revoked:
		return "❌ Revoked"
	default:
		return "⚠️ Status: Unknown"
	}
}

// Keywords are substrings tested against a normalized phrase. Valid
// is checked first.
type Keywords struct {
	Valid   []string
	Revoked []string
}

// DefaultKeywords returns the keyword sets matching the service's wording.
//
// Matching is by substring, so "invalid" hits "valid" and
// "revocation reason: none" hits "revocation". Both are known over-matches.
func DefaultKeywords() Keywords {
	return Keywords{
		Valid:   []string{"good", "valid", "active", "match", "match with p12"},
		Revoked: []string{"revoked", "revok", "revocation", "revocation reason"},
	}
}

// Classifier applies a fixed keyword set.
type Classifier struct {
	valid   []string
	revoked []string
}

// NewClassifier normalizes kw the same way phrases are normalized. An empty
// set falls back to its default.
func NewClassifier(kw Keywords) *Classifier {
	def := DefaultKeywords()
	if len(kw.Valid) == 0 {
		kw.Valid = def.Valid
	}
	if len(kw.Revoked) == 0 {
		kw.Revoked = def.Revoked
	}
	return &Classifier{
		valid:   normalizeAll(kw.Valid),
		revoked: normalizeAll(kw.Revoked),
	}
}

var defaultClassifier = NewClassifier(DefaultKeywords())

// Classify classifies phrase with the default keywords.
func Classify(phrase string) Outcome {
	return defaultClassifier.Classify(phrase)
}

// Classify returns Valid, Revoked or Unknown for a raw status phrase.
func (c *Classifier) Classify(phrase string) Outcome {
	norm := Normalize(phrase)
	if norm == "" {
		return Unknown
	}
	if containsAny(norm, c.valid) {
		return Valid
	}
	if containsAny(norm, c.revoked) {
		return Revoked
	}
	return Unknown
}

// Normalize replaces everything but letters, digits, underscores and
// whitespace with spaces, collapses whitespace and lower-cases.
func Normalize(phrase string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, phrase)
	return strings.ToLower(strings.Join(strings.Fields(cleaned), " "))
}

func normalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, k := range in {
		if n := Normalize(k); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
