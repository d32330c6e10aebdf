package extract

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// separators are the ASCII colon and the full-width colon U+FF1A.
const separators = ":："

// SplitKV splits line on its first colon-like separator. Without a
// separator the whole trimmed line is the name and the value is empty. The
// value has internal whitespace runs collapsed.
func SplitKV(line string) (name, value string) {
	idx := strings.IndexAny(line, separators)
	if idx < 0 {
		return strings.TrimSpace(line), ""
	}
	_, size := utf8.DecodeRuneInString(line[idx:])
	return strings.TrimSpace(line[:idx]), normalizeSpace(line[idx+size:])
}

// FieldKey is the comparison form of a field name: full-width characters
// folded to their narrow forms, lower-cased and trimmed.
func FieldKey(name string) string {
	return strings.ToLower(strings.TrimSpace(width.Fold.String(name)))
}
