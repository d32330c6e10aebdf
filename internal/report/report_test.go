package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"p12status/internal/dates"
	"p12status/internal/reconcile"
	"p12status/internal/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReadme = `# Certificates

### Recommend Certificate
**China Telecommunications Corporation V2 - ⚠️ Status: Unknown**

| Company | Type | Status | Valid From | Valid To | Download |
|---------|------|--------|------------|----------|----------|
| Acme Corp | Enterprise | ✅ Signed | 01/01/23 00:00 | 01/01/24 00:00 | [Download](https://example.com/acme.zip) |
| China Telecommunications Corporation V2 | Enterprise | ❌ Revoked | 02/02/23 00:00 | 02/02/24 00:00 | [Download](https://example.com/ct.zip) |
| Short | Row |
| Beta Ltd | Developer | ⚠️ Status: Unknown | Unknown | Unknown |

Footer text | with a pipe
`

func parseSample(t *testing.T) *Table {
	t.Helper()
	tbl, err := Parse(sampleReadme)
	require.NoError(t, err)
	return tbl
}

func window(eff, exp string) reconcile.Window {
	return reconcile.Window{Effective: dates.Parse(eff), Expiration: dates.Parse(exp)}
}

func TestParse_Rows(t *testing.T) {
	tbl := parseSample(t)

	require.Len(t, tbl.Rows, 3)

	acme := tbl.Rows[0]
	assert.Equal(t, "Acme Corp", acme.Company)
	assert.Equal(t, "Enterprise", acme.Type)
	assert.Equal(t, "✅ Signed", acme.Status)
	assert.Equal(t, "01/01/23 00:00", acme.ValidFrom)
	assert.Equal(t, "01/01/24 00:00", acme.ValidTo)
	assert.Equal(t, "[Download](https://example.com/acme.zip)", acme.Download)
	assert.Equal(t, 7, acme.Line)

	beta := tbl.Rows[2]
	assert.Equal(t, "Beta Ltd", beta.Company)
	assert.Equal(t, "", beta.Download)
}

func TestParse_NoTable(t *testing.T) {
	tbl, err := Parse("# Nothing here\n")
	assert.True(t, errors.Is(err, ErrNoTable))
	assert.Empty(t, tbl.Rows)
}

func TestParse_StopsAtSeparatorOrNonRow(t *testing.T) {
	doc := HeaderPrefix + " Valid From | Valid To |\n|---|---|---|---|---|\n| A | B | C | D | E |\n\n| X | Y | Z | W | V |\n"
	tbl, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "A", tbl.Rows[0].Company)
}

func TestMerge_OverwritesStatusAndParsedDates(t *testing.T) {
	row := Row{Company: "Acme", Status: "✅ Signed", ValidFrom: "01/01/23 00:00", ValidTo: "01/01/24 00:00"}

	got := Merge(row, status.Revoked, window("2023-08-02 06:07", "2024-08-01"))

	assert.Equal(t, "❌ Revoked", got.Status)
	assert.Equal(t, "02/08/23 06:07", got.ValidFrom)
	assert.Equal(t, "01/08/24 00:00", got.ValidTo)
}

func TestMerge_RetainsPreviousDatesWhenUnknown(t *testing.T) {
	row := Row{Company: "Acme", Status: "✅ Signed", ValidFrom: "01/01/23 00:00", ValidTo: "01/01/24 00:00"}

	got := Merge(row, status.Unknown, window("unknown", "2024-08-01"))

	assert.Equal(t, "⚠️ Status: Unknown", got.Status)
	assert.Equal(t, "01/01/23 00:00", got.ValidFrom)
	assert.Equal(t, "01/08/24 00:00", got.ValidTo)
}

func TestMerge_Idempotent(t *testing.T) {
	row := Row{Company: "Acme", Status: "x", ValidFrom: "a", ValidTo: "b"}
	w := window("2023-08-02 06:07", "")

	once := Merge(row, status.Valid, w)
	twice := Merge(once, status.Valid, w)

	assert.Equal(t, once, twice)
}

func TestApply_RewritesOnlyStatusAndDateCells(t *testing.T) {
	tbl := parseSample(t)
	before := append([]string(nil), tbl.Lines...)

	row := Merge(tbl.Rows[0], status.Revoked, window("2023-08-02 06:07", "2024-08-01"))
	tbl.Apply(row)

	assert.Equal(t,
		"| Acme Corp | Enterprise | ❌ Revoked | 02/08/23 06:07 | 01/08/24 00:00 | [Download](https://example.com/acme.zip) |",
		tbl.Lines[row.Line])
	assert.Equal(t, row, tbl.Rows[0])

	for i := range before {
		if i == row.Line {
			continue
		}
		assert.Equal(t, before[i], tbl.Lines[i], "line %d changed", i)
	}
}

func TestApply_FiveColumnRowKeepsShape(t *testing.T) {
	tbl := parseSample(t)
	beta := tbl.Rows[2]

	tbl.Apply(Merge(beta, status.Valid, window("2023-01-01", "2024-01-01")))

	assert.Equal(t, "| Beta Ltd | Developer | ✅ Signed | 01/01/23 00:00 | 01/01/24 00:00 |", tbl.Lines[beta.Line])
}

func TestUpdateRecommended(t *testing.T) {
	tbl := parseSample(t)

	changed := tbl.UpdateRecommended("", "China Telecommunications Corporation V2", status.Valid)

	assert.True(t, changed)
	assert.Equal(t, "**China Telecommunications Corporation V2 - ✅ Signed**", tbl.Lines[3])

	assert.False(t, tbl.UpdateRecommended(DefaultRecommendMarker, "China Telecommunications Corporation V2", status.Valid))
}

func TestWriteFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(path, []byte(sampleReadme), 0600))

	tbl, err := Read(path)
	require.NoError(t, err)
	require.NoError(t, tbl.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleReadme, string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.md"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to read report"))
}
