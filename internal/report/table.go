// Package report reads, merges and writes the Markdown status table.
//
// Only the status and date cells of table rows are ever rewritten; every
// other line of the document round-trips untouched.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// HeaderPrefix identifies the table header line.
const HeaderPrefix = "| Company | Type | Status |"

// ErrNoTable is returned when the document has no status table.
var ErrNoTable = errors.New("no certificate table found")

// Cell positions within a row split on "|". Position 0 is the text before
// the leading pipe.
const (
	cellCompany = 1 + iota
	cellType
	cellStatus
	cellValidFrom
	cellValidTo
	cellDownload
)

// Row is one credential pair as listed in the table.
type Row struct {
	Company   string
	Type      string
	Status    string
	ValidFrom string
	ValidTo   string
	Download  string

	// Line is the row's index in Table.Lines.
	Line int
}

// Table is a parsed report document.
type Table struct {
	Lines []string
	Rows  []Row
}

// Parse reads the table out of a Markdown document. Rows start two lines
// below the header and stop at the first line that is not a table row or is
// a separator. Rows with fewer than five cells are skipped.
func Parse(content string) (*Table, error) {
	t := &Table{Lines: strings.Split(content, "\n")}

	header := -1
	for i, ln := range t.Lines {
		if strings.HasPrefix(ln, HeaderPrefix) {
			header = i
			break
		}
	}
	if header < 0 {
		return t, ErrNoTable
	}

	for i := header + 2; i < len(t.Lines); i++ {
		ln := strings.TrimRight(t.Lines[i], "\r")
		if !strings.HasPrefix(ln, "|") || strings.HasPrefix(ln, "|---") {
			break
		}
		cells := splitCells(ln)
		if len(cells) < 5 {
			continue
		}
		row := Row{
			Company:   cells[0],
			Type:      cells[1],
			Status:    cells[2],
			ValidFrom: cells[3],
			ValidTo:   cells[4],
			Line:      i,
		}
		if len(cells) > 5 {
			row.Download = cells[5]
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// splitCells returns the trimmed cells between the outer pipes.
func splitCells(line string) []string {
	parts := strings.Split(line, "|")
	if len(parts) < 2 {
		return nil
	}
	cells := parts[1 : len(parts)-1]
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// Read parses the document at path.
func Read(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	return Parse(string(data))
}

// Apply writes row's status and date cells back into its line.
func (t *Table) Apply(row Row) {
	if row.Line < 0 || row.Line >= len(t.Lines) {
		return
	}
	parts := strings.Split(t.Lines[row.Line], "|")
	set := func(idx int, v string) {
		if len(parts) > idx {
			parts[idx] = " " + v + " "
		}
	}
	set(cellStatus, row.Status)
	set(cellValidFrom, row.ValidFrom)
	set(cellValidTo, row.ValidTo)
	t.Lines[row.Line] = strings.Join(parts, "|")

	for i := range t.Rows {
		if t.Rows[i].Line == row.Line {
			t.Rows[i] = row
		}
	}
}

// String renders the document.
func (t *Table) String() string {
	return strings.Join(t.Lines, "\n")
}

// WriteFile replaces path with the rendered document via a temp file and
// rename, so readers never see a partial table.
func (t *Table) WriteFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(t.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp report: %w", err)
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("failed to set report permissions: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace report: %w", err)
	}
	return nil
}
