// Package diff renders line diffs of the status report, used to preview a
// run without writing the file.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineType represents the type of diff line
type LineType int

const (
	LineContext LineType = iota // Unchanged context line
	LineAdded                   // Added line
	LineRemoved                 // Removed line
)

// Line represents a single line in the diff
type Line struct {
	Content string
	Type    LineType
}

// Hunk represents a group of changes
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// DefaultContext is the number of unchanged lines kept around a change.
const DefaultContext = 3

// Lines computes the hunks turning oldContent into newContent.
func Lines(oldContent, newContent string, context int) []Hunk {
	if oldContent == newContent {
		return nil
	}
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	// Line-level reduction avoids splitting inside a table row.
	a, b, lineArray := dmp.DiffLinesToChars(oldContent, newContent)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	return group(toOps(diffs), context)
}

// op is one line with its 0-based positions; -1 where it does not exist.
type op struct {
	typ     LineType
	oldLine int
	newLine int
	content string
}

func toOps(diffs []diffmatchpatch.Diff) []op {
	var ops []op
	oldLine, newLine := 0, 0
	for _, d := range diffs {
		lines := strings.SplitAfter(d.Text, "\n")
		if n := len(lines); n > 0 && lines[n-1] == "" {
			lines = lines[:n-1]
		}
		for _, ln := range lines {
			ln = strings.TrimSuffix(ln, "\n")
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				ops = append(ops, op{LineContext, oldLine, newLine, ln})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				ops = append(ops, op{LineRemoved, oldLine, -1, ln})
				oldLine++
			case diffmatchpatch.DiffInsert:
				ops = append(ops, op{LineAdded, -1, newLine, ln})
				newLine++
			}
		}
	}
	return ops
}

// group cuts ops into hunks, merging changes closer than 2*context lines.
func group(ops []op, context int) []Hunk {
	if context < 0 {
		context = 0
	}

	var hunks []Hunk
	for i := 0; i < len(ops); {
		if ops[i].typ == LineContext {
			i++
			continue
		}

		start := max(i-context, 0)
		end := i
		for j := i; j < len(ops); j++ {
			if ops[j].typ != LineContext {
				end = j
				continue
			}
			if j-end > 2*context {
				break
			}
		}
		stop := min(end+context+1, len(ops))

		h := Hunk{OldStart: -1, NewStart: -1}
		for _, o := range ops[start:stop] {
			h.Lines = append(h.Lines, Line{Content: o.content, Type: o.typ})
			if o.typ != LineAdded {
				h.OldCount++
				if h.OldStart < 0 {
					h.OldStart = o.oldLine + 1
				}
			}
			if o.typ != LineRemoved {
				h.NewCount++
				if h.NewStart < 0 {
					h.NewStart = o.newLine + 1
				}
			}
		}
		h.OldStart = max(h.OldStart, 0)
		h.NewStart = max(h.NewStart, 0)
		hunks = append(hunks, h)
		i = stop
	}
	return hunks
}

// Prefix is the unified diff marker for the line.
func (l Line) Prefix() string {
	switch l.Type {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}
