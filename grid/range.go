package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Ref addresses a cell corner. Col is 0-based; Row is 1-based and 0 means
// "the whole column" (an open-ended bound such as the C in "A4:C").
type Ref struct {
	Col int
	Row int
}

func (r Ref) String() string {
	if r.Row <= 0 {
		return ColumnIndexToLetter(r.Col)
	}
	return ColumnIndexToLetter(r.Col) + strconv.Itoa(r.Row)
}

// Range is a parsed range spec: <sheet>!<startCol><startRow>:<endCol><endRow>.
// A nil Start addresses the whole sheet; a nil End addresses the single Start cell.
type Range struct {
	Sheet string
	Start *Ref
	End   *Ref
}

// SheetRange addresses a whole sheet.
func SheetRange(sheet string) Range { return Range{Sheet: sheet} }

// CellRange addresses one cell. col is 0-based, row is 1-based.
func CellRange(sheet string, col, row int) Range {
	return Range{Sheet: sheet, Start: &Ref{Col: col, Row: row}}
}

// RowRange addresses cells startCol..endCol (inclusive) of a single row.
func RowRange(sheet string, startCol, endCol, row int) Range {
	return Range{Sheet: sheet, Start: &Ref{Col: startCol, Row: row}, End: &Ref{Col: endCol, Row: row}}
}

// SpanRange addresses a rectangle; endRow may be 0 for an open-ended range.
func SpanRange(sheet string, startCol, startRow, endCol, endRow int) Range {
	return Range{Sheet: sheet, Start: &Ref{Col: startCol, Row: startRow}, End: &Ref{Col: endCol, Row: endRow}}
}

func (r Range) String() string {
	if r.Start == nil {
		return r.Sheet
	}
	var b strings.Builder
	if r.Sheet != "" {
		b.WriteString(r.Sheet)
		b.WriteByte('!')
	}
	b.WriteString(r.Start.String())
	if r.End != nil {
		b.WriteByte(':')
		b.WriteString(r.End.String())
	}
	return b.String()
}

// ParseRange parses "Sheet", "Sheet!B7", "Sheet!A4:C" and "Sheet!D3:AA66".
// Sheet names may be single-quoted ('My Sheet'!A1) with '' as an escaped quote.
// Without a '!' the whole input is a sheet name.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, fmt.Errorf("grid: empty range")
	}
	bang := strings.LastIndexByte(s, '!')
	if bang < 0 {
		return Range{Sheet: unquoteSheet(s)}, nil
	}
	out := Range{Sheet: unquoteSheet(s[:bang])}
	cells := s[bang+1:]
	if cells == "" {
		return out, nil
	}
	first, second, hasEnd := strings.Cut(cells, ":")
	start, err := parseRef(first)
	if err != nil {
		return Range{}, fmt.Errorf("grid: range %q: %w", s, err)
	}
	out.Start = &start
	if hasEnd {
		end, err := parseRef(second)
		if err != nil {
			return Range{}, fmt.Errorf("grid: range %q: %w", s, err)
		}
		out.End = &end
	}
	return out, nil
}

func unquoteSheet(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	return s
}

func parseRef(s string) (Ref, error) {
	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	col, err := ColumnLetterToIndex(s[:i])
	if err != nil {
		return Ref{}, err
	}
	if i == len(s) {
		return Ref{Col: col}, nil
	}
	row, err := strconv.Atoi(s[i:])
	if err != nil || row < 1 {
		return Ref{}, fmt.Errorf("invalid row %q", s[i:])
	}
	return Ref{Col: col, Row: row}, nil
}

func isLetter(c byte) bool { return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') }

// Bounds resolves the range against a sheet of rows x cols cells and returns
// 0-based inclusive bounds. Open-ended rows extend to the last row. The result
// may be empty (r1 < r0) when the sheet holds fewer rows than the range start.
func (r Range) Bounds(rows, cols int) (r0, c0, r1, c1 int) {
	if r.Start == nil {
		return 0, 0, rows - 1, cols - 1
	}
	c0 = r.Start.Col
	if r.Start.Row > 0 {
		r0 = r.Start.Row - 1
	}
	if r.End == nil {
		if r.Start.Row <= 0 {
			return 0, c0, rows - 1, c0
		}
		return r0, c0, r0, c0
	}
	c1 = r.End.Col
	if r.End.Row > 0 {
		r1 = r.End.Row - 1
	} else {
		r1 = rows - 1
	}
	if c1 < c0 {
		c0, c1 = c1, c0
	}
	return r0, c0, r1, c1
}
