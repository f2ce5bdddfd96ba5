// Package grid is the positional codec between the remote tabular store and
// typed records. A Grid is a rectangular-by-convention block of string cells;
// rows may be shorter than their neighbours and missing cells read as "".
//
// Everything here is pure: no I/O, no shared state.
package grid

import (
	"errors"
	"strings"
)

// Grid is an ordered sequence of rows, each an ordered sequence of cells.
type Grid [][]string

// Cell returns the cell at (row, col) or "" when it lies outside the grid.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return ""
	}
	return g[row][col]
}

// Width is the length of the longest row.
func (g Grid) Width() int {
	w := 0
	for _, r := range g {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// Clone returns a deep copy so callers can mutate without touching a snapshot.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for i, r := range g {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// ErrBadColumn is returned by ColumnLetterToIndex for anything that is not A-Z letters.
var ErrBadColumn = errors.New("grid: invalid column letters")

// ColumnIndexToLetter encodes a 0-based column index in bijective base-26:
// 0 => "A", 25 => "Z", 26 => "AA", 701 => "ZZ", 702 => "AAA".
// Negative indexes yield "".
func ColumnIndexToLetter(index int) string {
	if index < 0 {
		return ""
	}
	// 14 letters cover every non-negative int64.
	var buf [14]byte
	i := len(buf)
	for index >= 0 {
		i--
		buf[i] = byte('A' + index%26)
		index = index/26 - 1
	}
	return string(buf[i:])
}

// ColumnLetterToIndex is the inverse of ColumnIndexToLetter. Lower case is accepted.
func ColumnLetterToIndex(letters string) (int, error) {
	if letters == "" {
		return 0, ErrBadColumn
	}
	n := 0
	for _, r := range strings.ToUpper(letters) {
		if r < 'A' || r > 'Z' {
			return 0, ErrBadColumn
		}
		n = n*26 + int(r-'A') + 1
		if n > 1<<24 {
			return 0, ErrBadColumn
		}
	}
	return n - 1, nil
}
