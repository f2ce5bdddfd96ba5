package grid

import "strings"

// Record is one flat entity keyed by field label.
type Record map[string]string

// RowsToRecords treats row 0 as field names and every later row as one record.
// Missing cells default to "". Zero or one input rows yield no records.
func RowsToRecords(g Grid) []Record {
	if len(g) <= 1 {
		return nil
	}
	headers := g[0]
	out := make([]Record, 0, len(g)-1)
	for _, row := range g[1:] {
		rec := make(Record, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}

// ColumnsToRecords is the transposed form: column 0 of every row supplies the
// field name and columns 1..N each produce one record. Labels and values are
// trimmed; rows whose trimmed label is empty contribute nothing.
func ColumnsToRecords(g Grid) []Record {
	n := dataColumns(g)
	if n == 0 {
		return nil
	}
	out := make([]Record, n)
	for c := range out {
		rec := make(Record, len(g))
		for r := range g {
			key := strings.TrimSpace(g.Cell(r, 0))
			if key == "" {
				continue
			}
			rec[key] = strings.TrimSpace(g.Cell(r, c+1))
		}
		out[c] = rec
	}
	return out
}

// ColumnsToStructuredRecords is ColumnsToRecords with labels translated through
// mapping (identity when unmapped) into dotted paths such as "groupPrice.price".
// Each record is an object Node; intermediate path segments become nested
// objects. Rows whose trimmed label is empty are skipped entirely.
func ColumnsToStructuredRecords(g Grid, mapping map[string]string) []*Node {
	n := dataColumns(g)
	if n == 0 {
		return nil
	}

	type field struct {
		path []string
		row  int
	}
	fields := make([]field, 0, len(g))
	for r := range g {
		label := strings.TrimSpace(g.Cell(r, 0))
		if label == "" {
			continue
		}
		target := label
		if m, ok := mapping[label]; ok && m != "" {
			target = m
		}
		fields = append(fields, field{path: strings.Split(target, "."), row: r})
	}

	out := make([]*Node, n)
	for c := range out {
		node := NewObject()
		for _, f := range fields {
			node.Set(f.path, strings.TrimSpace(g.Cell(f.row, c+1)))
		}
		out[c] = node
	}
	return out
}

// dataColumns is the record count of a column-oriented grid: the width of the
// first row minus the label column.
func dataColumns(g Grid) int {
	if len(g) == 0 || len(g[0]) <= 1 {
		return 0
	}
	return len(g[0]) - 1
}
