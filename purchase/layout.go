package purchase

import (
	"fmt"

	"github.com/unkn0wn-root/sheetcache/grid"
)

// columnsPerBook is the width of a book's column group in the order sheet:
// ordered, paid, delivered.
const columnsPerBook = 3

// Layout locates the entities inside the spreadsheet.
type Layout struct {
	BaseSheet   string // audit log sheet in the logs spreadsheet
	BooksSheet  string // whole sheet, one book per column
	OrdersSheet string
	// RosterBlocks are ranges on OrdersSheet holding 座號/學號/姓名 tables;
	// their rows are concatenated in order.
	RosterBlocks []string
	// OrderGrid is the range on OrdersSheet whose first row carries the
	// per-book status labels.
	OrderGrid string
	// FirstStudentRow is the 1-based sheet row of the first roster student.
	FirstStudentRow int
}

func DefaultLayout() Layout {
	return Layout{
		BaseSheet:       "1-2",
		BooksSheet:      "1-2書",
		OrdersSheet:     "1-2 訂書",
		RosterBlocks:    []string{"A4:C", "A73:C"},
		OrderGrid:       "D3:AA66",
		FirstStudentRow: 5,
	}
}

// placement is a validated Layout with the order grid origin resolved.
type placement struct {
	Layout
	origin grid.Ref
}

func (l Layout) resolve() (placement, error) {
	if l.BooksSheet == "" || l.OrdersSheet == "" || l.BaseSheet == "" {
		return placement{}, fmt.Errorf("purchase: layout needs base, books and orders sheet names")
	}
	if len(l.RosterBlocks) == 0 {
		return placement{}, fmt.Errorf("purchase: layout needs at least one roster block")
	}
	for _, b := range l.RosterBlocks {
		if _, err := grid.ParseRange(l.OrdersSheet + "!" + b); err != nil {
			return placement{}, fmt.Errorf("purchase: roster block %q: %w", b, err)
		}
	}
	r, err := grid.ParseRange(l.OrdersSheet + "!" + l.OrderGrid)
	if err != nil {
		return placement{}, fmt.Errorf("purchase: order grid %q: %w", l.OrderGrid, err)
	}
	if r.Start == nil || r.Start.Row == 0 {
		return placement{}, fmt.Errorf("purchase: order grid %q must start at a cell", l.OrderGrid)
	}
	if l.FirstStudentRow <= r.Start.Row {
		return placement{}, fmt.Errorf("purchase: first student row %d must be below the order grid header (row %d)",
			l.FirstStudentRow, r.Start.Row)
	}
	return placement{Layout: l, origin: *r.Start}, nil
}

// groupColumn is the only place that knows how a book's status flags are
// laid out: book i's group starts at grid column 3*i, flag f sits at +f.
func groupColumn(bookIndex int, f Field) int {
	return columnsPerBook*bookIndex + int(f)
}

// dataRowOffset is the index of the first student row inside the order grid.
func (p placement) dataRowOffset() int { return p.FirstStudentRow - p.origin.Row }

func (p placement) studentRow(studentIndex int) int { return studentIndex + p.FirstStudentRow }

// statusCell addresses one flag of one student's order.
func (p placement) statusCell(bookIndex, studentIndex int, f Field) string {
	col := p.origin.Col + groupColumn(bookIndex, f)
	return grid.CellRange(p.OrdersSheet, col, p.studentRow(studentIndex)).String()
}

// statusRow addresses all three flags of one student's order.
func (p placement) statusRow(bookIndex, studentIndex int) string {
	start := p.origin.Col + groupColumn(bookIndex, FieldOrdered)
	end := p.origin.Col + groupColumn(bookIndex, FieldDelivered)
	return grid.RowRange(p.OrdersSheet, start, end, p.studentRow(studentIndex)).String()
}

func (p placement) booksRange() string { return grid.SheetRange(p.BooksSheet).String() }

func (p placement) rosterRanges() []string {
	out := make([]string, len(p.RosterBlocks))
	for i, b := range p.RosterBlocks {
		out[i] = p.OrdersSheet + "!" + b
	}
	return out
}

func (p placement) orderGridRange() string { return p.OrdersSheet + "!" + p.OrderGrid }

func (p placement) auditRange() string { return grid.SheetRange(p.BaseSheet).String() }
