package purchase

import (
	"strconv"
	"strings"

	"github.com/unkn0wn-root/sheetcache/grid"
)

// bookFields maps the books sheet row labels to Book paths.
var bookFields = map[string]string{
	"科目":       "subject",
	"書名":       "name",
	"作者":       "author",
	"出版社":      "publisher",
	"定價":       "basePrice",
	"單購價":      "onePrice",
	"團體價":      "groupPrice.price",
	"團體價最低訂購量": "groupPrice.minQuantity",
	"isbn":     "isbn",
	"Image":    "image",
}

const (
	headerSeat   = "座號"
	headerNumber = "學號"
	headerName   = "姓名"
)

// DecodeBooks reads the column-oriented books sheet. dups lists ISBNs that
// appear more than once; lookups resolve to the first occurrence.
func DecodeBooks(g grid.Grid) (books []Book, dups []string) {
	nodes := grid.ColumnsToStructuredRecords(g, bookFields)
	books = make([]Book, 0, len(nodes))
	for _, n := range nodes {
		books = append(books, Book{
			Subject:   n.Get("subject"),
			Name:      n.Get("name"),
			Author:    n.Get("author"),
			Publisher: n.Get("publisher"),
			BasePrice: n.Get("basePrice"),
			OnePrice:  n.Get("onePrice"),
			GroupPrice: GroupPrice{
				Price:       n.Get("groupPrice.price"),
				MinQuantity: n.Get("groupPrice.minQuantity"),
			},
			ISBN:  n.Get("isbn"),
			Image: n.Get("image"),
		})
	}
	return books, duplicates(len(books), func(i int) string { return books[i].ISBN })
}

// DecodeStudents reads the roster rows (header row first). Rows without a
// positive seat, a number or a name are dropped; "*" marks are removed
// from names. dups lists repeated student numbers.
func DecodeStudents(g grid.Grid) (students []Student, dups []string) {
	for _, rec := range grid.RowsToRecords(g) {
		seat, err := strconv.Atoi(strings.TrimSpace(rec[headerSeat]))
		if err != nil || seat <= 0 {
			continue
		}
		s := Student{
			Seat:   seat,
			Number: strings.TrimSpace(rec[headerNumber]),
			Name:   strings.TrimSpace(strings.ReplaceAll(rec[headerName], "*", "")),
		}
		if s.Number == "" || s.Name == "" {
			continue
		}
		students = append(students, s)
	}
	return students, duplicates(len(students), func(i int) string { return students[i].Number })
}

// DecodeOrders assembles one Order per book column group. Row 0 of g holds
// the status labels; student j's flags are on row dataRow+j. Groups whose
// book or label is missing are skipped.
func DecodeOrders(books []Book, students []Student, g grid.Grid, dataRow int) []Order {
	if len(g) == 0 {
		return nil
	}
	labels := g[0]
	var orders []Order
	for bi := 0; groupColumn(bi, FieldOrdered) < len(labels); bi++ {
		label := strings.TrimSpace(labels[groupColumn(bi, FieldOrdered)])
		if bi >= len(books) || label == "" {
			continue
		}
		o := Order{
			Book:     books[bi],
			Status:   OrderStatus(label),
			Students: make([]StudentOrder, len(students)),
		}
		for si, st := range students {
			state := decodeState(g, dataRow+si, bi)
			o.Students[si] = StudentOrder{Student: st, Status: state}
			if state != None {
				o.TotalOrdered++
			}
		}
		orders = append(orders, o)
	}
	return orders
}

const marker = "O"

func decodeState(g grid.Grid, row, bookIndex int) State {
	var s State
	for _, f := range []Field{FieldOrdered, FieldPaid, FieldDelivered} {
		if g.Cell(row, groupColumn(bookIndex, f)) == marker {
			s |= f.State()
		}
	}
	return s
}

func duplicates(n int, key func(int) string) []string {
	seen := make(map[string]int, n)
	var dups []string
	for i := 0; i < n; i++ {
		k := key(i)
		if k == "" {
			continue
		}
		seen[k]++
		if seen[k] == 2 {
			dups = append(dups, k)
		}
	}
	return dups
}

func findBook(books []Book, isbn string) int {
	for i := range books {
		if books[i].ISBN == isbn {
			return i
		}
	}
	return -1
}

func findStudent(students []Student, number string) int {
	for i := range students {
		if students[i].Number == number {
			return i
		}
	}
	return -1
}
