// Package purchase is the entity repository of the book-ordering workflow.
// It decodes the catalog, the student roster and the order grid out of the
// spreadsheet, serves them through sheetcache loaders and performs the order
// mutations.
package purchase

import "strings"

// GroupPrice is the discounted price applied once MinQuantity copies are ordered.
type GroupPrice struct {
	Price       string `json:"price"`
	MinQuantity string `json:"minQuantity"`
}

// Book is one catalog entry. Prices are kept verbatim; see CurrentPrice.
type Book struct {
	Subject    string     `json:"subject"`
	Name       string     `json:"name"`
	Author     string     `json:"author"`
	Publisher  string     `json:"publisher"`
	BasePrice  string     `json:"basePrice"`
	OnePrice   string     `json:"onePrice"`
	GroupPrice GroupPrice `json:"groupPrice"`
	ISBN       string     `json:"isbn"`
	Image      string     `json:"image"`
}

type Student struct {
	Seat   int    `json:"seat"`
	Number string `json:"number"`
	Name   string `json:"name"`
}

// State is the per student, per book status bitmask.
type State uint8

const (
	None      State = 0
	Delivered State = 1
	Paid      State = 2
	Ordered   State = 4
)

func (s State) Has(bit State) bool { return s&bit != 0 }

func (s State) String() string {
	if s == None {
		return "none"
	}
	var parts []string
	for _, f := range []Field{FieldOrdered, FieldPaid, FieldDelivered} {
		if s.Has(f.State()) {
			parts = append(parts, f.String())
		}
	}
	return strings.Join(parts, "|")
}

type StudentOrder struct {
	Student
	Status State `json:"status"`
}

// OrderStatus is the label found above a book's columns in the order sheet.
// It is passed through verbatim; labels outside the known set are kept.
type OrderStatus string

const (
	PreOrdering    OrderStatus = "預購中"
	PreOrderClosed OrderStatus = "預購截止"
	StatusOrdered  OrderStatus = "已訂購"
	StatusClosed   OrderStatus = "已關閉"
)

func (s OrderStatus) Known() bool {
	switch s {
	case PreOrdering, PreOrderClosed, StatusOrdered, StatusClosed:
		return true
	}
	return false
}

// Order is one book's column group. Students is parallel to the roster.
type Order struct {
	Book         Book           `json:"book"`
	Status       OrderStatus    `json:"status"`
	Students     []StudentOrder `json:"students"`
	TotalOrdered int            `json:"totalOrdered"`
}

// StudentStatus returns number's state in o; unknown students read as None.
func (o Order) StudentStatus(number string) (State, bool) {
	for _, s := range o.Students {
		if s.Number == number {
			return s.Status, true
		}
	}
	return None, false
}

// OrderInput identifies one (student, book) pair.
type OrderInput struct {
	StudentNumber string
	BookISBN      string
}

// StatusFieldInput sets or clears one status flag.
type StatusFieldInput struct {
	StudentNumber string
	BookISBN      string
	Field         Field
	Checked       bool
}

// Result is the outcome of a mutation. Business-rule failures are reported
// here with Success=false and Err set to one of the package sentinels;
// Student and Book are filled as far as they were resolved.
type Result struct {
	Success bool
	Message string
	Student *Student
	Book    *Book
	Err     error
}
