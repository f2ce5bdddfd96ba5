package purchase

import (
	"fmt"
	"strings"
)

// Field is one of the three status flags a book column group carries.
// Its value is the column offset inside the group.
type Field int

const (
	FieldOrdered Field = iota
	FieldPaid
	FieldDelivered
)

var fieldNames = [...]string{"ordered", "paid", "delivered"}

// ParseField accepts "ordered", "paid" or "delivered" (case-insensitive).
func ParseField(s string) (Field, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range fieldNames {
		if n == s {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidField, s)
}

func (f Field) valid() bool { return f >= FieldOrdered && f <= FieldDelivered }

func (f Field) String() string {
	if !f.valid() {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// State is the bit f controls.
func (f Field) State() State {
	switch f {
	case FieldOrdered:
		return Ordered
	case FieldPaid:
		return Paid
	case FieldDelivered:
		return Delivered
	}
	return None
}

// Label is the localized name used in result messages.
func (f Field) Label() string {
	switch f {
	case FieldOrdered:
		return "已訂購"
	case FieldPaid:
		return "已付款"
	case FieldDelivered:
		return "已交付"
	}
	return f.String()
}
