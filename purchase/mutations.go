package purchase

import (
	"context"
	"fmt"
	"strings"

	"github.com/unkn0wn-root/sheetcache"
	"github.com/unkn0wn-root/sheetcache/grid"
	"github.com/unkn0wn-root/sheetcache/sheets"
)

// target is a resolved (student, book) pair with their positions.
type target struct {
	student      Student
	book         Book
	studentIndex int
	bookIndex    int
}

// resolve trims the input and looks both identities up in the cached
// roster and catalog. A non-nil Result means a business-rule failure.
func (r *Repository) resolve(ctx context.Context, number, isbn string) (*target, *Result, error) {
	number, isbn = strings.TrimSpace(number), strings.TrimSpace(isbn)
	if number == "" || isbn == "" {
		res := failure(ErrMissingInput, nil, nil)
		return nil, &res, nil
	}

	students, err := r.students(ctx)
	if err != nil {
		return nil, nil, err
	}
	books, err := r.books(ctx)
	if err != nil {
		return nil, nil, err
	}

	si := findStudent(students, number)
	if si < 0 {
		res := failure(ErrStudentNotFound, nil, nil)
		return nil, &res, nil
	}
	bi := findBook(books, isbn)
	if bi < 0 {
		st := students[si]
		res := failure(ErrBookNotFound, &st, nil)
		return nil, &res, nil
	}
	return &target{student: students[si], book: books[bi], studentIndex: si, bookIndex: bi}, nil, nil
}

// commit performs the single write of a mutation and bumps the orders watch
// key once the store acknowledged it.
func (r *Repository) commit(ctx context.Context, rng string, values grid.Grid) error {
	if err := r.client.WriteRange(ctx, rng, values, sheets.Raw); err != nil {
		return fmt.Errorf("write %s: %w", rng, err)
	}
	if err := r.svc.Bump(ctx, WatchOrders); err != nil {
		// The write is durable; readers catch up when the orders TTL expires.
		r.log.Error("orders invalidation failed after write", sheetcache.Fields{"range": rng, "err": err})
	}
	return nil
}

// RegisterOrder marks the ordered flag for the student and book.
func (r *Repository) RegisterOrder(ctx context.Context, in OrderInput) (Result, error) {
	t, res, err := r.resolve(ctx, in.StudentNumber, in.BookISBN)
	if err != nil || res != nil {
		return r.outcome("register", res, err)
	}

	rng := r.place.statusCell(t.bookIndex, t.studentIndex, FieldOrdered)
	if err := r.commit(ctx, rng, grid.Grid{{marker}}); err != nil {
		return Result{}, err
	}
	return r.succeeded("register", t, fmt.Sprintf("已登記 %s 訂購 「%s」", t.student.Name, t.book.Name))
}

// UnregisterOrder clears all three flags. It is refused when the order is
// paid, delivered or no longer pre-ordering, judged on the cached orders view.
func (r *Repository) UnregisterOrder(ctx context.Context, in OrderInput) (Result, error) {
	t, res, err := r.resolve(ctx, in.StudentNumber, in.BookISBN)
	if err != nil || res != nil {
		return r.outcome("unregister", res, err)
	}

	orders, err := r.orders(ctx)
	if err != nil {
		return Result{}, err
	}
	var order *Order
	for i := range orders {
		if orders[i].Book.ISBN == t.book.ISBN {
			order = &orders[i]
			break
		}
	}
	if order == nil {
		return r.refused("unregister", ErrOrderNotFound, t)
	}
	state, ok := order.StudentStatus(t.student.Number)
	switch {
	case !ok || state == None:
		return r.refused("unregister", ErrNoOrderRecord, t)
	case state.Has(Paid):
		return r.refused("unregister", ErrAlreadyPaid, t)
	case state.Has(Delivered):
		return r.refused("unregister", ErrAlreadyDelivered, t)
	case order.Status != PreOrdering:
		return r.refused("unregister", ErrNotPreOrdering, t)
	}

	rng := r.place.statusRow(t.bookIndex, t.studentIndex)
	if err := r.commit(ctx, rng, grid.Grid{{"", "", ""}}); err != nil {
		return Result{}, err
	}
	return r.succeeded("unregister", t, fmt.Sprintf("已取消 %s 訂購「%s」", t.student.Name, t.book.Name))
}

// UpdateOrderStatusField sets or clears a single flag without guards.
func (r *Repository) UpdateOrderStatusField(ctx context.Context, in StatusFieldInput) (Result, error) {
	if !in.Field.valid() {
		return r.outcome("update status", &Result{Message: failureMessages[ErrInvalidField], Err: ErrInvalidField}, nil)
	}
	t, res, err := r.resolve(ctx, in.StudentNumber, in.BookISBN)
	if err != nil || res != nil {
		return r.outcome("update status", res, err)
	}

	value := ""
	if in.Checked {
		value = marker
	}
	rng := r.place.statusCell(t.bookIndex, t.studentIndex, in.Field)
	if err := r.commit(ctx, rng, grid.Grid{{value}}); err != nil {
		return Result{}, err
	}
	return r.succeeded("update status", t,
		fmt.Sprintf("已更新 %s「%s」的%s狀態", t.student.Name, t.book.Name, in.Field.Label()))
}

func (r *Repository) outcome(op string, res *Result, err error) (Result, error) {
	if err != nil {
		return Result{}, err
	}
	r.log.Info(op+" refused", sheetcache.Fields{"reason": res.Err.Error()})
	return *res, nil
}

func (r *Repository) refused(op string, reason error, t *target) (Result, error) {
	st, b := t.student, t.book
	r.log.Info(op+" refused", sheetcache.Fields{
		"reason":  reason.Error(),
		"student": st.Number,
		"isbn":    b.ISBN,
	})
	return failure(reason, &st, &b), nil
}

func (r *Repository) succeeded(op string, t *target, msg string) (Result, error) {
	st, b := t.student, t.book
	r.log.Info(op+" succeeded", sheetcache.Fields{"student": st.Number, "isbn": b.ISBN})
	return Result{Success: true, Message: msg, Student: &st, Book: &b}, nil
}
