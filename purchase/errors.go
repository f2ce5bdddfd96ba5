package purchase

import "errors"

// Business-rule failures. They travel in Result.Err, never as the returned error.
var (
	ErrMissingInput     = errors.New("purchase: student number and isbn are required")
	ErrStudentNotFound  = errors.New("purchase: student not found")
	ErrBookNotFound     = errors.New("purchase: book not found")
	ErrOrderNotFound    = errors.New("purchase: order not found")
	ErrNoOrderRecord    = errors.New("purchase: student has not ordered this book")
	ErrAlreadyPaid      = errors.New("purchase: order already paid")
	ErrAlreadyDelivered = errors.New("purchase: order already delivered")
	ErrNotPreOrdering   = errors.New("purchase: order is not in pre-ordering")
	ErrInvalidField     = errors.New("purchase: invalid status field")
)

var failureMessages = map[error]string{
	ErrMissingInput:     "學號與 ISBN 為必填",
	ErrStudentNotFound:  "查無此學號，請確認後再試",
	ErrBookNotFound:     "查無此書籍 ISBN，請重新選擇",
	ErrOrderNotFound:    "查無此訂單資料",
	ErrNoOrderRecord:    "目前沒有此書的訂購紀錄",
	ErrAlreadyPaid:      "此訂單已收款，無法直接刪除",
	ErrAlreadyDelivered: "此訂單已交付，無法直接刪除",
	ErrNotPreOrdering:   "目前非預購中，無法刪除",
	ErrInvalidField:     "無效的狀態欄位",
}

func failure(err error, st *Student, b *Book) Result {
	return Result{Message: failureMessages[err], Student: st, Book: b, Err: err}
}
