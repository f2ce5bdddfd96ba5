package purchase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/sheetcache"
	"github.com/unkn0wn-root/sheetcache/grid"
	"github.com/unkn0wn-root/sheetcache/sheets"
)

func TestListViewsAreCached(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, map[string]string{"D5": "O", "G6": "O", "H6": "O"})

	books, err := e.repo.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 3)

	students, err := e.repo.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 3)
	assert.Equal(t, "王小明", students[0].Name)

	orders, err := e.repo.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, Ordered, orders[0].Students[0].Status)
	assert.Equal(t, Ordered|Paid, orders[1].Students[1].Status)
	assert.Equal(t, 1, orders[1].TotalOrdered)
	assert.Equal(t, StatusOrdered, orders[2].Status)

	reads := e.client.Reads()
	_, err = e.repo.ListOrders(ctx)
	require.NoError(t, err)
	_, err = e.repo.ListBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, reads, e.client.Reads(), "fresh views must not hit the store")
}

func TestFindOrdersByStudent(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, map[string]string{"D5": "O", "L5": "O"})

	orders, err := e.repo.FindOrdersByStudent(ctx, "S001")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "111", orders[0].Book.ISBN)
	assert.Equal(t, "333", orders[1].Book.ISBN, "delivered-only still counts as a relationship")

	orders, err = e.repo.FindOrdersByStudent(ctx, "S003")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestRegisterThenUnregister(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	res, err := e.repo.RegisterOrder(ctx, OrderInput{StudentNumber: " S002 ", BookISBN: "222"})
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "已登記 李小華 訂購 「English Reader」", res.Message)
	require.NotNil(t, res.Student)
	assert.Equal(t, "S002", res.Student.Number)
	assert.Equal(t, "222", res.Book.ISBN)

	writes := e.client.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, "1-2 訂書!G6", writes[0].Range)
	assert.Equal(t, grid.Grid{{"O"}}, writes[0].Values)
	assert.Equal(t, sheets.Raw, writes[0].Mode)
	assert.Equal(t, uint64(1), e.ordersEpoch(t))

	orders, err := e.repo.FindOrdersByStudent(ctx, "S002")
	require.NoError(t, err)
	require.Len(t, orders, 1, "the bump must make the write visible immediately")

	res, err = e.repo.UnregisterOrder(ctx, OrderInput{StudentNumber: "S002", BookISBN: "222"})
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "已取消 李小華 訂購「English Reader」", res.Message)

	writes = e.client.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, "1-2 訂書!G6:I6", writes[1].Range)
	assert.Equal(t, grid.Grid{{"", "", ""}}, writes[1].Values)
	assert.Equal(t, uint64(2), e.ordersEpoch(t))

	orders, err = e.repo.FindOrdersByStudent(ctx, "S002")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestUnregisterGuards(t *testing.T) {
	cases := []struct {
		name  string
		cells map[string]string
		in    OrderInput
		want  error
	}{
		{"paid", map[string]string{"D5": "O", "E5": "O"}, OrderInput{"S001", "111"}, ErrAlreadyPaid},
		{"delivered", map[string]string{"D5": "O", "F5": "O"}, OrderInput{"S001", "111"}, ErrAlreadyDelivered},
		{"paid before delivered", map[string]string{"E5": "O", "F5": "O"}, OrderInput{"S001", "111"}, ErrAlreadyPaid},
		{"not pre-ordering", map[string]string{"J5": "O"}, OrderInput{"S001", "333"}, ErrNotPreOrdering},
		{"no record", nil, OrderInput{"S001", "111"}, ErrNoOrderRecord},
		{"order not found", map[string]string{"G3": ""}, OrderInput{"S001", "222"}, ErrOrderNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			e := newEnv(t, tc.cells)

			res, err := e.repo.UnregisterOrder(ctx, tc.in)
			require.NoError(t, err)
			assert.False(t, res.Success)
			assert.ErrorIs(t, res.Err, tc.want)
			assert.Equal(t, failureMessages[tc.want], res.Message)
			require.NotNil(t, res.Student)
			require.NotNil(t, res.Book)
			assert.Empty(t, e.client.Writes(), "no write on refusal")
			assert.Zero(t, e.ordersEpoch(t), "no invalidation on refusal")
		})
	}
}

func TestIdentityFailures(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	res, err := e.repo.RegisterOrder(ctx, OrderInput{StudentNumber: "  ", BookISBN: "111"})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, ErrMissingInput)
	assert.Equal(t, "學號與 ISBN 為必填", res.Message)

	res, err = e.repo.RegisterOrder(ctx, OrderInput{StudentNumber: "S999", BookISBN: "111"})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, ErrStudentNotFound)
	assert.Nil(t, res.Student)

	res, err = e.repo.UnregisterOrder(ctx, OrderInput{StudentNumber: "S001", BookISBN: "999"})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, ErrBookNotFound)
	assert.Equal(t, "查無此書籍 ISBN，請重新選擇", res.Message)
	require.NotNil(t, res.Student)
	assert.Nil(t, res.Book)

	res, err = e.repo.UpdateOrderStatusField(ctx, StatusFieldInput{StudentNumber: "S001", BookISBN: "111", Field: Field(7)})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, ErrInvalidField)

	assert.Empty(t, e.client.Writes())
}

func TestUpdateOrderStatusField(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, map[string]string{"D5": "O", "E5": "O"})

	res, err := e.repo.UpdateOrderStatusField(ctx, StatusFieldInput{
		StudentNumber: "S001", BookISBN: "111", Field: FieldPaid, Checked: false,
	})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "已更新 王小明「國文講義」的已付款狀態", res.Message)

	res, err = e.repo.UpdateOrderStatusField(ctx, StatusFieldInput{
		StudentNumber: "S003", BookISBN: "333", Field: FieldDelivered, Checked: true,
	})
	require.NoError(t, err)
	require.True(t, res.Success)

	writes := e.client.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, "1-2 訂書!E5", writes[0].Range)
	assert.Equal(t, grid.Grid{{""}}, writes[0].Values)
	assert.Equal(t, "1-2 訂書!L7", writes[1].Range)
	assert.Equal(t, grid.Grid{{"O"}}, writes[1].Values)

	orders, err := e.repo.ListOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, Ordered, orders[0].Students[0].Status)
	assert.Equal(t, Delivered, orders[2].Students[2].Status)
}

func TestWriteFailureLeavesCacheUntouched(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	boom := errors.New("quota exceeded")
	e.client.FailWrites(boom)

	_, err := e.repo.RegisterOrder(ctx, OrderInput{StudentNumber: "S001", BookISBN: "111"})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, e.ordersEpoch(t))
}

func TestReadFailureServesStaleViews(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, map[string]string{"D5": "O"})

	before, err := e.repo.ListOrders(ctx)
	require.NoError(t, err)

	e.client.FailReads(errors.New("503"))
	require.NoError(t, e.repo.NotifyEdited(ctx))

	after, err := e.repo.ListOrders(ctx)
	require.NoError(t, err, "stale-if-error must rescue the orders view")
	assert.Equal(t, before, after)
}

func TestReadFailureWithoutCacheIsFetchError(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	e.client.FailReads(errors.New("503"))

	_, err := e.repo.ListBooks(ctx)
	var fe *sheetcache.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KeyBooks, fe.Key)

	_, err = e.repo.RegisterOrder(ctx, OrderInput{StudentNumber: "S001", BookISBN: "111"})
	assert.Error(t, err)
}

func TestNotifyEdited(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)
	bus := e.svc.Bus()

	require.NoError(t, e.repo.NotifyEdited(ctx, EditBooks, EditBooks))
	ep, _ := bus.Epoch(ctx, WatchBooks)
	assert.Equal(t, uint64(1), ep)
	ep, _ = bus.Epoch(ctx, WatchOrders)
	assert.Zero(t, ep)

	require.NoError(t, e.repo.NotifyEdited(ctx, EditOrders, EditAll))
	sig, err := bus.Signature(ctx, []string{WatchBooks, WatchStudents, WatchOrders})
	require.NoError(t, err)
	assert.Equal(t, "sheets:books=2;sheets:orders=1;sheets:students=1", sig)

	assert.Error(t, e.repo.NotifyEdited(ctx, EditTarget("grades")))

	_, err = ParseEditTarget("all")
	assert.NoError(t, err)
	_, err = ParseEditTarget("grades")
	assert.Error(t, err)
}

func TestBooksEditRefreshesOrdersView(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	_, err := e.repo.ListOrders(ctx)
	require.NoError(t, err)

	g := booksSheet()
	g[1][1] = "國文講義（新版）"
	e.client.SetSheet(DefaultLayout().BooksSheet, g)
	require.NoError(t, e.repo.NotifyEdited(ctx, EditBooks))

	orders, err := e.repo.ListOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, "國文講義（新版）", orders[0].Book.Name)
}

func TestNewValidates(t *testing.T) {
	svc, err := sheetcache.New(sheetcache.ServiceOptions{})
	require.NoError(t, err)

	_, err = New(nil, nil, svc, Options{})
	assert.Error(t, err)
	_, err = New(sheets.NewMemoryClient(), nil, nil, Options{})
	assert.Error(t, err)

	bad := DefaultLayout()
	bad.OrderGrid = "nonsense:"
	_, err = New(sheets.NewMemoryClient(), nil, svc, Options{Layout: bad})
	assert.Error(t, err)
}
