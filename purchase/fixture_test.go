package purchase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/sheetcache"
	"github.com/unkn0wn-root/sheetcache/grid"
	"github.com/unkn0wn-root/sheetcache/sheets"
)

var fixedNow = time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)

func booksSheet() grid.Grid {
	return grid.Grid{
		{"科目", "國文", "英文", "數學"},
		{"書名", "國文講義", "English Reader", "數學演習"},
		{"isbn", "111", "222", "333"},
		{"單購價", "350", "400", ""},
		{"團體價", "300", "", "250"},
		{"團體價最低訂購量", "10"},
		{"定價", "1,200", "450", "500"},
	}
}

// sheetWith builds a blank sheet and fills the given A1-style cells.
func sheetWith(t *testing.T, rows, cols int, cells map[string]string) grid.Grid {
	t.Helper()
	g := make(grid.Grid, rows)
	for i := range g {
		g[i] = make([]string, cols)
	}
	for ref, v := range cells {
		r, err := grid.ParseRange("S!" + ref)
		require.NoError(t, err)
		g[r.Start.Row-1][r.Start.Col] = v
	}
	return g
}

// ordersSheet has three students at rows 5-7 and three book groups
// starting at D, G and J. extra cells override the defaults.
func ordersSheet(t *testing.T, extra map[string]string) grid.Grid {
	cells := map[string]string{
		"A4": "座號", "B4": "學號", "C4": "姓名",
		"A5": "1", "B5": "S001", "C5": "王小明*",
		"A6": "2", "B6": "S002", "C6": "李小華",
		"A7": "3", "B7": "S003", "C7": "陳大文",
		"D3": string(PreOrdering), "G3": string(PreOrdering), "J3": string(StatusOrdered),
		"D4": "訂", "E4": "收", "F4": "交",
	}
	for k, v := range extra {
		cells[k] = v
	}
	return sheetWith(t, 66, 27, cells)
}

type env struct {
	client *sheets.MemoryClient
	audit  *sheets.MemoryClient
	svc    *sheetcache.Service
	repo   *Repository
}

func newEnv(t *testing.T, orderCells map[string]string) *env {
	t.Helper()
	layout := DefaultLayout()

	client := sheets.NewMemoryClient()
	client.SetSheet(layout.BooksSheet, booksSheet())
	client.SetSheet(layout.OrdersSheet, ordersSheet(t, orderCells))

	audit := sheets.NewMemoryClient()

	svc, err := sheetcache.New(sheetcache.ServiceOptions{Namespace: "test"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close(context.Background()) })

	repo, err := New(client, audit, svc, Options{Clock: func() time.Time { return fixedNow }})
	require.NoError(t, err)
	return &env{client: client, audit: audit, svc: svc, repo: repo}
}

func (e *env) ordersEpoch(t *testing.T) uint64 {
	t.Helper()
	ep, err := e.svc.Bus().Epoch(context.Background(), WatchOrders)
	require.NoError(t, err)
	return ep
}
