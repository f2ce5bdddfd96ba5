package sheets

import (
	"context"
	"fmt"
	"sync"

	"github.com/unkn0wn-root/sheetcache/grid"
)

// Write records one mutation issued against a MemoryClient.
type Write struct {
	Range  string
	Values grid.Grid
	Mode   ValueInputMode
}

// MemoryClient is an in-process GridClient. Reads trim trailing empty cells
// and rows the way the Sheets API does. It is safe for concurrent use.
type MemoryClient struct {
	mu       sync.Mutex
	sheets   map[string]grid.Grid
	reads    int
	writes   []Write
	appends  []Write
	readErr  error
	writeErr error
	onRead   func(rng string)
}

var _ GridClient = (*MemoryClient)(nil)

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{sheets: make(map[string]grid.Grid)}
}

// SetSheet replaces the whole content of a sheet.
func (m *MemoryClient) SetSheet(name string, g grid.Grid) {
	m.mu.Lock()
	m.sheets[name] = g.Clone()
	m.mu.Unlock()
}

// Sheet returns a copy of the current sheet content.
func (m *MemoryClient) Sheet(name string) grid.Grid {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sheets[name].Clone()
}

// FailReads makes every subsequent read return err (nil restores reads).
func (m *MemoryClient) FailReads(err error) {
	m.mu.Lock()
	m.readErr = err
	m.mu.Unlock()
}

// FailWrites makes every subsequent write or append return err.
func (m *MemoryClient) FailWrites(err error) {
	m.mu.Lock()
	m.writeErr = err
	m.mu.Unlock()
}

// OnRead installs a callback invoked (outside the lock) before each read.
func (m *MemoryClient) OnRead(fn func(rng string)) {
	m.mu.Lock()
	m.onRead = fn
	m.mu.Unlock()
}

func (m *MemoryClient) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

func (m *MemoryClient) Writes() []Write {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Write(nil), m.writes...)
}

func (m *MemoryClient) Appends() []Write {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Write(nil), m.appends...)
}

func (m *MemoryClient) ReadRange(ctx context.Context, rng string) (grid.Grid, error) {
	gs, err := m.ReadRanges(ctx, []string{rng})
	if err != nil {
		return nil, err
	}
	return gs[0], nil
}

func (m *MemoryClient) ReadRanges(ctx context.Context, rngs []string) ([]grid.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	hook := m.onRead
	m.mu.Unlock()
	if hook != nil {
		for _, r := range rngs {
			hook(r)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.readErr != nil {
		return nil, m.readErr
	}
	out := make([]grid.Grid, len(rngs))
	for i, spec := range rngs {
		r, err := grid.ParseRange(spec)
		if err != nil {
			return nil, err
		}
		sheet, ok := m.sheets[r.Sheet]
		if !ok {
			return nil, fmt.Errorf("sheets: unable to parse range: %s", spec)
		}
		out[i] = extract(sheet, r)
	}
	return out, nil
}

func (m *MemoryClient) WriteRange(ctx context.Context, rng string, values grid.Grid, mode ValueInputMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r, err := grid.ParseRange(rng)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	row0, col0 := 0, 0
	if r.Start != nil {
		col0 = r.Start.Col
		if r.Start.Row > 0 {
			row0 = r.Start.Row - 1
		}
	}
	sheet := m.sheets[r.Sheet]
	for i, row := range values {
		for j, v := range row {
			sheet = setCell(sheet, row0+i, col0+j, v)
		}
	}
	m.sheets[r.Sheet] = sheet
	m.writes = append(m.writes, Write{Range: rng, Values: values.Clone(), Mode: mode})
	return nil
}

func (m *MemoryClient) AppendRows(ctx context.Context, rng string, rows grid.Grid) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	r, err := grid.ParseRange(rng)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.sheets[r.Sheet] = append(m.sheets[r.Sheet], rows.Clone()...)
	m.appends = append(m.appends, Write{Range: rng, Values: rows.Clone(), Mode: UserEntered})
	return nil
}

func setCell(g grid.Grid, row, col int, v string) grid.Grid {
	for len(g) <= row {
		g = append(g, nil)
	}
	for len(g[row]) <= col {
		g[row] = append(g[row], "")
	}
	g[row][col] = v
	return g
}

func extract(sheet grid.Grid, r grid.Range) grid.Grid {
	r0, c0, r1, c1 := r.Bounds(len(sheet), sheet.Width())
	var out grid.Grid
	for i := r0; i <= r1 && i < len(sheet); i++ {
		row := make([]string, 0, c1-c0+1)
		for j := c0; j <= c1; j++ {
			row = append(row, sheet.Cell(i, j))
		}
		out = append(out, trimRow(row))
	}
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out
}

func trimRow(row []string) []string {
	n := len(row)
	for n > 0 && row[n-1] == "" {
		n--
	}
	return row[:n]
}
