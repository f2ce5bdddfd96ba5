// Package sheets defines the GridClient contract for the remote tabular store
// and ships two implementations: GoogleClient (Sheets API v4) and
// MemoryClient (in-process, used by tests and offline runs).
package sheets

import (
	"context"
	"errors"
	"fmt"

	"github.com/unkn0wn-root/sheetcache/grid"
)

// ValueInputMode controls how written strings are interpreted by the store.
type ValueInputMode int

const (
	// UserEntered parses values as if typed into the UI (numbers, dates, formulas).
	UserEntered ValueInputMode = iota
	// Raw stores values verbatim.
	Raw
)

func (m ValueInputMode) String() string {
	if m == Raw {
		return "RAW"
	}
	return "USER_ENTERED"
}

// GridClient is the minimal surface the rest of the module needs from the store.
// Range specs use <sheet>!<col><row>:<col><row> with 1-based rows and
// letter-encoded columns (see grid.Range).
type GridClient interface {
	ReadRange(ctx context.Context, rng string) (grid.Grid, error)
	ReadRanges(ctx context.Context, rngs []string) ([]grid.Grid, error)
	WriteRange(ctx context.Context, rng string, values grid.Grid, mode ValueInputMode) error
	AppendRows(ctx context.Context, rng string, rows grid.Grid) error
}

// ErrMissingConfig marks required configuration that is absent. It is returned
// before any network call and must not be retried.
var ErrMissingConfig = errors.New("sheets: missing required configuration")

func missing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingConfig, field)
}
