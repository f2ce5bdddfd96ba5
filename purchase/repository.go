package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/sheetcache"
	"github.com/unkn0wn-root/sheetcache/codec"
	"github.com/unkn0wn-root/sheetcache/grid"
	"github.com/unkn0wn-root/sheetcache/sheets"
)

// Watch keys bumped after writes and by NotifyEdited.
const (
	WatchBooks    = "sheets:books"
	WatchStudents = "sheets:students"
	WatchOrders   = "sheets:orders"
)

// Cache keys registered on the service.
const (
	KeyBooks     = "books"
	KeyStudents  = "students"
	KeyOrderGrid = "orderGrid"
	KeyOrders    = "orders"
)

// maxMirrorPayload bounds what is decoded back from a shared mirror.
const maxMirrorPayload = 8 << 20

type Options struct {
	Layout      Layout        // zero => DefaultLayout()
	BooksTTL    time.Duration // 0 => 30m
	StudentsTTL time.Duration // 0 => 30m
	OrdersTTL   time.Duration // 0 => 2m
	MaxStale    time.Duration // 0 => service default
	Logger      sheetcache.Logger
	Clock       func() time.Time
}

// Repository reads entities through cached loaders and writes mutations to
// the order sheet. Audit rows go to a separate spreadsheet.
type Repository struct {
	client sheets.GridClient
	audit  sheets.GridClient
	svc    *sheetcache.Service
	place  placement
	log    sheetcache.Logger
	now    func() time.Time

	books     sheetcache.Loader[[]Book]
	students  sheetcache.Loader[[]Student]
	orderGrid sheetcache.Loader[grid.Grid]
	orders    sheetcache.Loader[[]Order]
}

// New registers the repository's loaders on svc; svc must not already hold
// the same cache keys. audit may be nil to disable the audit log.
func New(client, audit sheets.GridClient, svc *sheetcache.Service, opts Options) (*Repository, error) {
	if client == nil {
		return nil, fmt.Errorf("purchase: grid client is required")
	}
	if svc == nil {
		return nil, fmt.Errorf("purchase: cache service is required")
	}
	layout := opts.Layout
	if layout.OrdersSheet == "" {
		layout = DefaultLayout()
	}
	place, err := layout.resolve()
	if err != nil {
		return nil, err
	}

	r := &Repository{
		client: client,
		audit:  audit,
		svc:    svc,
		place:  place,
		log:    opts.Logger,
		now:    opts.Clock,
	}
	if r.log == nil {
		r.log = sheetcache.NopLogger{}
	}
	if r.now == nil {
		r.now = time.Now
	}

	booksTTL := durationOr(opts.BooksTTL, 30*time.Minute)
	studentsTTL := durationOr(opts.StudentsTTL, 30*time.Minute)
	ordersTTL := durationOr(opts.OrdersTTL, 2*time.Minute)

	r.books = sheetcache.Wrap(svc, KeyBooks, r.fetchBooks, sheetcache.Options[[]Book]{
		TTL:          booksTTL,
		StaleIfError: true,
		WatchKeys:    []string{WatchBooks},
		MaxStale:     opts.MaxStale,
		Codec:        codec.LimitCodec[[]Book]{Inner: codec.Msgpack[[]Book]{}, MaxDecode: maxMirrorPayload},
	})
	r.students = sheetcache.Wrap(svc, KeyStudents, r.fetchStudents, sheetcache.Options[[]Student]{
		TTL:          studentsTTL,
		StaleIfError: true,
		WatchKeys:    []string{WatchStudents},
		MaxStale:     opts.MaxStale,
		Codec:        codec.MustCBOR[[]Student](false),
	})
	r.orderGrid = sheetcache.Wrap(svc, KeyOrderGrid, r.fetchOrderGrid, sheetcache.Options[grid.Grid]{
		TTL:          ordersTTL,
		StaleIfError: true,
		WatchKeys:    []string{WatchOrders},
		MaxStale:     opts.MaxStale,
		Codec:        codec.GridProto{},
	})
	r.orders = sheetcache.Wrap(svc, KeyOrders, r.assembleOrders, sheetcache.Options[[]Order]{
		TTL:          ordersTTL,
		StaleIfError: true,
		WatchKeys:    []string{WatchBooks, WatchStudents, WatchOrders},
		MaxStale:     opts.MaxStale,
		Codec:        codec.JSON[[]Order]{},
	})
	return r, nil
}

func durationOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// ListBooks returns the catalog in sheet order. The slice is shared with the
// cache and must not be modified.
func (r *Repository) ListBooks(ctx context.Context) ([]Book, error) { return r.books(ctx) }

// ListStudents returns the roster in sheet order (shared, read-only).
func (r *Repository) ListStudents(ctx context.Context) ([]Student, error) { return r.students(ctx) }

// ListOrders returns one Order per catalog book that has a status label
// (shared, read-only).
func (r *Repository) ListOrders(ctx context.Context) ([]Order, error) { return r.orders(ctx) }

// FindOrdersByStudent returns the orders in which number has any flag set.
func (r *Repository) FindOrdersByStudent(ctx context.Context, number string) ([]Order, error) {
	orders, err := r.orders(ctx)
	if err != nil {
		return nil, err
	}
	var out []Order
	for _, o := range orders {
		if st, ok := o.StudentStatus(number); ok && st != None {
			out = append(out, o)
		}
	}
	return out, nil
}

// EditTarget names a group of sheets edited outside the application.
type EditTarget string

const (
	EditBooks    EditTarget = "books"
	EditStudents EditTarget = "students"
	EditOrders   EditTarget = "orders"
	EditAll      EditTarget = "all"
)

var watchByTarget = map[EditTarget]string{
	EditBooks:    WatchBooks,
	EditStudents: WatchStudents,
	EditOrders:   WatchOrders,
}

// ParseEditTarget accepts books, students, orders or all.
func ParseEditTarget(s string) (EditTarget, error) {
	t := EditTarget(s)
	if _, ok := watchByTarget[t]; ok || t == EditAll {
		return t, nil
	}
	return "", fmt.Errorf("purchase: unknown edit target %q", s)
}

// NotifyEdited invalidates the views derived from targets. No targets or
// EditAll invalidates everything.
func (r *Repository) NotifyEdited(ctx context.Context, targets ...EditTarget) error {
	keys := make([]string, 0, len(watchByTarget))
	all := len(targets) == 0
	for _, t := range targets {
		if t == EditAll {
			all = true
			break
		}
		k, ok := watchByTarget[t]
		if !ok {
			return fmt.Errorf("purchase: unknown edit target %q", t)
		}
		keys = append(keys, k)
	}
	if all {
		keys = []string{WatchBooks, WatchStudents, WatchOrders}
	}
	r.log.Info("sheets edited", sheetcache.Fields{"watchKeys": keys})
	return r.svc.Bump(ctx, keys...)
}

func (r *Repository) fetchBooks(ctx context.Context) ([]Book, error) {
	g, err := r.client.ReadRange(ctx, r.place.booksRange())
	if err != nil {
		return nil, fmt.Errorf("read books: %w", err)
	}
	books, dups := DecodeBooks(g)
	if len(dups) > 0 {
		r.log.Warn("duplicate isbn in catalog; first match wins", sheetcache.Fields{"isbn": dups})
	}
	r.log.Debug("books loaded", sheetcache.Fields{"count": len(books)})
	return books, nil
}

func (r *Repository) fetchStudents(ctx context.Context) ([]Student, error) {
	blocks, err := r.client.ReadRanges(ctx, r.place.rosterRanges())
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var rows grid.Grid
	for _, b := range blocks {
		rows = append(rows, b...)
	}
	students, dups := DecodeStudents(rows)
	if len(dups) > 0 {
		r.log.Warn("duplicate student number in roster; first match wins", sheetcache.Fields{"number": dups})
	}
	r.log.Debug("students loaded", sheetcache.Fields{"count": len(students)})
	return students, nil
}

func (r *Repository) fetchOrderGrid(ctx context.Context) (grid.Grid, error) {
	g, err := r.client.ReadRange(ctx, r.place.orderGridRange())
	if err != nil {
		return nil, fmt.Errorf("read order grid: %w", err)
	}
	return g, nil
}

func (r *Repository) assembleOrders(ctx context.Context) ([]Order, error) {
	books, err := r.books(ctx)
	if err != nil {
		return nil, err
	}
	students, err := r.students(ctx)
	if err != nil {
		return nil, err
	}
	g, err := r.orderGrid(ctx)
	if err != nil {
		return nil, err
	}
	return DecodeOrders(books, students, g, r.place.dataRowOffset()), nil
}
