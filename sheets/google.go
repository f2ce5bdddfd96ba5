package sheets

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/unkn0wn-root/sheetcache/grid"
)

// Config configures a GoogleClient. SpreadsheetID is always required;
// ClientEmail and PrivateKey are required unless HTTPClient is supplied.
type Config struct {
	SpreadsheetID string
	ClientEmail   string
	// PrivateKey is the PEM service-account key. Literal "\n" sequences (as
	// found in env vars) are unescaped.
	PrivateKey string

	RequestsPerSecond float64 // 0 => unlimited
	Burst             int     // 0 => 1

	HTTPClient *http.Client // optional; bypasses service-account auth
	Endpoint   string       // optional API endpoint override
}

// Validate reports the first missing required field.
func (c Config) Validate() error {
	if strings.TrimSpace(c.SpreadsheetID) == "" {
		return missing("spreadsheet id")
	}
	if c.HTTPClient != nil {
		return nil
	}
	if strings.TrimSpace(c.ClientEmail) == "" {
		return missing("client email")
	}
	if strings.TrimSpace(c.PrivateKey) == "" {
		return missing("private key")
	}
	return nil
}

// GoogleClient talks to the Sheets v4 values API. All calls go through a
// shared rate limiter because the API quota is per project.
type GoogleClient struct {
	svc           *gsheets.Service
	spreadsheetID string
	limiter       *rate.Limiter
}

var _ GridClient = (*GoogleClient)(nil)

// NewGoogleClient validates cfg and builds an authorized client. The token
// source outlives ctx; only the initial construction honours cancellation.
func NewGoogleClient(ctx context.Context, cfg Config) (*GoogleClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []option.ClientOption
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	} else {
		jc := &jwt.Config{
			Email:      cfg.ClientEmail,
			PrivateKey: []byte(strings.ReplaceAll(cfg.PrivateKey, `\n`, "\n")),
			Scopes:     []string{gsheets.SpreadsheetsScope},
			TokenURL:   google.JWTTokenURL,
		}
		opts = append(opts, option.WithHTTPClient(jc.Client(context.WithoutCancel(ctx))))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &GoogleClient{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		limiter:       rate.NewLimiter(limit, burst),
	}, nil
}

// WithSpreadsheet returns a client bound to another spreadsheet that shares
// the same credentials and rate limiter (e.g. the audit-log spreadsheet).
func (c *GoogleClient) WithSpreadsheet(id string) *GoogleClient {
	cp := *c
	cp.spreadsheetID = id
	return &cp
}

func (c *GoogleClient) SpreadsheetID() string { return c.spreadsheetID }

func (c *GoogleClient) ReadRange(ctx context.Context, rng string) (grid.Grid, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: read %s: %w", rng, err)
	}
	return toGrid(resp.Values), nil
}

func (c *GoogleClient) ReadRanges(ctx context.Context, rngs []string) ([]grid.Grid, error) {
	if len(rngs) == 0 {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.svc.Spreadsheets.Values.BatchGet(c.spreadsheetID).Ranges(rngs...).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets: batch read %s: %w", strings.Join(rngs, ","), err)
	}
	out := make([]grid.Grid, len(rngs))
	for i, vr := range resp.ValueRanges {
		if i >= len(out) {
			break
		}
		out[i] = toGrid(vr.Values)
	}
	return out, nil
}

func (c *GoogleClient) WriteRange(ctx context.Context, rng string, values grid.Grid, mode ValueInputMode) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, rng, &gsheets.ValueRange{Values: fromGrid(values)}).
		ValueInputOption(mode.String()).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: write %s: %w", rng, err)
	}
	return nil
}

// AppendRows inserts rows after the last row of the table found at rng.
// Empty input is a no-op.
func (c *GoogleClient) AppendRows(ctx context.Context, rng string, rows grid.Grid) error {
	if len(rows) == 0 {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, rng, &gsheets.ValueRange{Values: fromGrid(rows)}).
		ValueInputOption(UserEntered.String()).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append %s: %w", rng, err)
	}
	return nil
}

func (c *GoogleClient) ClearRange(ctx context.Context, rng string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("sheets: clear %s: %w", rng, err)
	}
	return nil
}

func toGrid(values [][]interface{}) grid.Grid {
	out := make(grid.Grid, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			switch s := v.(type) {
			case string:
				cells[j] = s
			case nil:
			default:
				cells[j] = fmt.Sprint(s)
			}
		}
		out[i] = cells
	}
	return out
}

func fromGrid(g grid.Grid) [][]interface{} {
	out := make([][]interface{}, len(g))
	for i, row := range g {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		out[i] = cells
	}
	return out
}
