// Package google stores transactions in a Google Sheets spreadsheet, one tab
// per transaction kind.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/resilience"

	"github.com/sony/gobreaker"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	DefaultExpensesSheet = "Expenses"
	DefaultIncomesSheet  = "Incomes"

	valueInputOption = "USER_ENTERED"
	insertDataOption = "INSERT_ROWS"
)

var _ ledger.Ledger = (*Client)(nil)

// Config selects the spreadsheet and the credentials used to reach it.
// ServiceAccountJSON wins over ServiceAccountFile.
type Config struct {
	SpreadsheetID      string
	ExpensesSheet      string
	IncomesSheet       string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	expensesSheet string
	incomesSheet  string
	breaker       *gobreaker.CircuitBreaker
	retry         resilience.Config
}

// New builds a client authenticated with service-account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := credentials(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithOptions(ctx, cfg,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

// NewWithOptions builds a client from explicit API options.
func NewWithOptions(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	c := &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		expensesSheet: strings.TrimSpace(cfg.ExpensesSheet),
		incomesSheet:  strings.TrimSpace(cfg.IncomesSheet),
		breaker:       resilience.NewCircuitBreaker("google-sheets"),
		retry:         resilience.DefaultConfig(),
	}
	if c.expensesSheet == "" {
		c.expensesSheet = DefaultExpensesSheet
	}
	if c.incomesSheet == "" {
		c.incomesSheet = DefaultIncomesSheet
	}
	slog.InfoContext(ctx, "Google Sheets ledger ready",
		"spreadsheet_id", c.spreadsheetID,
		"expenses_sheet", c.expensesSheet,
		"incomes_sheet", c.incomesSheet)
	return c, nil
}

func credentials(ctx context.Context, cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.ServiceAccountJSON)
	file := strings.TrimSpace(cfg.ServiceAccountFile)
	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline service account credentials")
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.DebugContext(ctx, "Read service account credentials", "path", file, "size", len(b))
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// AppendExpense appends one row to the expenses tab and returns the updated
// A1 range.
func (c *Client) AppendExpense(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	return c.append(ctx, c.expensesSheet, ledger.ExpenseRow(e))
}

func (c *Client) AppendIncome(ctx context.Context, in core.Income) (string, error) {
	if err := in.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	return c.append(ctx, c.incomesSheet, ledger.IncomeRow(in))
}

func (c *Client) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := c.readRows(ctx, c.expensesSheet)
	if err != nil {
		return nil, err
	}
	out := make([]core.Expense, 0, len(rows))
	for i, r := range rows {
		e := r.Expense()
		e.ID = int64(i + 1)
		out = append(out, e)
	}
	return out, nil
}

func (c *Client) ListIncomes(ctx context.Context) ([]core.Income, error) {
	rows, err := c.readRows(ctx, c.incomesSheet)
	if err != nil {
		return nil, err
	}
	out := make([]core.Income, 0, len(rows))
	for i, r := range rows {
		in := r.Income()
		in.ID = int64(i + 1)
		out = append(out, in)
	}
	return out, nil
}

// Sheet rows carry no stable ID, so records cannot be edited in place.

func (c *Client) UpdateExpense(context.Context, core.Expense) error { return ledger.ErrUnsupported }
func (c *Client) DeleteExpense(context.Context, int64) error { return ledger.ErrUnsupported }
func (c *Client) UpdateIncome(context.Context, core.Income) error { return ledger.ErrUnsupported }
func (c *Client) DeleteIncome(context.Context, int64) error { return ledger.ErrUnsupported }

func (c *Client) append(ctx context.Context, sheet string, cols []string) (string, error) {
	values := make([]any, len(cols))
	for i, v := range cols {
		values[i] = v
	}
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	rng := fmt.Sprintf("%s!A:G", sheet)

	// Appends are not idempotent, so they go through the breaker only.
	resp, err := resilience.Execute(c.breaker, func() (*gsheet.AppendValuesResponse, error) {
		return c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
			ValueInputOption(valueInputOption).
			InsertDataOption(insertDataOption).
			Context(ctx).Do()
	})
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", sheet, err)
	}
	if resp == nil || resp.Updates == nil {
		return rng, nil
	}
	return resp.Updates.UpdatedRange, nil
}

func (c *Client) readRows(ctx context.Context, sheet string) ([]ledger.Row, error) {
	rng := fmt.Sprintf("%s!A:G", sheet)
	var resp *gsheet.ValueRange
	err := resilience.RetryWithBackoff(ctx, c.retry, func() error {
		var err error
		resp, err = resilience.Execute(c.breaker, func() (*gsheet.ValueRange, error) {
			return c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
		})
		return classify(err)
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	if resp == nil {
		return nil, nil
	}

	out := make([]ledger.Row, 0, len(resp.Values))
	for i, raw := range resp.Values {
		cols := toStrings(raw)
		if len(cols) == 0 || ledger.IsHeader(cols) {
			continue
		}
		row, err := ledger.ParseRow(cols)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed sheet row",
				"sheet", sheet, "row", i+1, "error", err)
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// classify marks client errors other than throttling as permanent.
func classify(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != 429 {
		return fmt.Errorf("%w: %w", resilience.ErrPermanent, err)
	}
	return err
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
