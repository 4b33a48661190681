// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for decoding JSON request bodies and
// turning query strings into analytics parameters.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// defaultMonths is the ByMonth window when ?months= is absent.
const defaultMonths = 6

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// decodeJSON reads one JSON object into v, rejecting unknown fields and
// trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return badRequest("read body: %v", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return badRequest("empty body")
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON: %v", err)
	}
	if dec.More() {
		return badRequest("unexpected data after JSON object")
	}
	return nil
}

// Amount accepts either a JSON number or a decimal string ("12.50" or
// "12,50") and keeps it as text so it is converted to cents exactly.
type Amount string

func (a *Amount) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a number or a decimal string")
	}
	*a = Amount(n.String())
	return nil
}

func (a Amount) money() (core.Money, error) {
	cents, err := core.ParseDecimalToCents(string(a))
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// ExpenseRequest is the body of POST /api/expenses and PUT
// /api/expenses/{id}. An empty date means today.
type ExpenseRequest struct {
	Date               string   `json:"date"`
	Amount             Amount   `json:"amount"`
	Category           string   `json:"category"`
	Note               string   `json:"note"`
	Tags               []string `json:"tags"`
	IsRecurring        bool     `json:"isRecurring"`
	RecurringFrequency string   `json:"recurringFrequency"`
}

// IncomeRequest is the body of POST /api/incomes and PUT /api/incomes/{id}.
// An empty date means today.
type IncomeRequest struct {
	Date               string   `json:"date"`
	Amount             Amount   `json:"amount"`
	Source             string   `json:"source"`
	Description        string   `json:"description"`
	Tags               []string `json:"tags"`
	IsRecurring        bool     `json:"isRecurring"`
	RecurringFrequency string   `json:"recurringFrequency"`
}

// ForecastRequest is the body of POST /api/analytics/forecast.
type ForecastRequest struct {
	Months           int      `json:"months"`
	IncludeRecurring bool     `json:"includeRecurring"`
	SavingsGoal      *float64 `json:"savingsGoal"`
}

func (req ExpenseRequest) toExpense(now time.Time) (core.Expense, error) {
	date, err := requestDate(req.Date, now)
	if err != nil {
		return core.Expense{}, err
	}
	amount, err := req.Amount.money()
	if err != nil {
		return core.Expense{}, err
	}
	freq, err := core.ParseFrequency(req.RecurringFrequency)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		Date:               date,
		Amount:             amount,
		Category:           sanitizeInput(req.Category),
		Note:               sanitizeInput(req.Note),
		Tags:               sanitizeTags(req.Tags),
		IsRecurring:        req.IsRecurring,
		RecurringFrequency: freq,
	}, nil
}

func (req IncomeRequest) toIncome(now time.Time) (core.Income, error) {
	date, err := requestDate(req.Date, now)
	if err != nil {
		return core.Income{}, err
	}
	amount, err := req.Amount.money()
	if err != nil {
		return core.Income{}, err
	}
	freq, err := core.ParseFrequency(req.RecurringFrequency)
	if err != nil {
		return core.Income{}, err
	}
	return core.Income{
		Date:               date,
		Amount:             amount,
		Source:             sanitizeInput(req.Source),
		Description:        sanitizeInput(req.Description),
		Tags:               sanitizeTags(req.Tags),
		IsRecurring:        req.IsRecurring,
		RecurringFrequency: freq,
	}, nil
}

func (req ForecastRequest) params() (analytics.ForecastParams, error) {
	if req.Months > analytics.MaxForecastMonths {
		return analytics.ForecastParams{}, badRequest("months must be at most %d", analytics.MaxForecastMonths)
	}
	if req.SavingsGoal != nil && *req.SavingsGoal < 0 {
		return analytics.ForecastParams{}, badRequest("savingsGoal must not be negative")
	}
	return analytics.ForecastParams{
		Months:           req.Months,
		IncludeRecurring: req.IncludeRecurring,
		SavingsGoal:      req.SavingsGoal,
	}, nil
}

func requestDate(raw string, now time.Time) (core.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return core.NewDate(now.Year(), int(now.Month()), now.Day()), nil
	}
	return core.ParseDate(raw)
}

// parseFilter reads the /api/transactions query string.
func parseFilter(q url.Values) (analytics.Period, analytics.FilterParams, error) {
	var p analytics.FilterParams

	period, err := analytics.ParsePeriod(q.Get("period"))
	if err != nil {
		return "", p, err
	}
	if p.Type, err = core.ParseTransactionType(q.Get("type")); err != nil {
		return "", p, err
	}
	if p.Start, err = queryTime(q, "start"); err != nil {
		return "", p, err
	}
	if p.End, err = queryTime(q, "end"); err != nil {
		return "", p, err
	}
	if p.MinAmount, err = queryFloat(q, "min"); err != nil {
		return "", p, err
	}
	if p.MaxAmount, err = queryFloat(q, "max"); err != nil {
		return "", p, err
	}
	if p.MinAmount != nil && p.MaxAmount != nil && *p.MinAmount > *p.MaxAmount {
		return "", p, badRequest("min must not exceed max")
	}

	p.Category = sanitizeInput(q.Get("category"))
	p.Search = sanitizeInput(q.Get("q"))
	if raw := q.Get("tags"); raw != "" {
		p.Tags = sanitizeTags(strings.Split(raw, ","))
	}
	return period, p, nil
}

func queryTime(q url.Values, key string) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return nil, badRequest("%s must be a date (YYYY-MM-DD)", key)
	}
	t := d.Time
	return &t, nil
}

// parseDateRange reads the optional startDate and endDate of the spending
// patterns query. Absent values are zero dates.
func parseDateRange(q url.Values) (start, end core.Date, err error) {
	for _, f := range []struct {
		key string
		dst *core.Date
	}{{"startDate", &start}, {"endDate", &end}} {
		t, err := queryTime(q, f.key)
		if err != nil {
			return core.Date{}, core.Date{}, err
		}
		if t != nil {
			*f.dst = core.Date{Time: *t}
		}
	}
	return start, end, nil
}

func queryFloat(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return nil, badRequest("%s must be a number", key)
	}
	return &f, nil
}

// pathID reads the {id} wildcard of a record route.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("id must be a positive integer")
	}
	return id, nil
}

// queryInt parses an optional integer within [lo, hi].
func queryInt(q url.Values, key string, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, badRequest("%s must be an integer between %d and %d", key, lo, hi)
	}
	return n, nil
}
