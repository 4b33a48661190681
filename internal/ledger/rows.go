package ledger

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

// Tabular backends store one record per row in this column order:
//
//	Date | Amount | Category or Source | Note or Description | Tags | Recurring | Frequency
var (
	ExpenseHeader = []string{"Date", "Amount", "Category", "Note", "Tags", "Recurring", "Frequency"}
	IncomeHeader  = []string{"Date", "Amount", "Source", "Description", "Tags", "Recurring", "Frequency"}
)

const minColumns = 3

var ErrShortRow = errors.New("row has too few columns")

// Row is the backend-neutral decoding of one tabular record.
type Row struct {
	Date      core.Date
	Amount    core.Money
	Label     string // category or source
	Text      string // note or description
	Tags      []string
	Recurring bool
	Frequency core.Frequency
}

// IsHeader reports whether cols looks like a header row.
func IsHeader(cols []string) bool {
	return len(cols) > 0 && strings.EqualFold(strings.TrimSpace(cols[0]), "date")
}

func ParseRow(cols []string) (Row, error) {
	if len(cols) < minColumns {
		return Row{}, ErrShortRow
	}
	get := func(i int) string {
		if i >= len(cols) {
			return ""
		}
		return strings.TrimSpace(cols[i])
	}

	date, err := core.ParseDate(get(0))
	if err != nil {
		return Row{}, err
	}
	cents, err := core.ParseDecimalToCents(normalizeAmount(get(1)))
	if err != nil {
		return Row{}, fmt.Errorf("amount %q: %w", get(1), err)
	}
	r := Row{
		Date:   date,
		Amount: core.Money{Cents: cents},
		Label:  get(2),
		Text:   get(3),
		Tags:   splitTags(get(4)),
	}
	if raw := get(5); raw != "" {
		if r.Recurring, err = strconv.ParseBool(raw); err != nil {
			return Row{}, fmt.Errorf("recurring %q: %w", raw, err)
		}
	}
	if r.Frequency, err = core.ParseFrequency(get(6)); err != nil {
		return Row{}, err
	}
	return r, nil
}

func (r Row) Expense() core.Expense {
	return core.Expense{
		Date:               r.Date,
		Amount:             r.Amount,
		Category:           r.Label,
		Note:               r.Text,
		Tags:               r.Tags,
		IsRecurring:        r.Recurring,
		RecurringFrequency: r.Frequency,
	}
}

func (r Row) Income() core.Income {
	return core.Income{
		Date:               r.Date,
		Amount:             r.Amount,
		Source:             r.Label,
		Description:        r.Text,
		Tags:               r.Tags,
		IsRecurring:        r.Recurring,
		RecurringFrequency: r.Frequency,
	}
}

func ExpenseRow(e core.Expense) []string {
	return formatRow(e.Date, e.Amount, e.Category, e.Note, e.Tags, e.IsRecurring, e.RecurringFrequency)
}

func IncomeRow(in core.Income) []string {
	return formatRow(in.Date, in.Amount, in.Source, in.Description, in.Tags, in.IsRecurring, in.RecurringFrequency)
}

func formatRow(d core.Date, m core.Money, label, text string, tags []string, recurring bool, f core.Frequency) []string {
	return []string{
		d.Format(time.DateOnly),
		m.String(),
		label,
		text,
		strings.Join(tags, ", "),
		strconv.FormatBool(recurring),
		string(f),
	}
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// normalizeAmount strips currency symbols and thousands separators so
// "€ 1.234,50", "$1,234.50" and "$1,234" all become a plain decimal. A
// lone comma is a decimal separator unless exactly three digits follow it.
func normalizeAmount(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	lastDot, lastComma := strings.LastIndex(out, "."), strings.LastIndex(out, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0 && lastComma > lastDot:
		out = strings.ReplaceAll(out, ".", "")
	case lastDot >= 0 && lastComma >= 0:
		out = strings.ReplaceAll(out, ",", "")
	case lastComma >= 0 && (strings.Count(out, ",") > 1 || len(out)-lastComma-1 == 3):
		out = strings.ReplaceAll(out, ",", "")
	case lastDot >= 0 && strings.Count(out, ".") > 1:
		out = strings.ReplaceAll(out, ".", "")
	}
	return out
}
