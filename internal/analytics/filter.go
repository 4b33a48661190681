package analytics

import (
	"slices"
	"strings"
	"time"

	"fintrack/internal/core"
)

// FilterParams narrows a transaction list. Zero values disable a criterion.
type FilterParams struct {
	Type      core.TransactionType
	Start     *time.Time
	End       *time.Time // inclusive through the end of that day
	Category  string
	MinAmount *float64
	MaxAmount *float64
	Tags      []string // any-of
	Search    string   // case-insensitive over category, description and tags
}

func Filter(txs []core.Transaction, p FilterParams) []core.Transaction {
	var end time.Time
	if p.End != nil {
		end = startOfDay(*p.End).AddDate(0, 0, 1)
	}
	search := strings.ToLower(strings.TrimSpace(p.Search))

	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !matchesType(tx, p.Type) {
			continue
		}
		if p.Start != nil && tx.Date.Before(*p.Start) {
			continue
		}
		if p.End != nil && !tx.Date.Before(end) {
			continue
		}
		if p.Category != "" && tx.Category != p.Category {
			continue
		}
		if p.MinAmount != nil && tx.Amount < *p.MinAmount {
			continue
		}
		if p.MaxAmount != nil && tx.Amount > *p.MaxAmount {
			continue
		}
		if len(p.Tags) > 0 && !slices.ContainsFunc(tx.Tags, func(tag string) bool {
			return slices.Contains(p.Tags, tag)
		}) {
			continue
		}
		if search != "" && !matchesSearch(tx, search) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func matchesSearch(tx core.Transaction, needle string) bool {
	if strings.Contains(strings.ToLower(tx.Category), needle) ||
		strings.Contains(strings.ToLower(tx.Description), needle) {
		return true
	}
	for _, tag := range tx.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// History keeps the transactions of the given period ending at now: the
// last seven days, the month to date or the year to date. PeriodAll returns
// every transaction.
func History(txs []core.Transaction, period Period, now time.Time) []core.Transaction {
	var from time.Time
	switch period {
	case PeriodWeek:
		from = now.AddDate(0, 0, -7)
	case PeriodMonth:
		from = startOfMonth(now)
	case PeriodYear:
		from = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return slices.Clone(txs)
	}
	out := make([]core.Transaction, 0)
	for _, tx := range txs {
		if !wall(tx.Date, now.Location()).Before(from) {
			out = append(out, tx)
		}
	}
	return out
}
