package core

import (
	"sort"
	"strconv"
	"time"
)

// Transaction is the unified shape of an expense or income used by every
// analytics routine. Type is assigned by Normalize.
type Transaction struct {
	ID                 string          `json:"id,omitempty"`
	Type               TransactionType `json:"type"`
	Amount             float64         `json:"amount"`
	Category           string          `json:"category"`
	Date               time.Time       `json:"date"`
	Description        string          `json:"description,omitempty"`
	Tags               []string        `json:"tags"`
	IsRecurring        bool            `json:"isRecurring,omitempty"`
	RecurringFrequency Frequency       `json:"recurringFrequency,omitempty"`
}

// Normalize merges expenses and incomes into one list sorted by date,
// newest first. Expense notes and income descriptions become the
// description; the income source becomes the category. Records with equal
// dates keep input order, expenses before incomes.
func Normalize(expenses []Expense, incomes []Income) []Transaction {
	out := make([]Transaction, 0, len(expenses)+len(incomes))
	for _, e := range expenses {
		out = append(out, Transaction{
			ID:                 formatID(e.ID),
			Type:               TypeExpense,
			Amount:             e.Amount.Units(),
			Category:           e.Category,
			Date:               e.Date.Time,
			Description:        e.Note,
			Tags:               copyTags(e.Tags),
			IsRecurring:        e.IsRecurring,
			RecurringFrequency: e.RecurringFrequency,
		})
	}
	for _, in := range incomes {
		out = append(out, Transaction{
			ID:                 formatID(in.ID),
			Type:               TypeIncome,
			Amount:             in.Amount.Units(),
			Category:           in.Source,
			Date:               in.Date.Time,
			Description:        in.Description,
			Tags:               copyTags(in.Tags),
			IsRecurring:        in.IsRecurring,
			RecurringFrequency: in.RecurringFrequency,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func copyTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
