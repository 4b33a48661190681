package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
	TypeAll     TransactionType = "all"
)

const (
	Daily     Frequency = "DAILY"
	Weekly    Frequency = "WEEKLY"
	Monthly   Frequency = "MONTHLY"
	Quarterly Frequency = "QUARTERLY"
	Yearly    Frequency = "YEARLY"
)

const maxTextLen = 200

type (
	TransactionType string

	Frequency string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Expense struct {
		ID                 int64
		Date               Date
		Amount             Money
		Category           string
		Note               string
		Tags               []string
		IsRecurring        bool
		RecurringFrequency Frequency
	}

	Income struct {
		ID                 int64
		Date               Date
		Amount             Money
		Source             string
		Description        string
		Tags               []string
		IsRecurring        bool
		RecurringFrequency Frequency
	}

	// RecurringRule is a template materialised into expenses or incomes
	// by the recurring processor.
	RecurringRule struct {
		ID            int64
		Kind          TransactionType // income or expense
		StartDate     Date
		EndDate       Date // zero means open ended
		Every         Frequency
		Amount        Money
		Category      string
		Description   string
		LastExecution Date
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptySource      = errors.New("empty income source")
	ErrTextTooLong      = errors.New("text too long (max 200 characters)")
	ErrInvalidFrequency = errors.New("invalid recurring frequency")
	ErrInvalidType      = errors.New("invalid transaction type")

	ErrZeroDate                  = errors.New("date cannot be zero")
	ErrEndBeforeStart            = errors.New("end date must be after start date")
	ErrFrequencyWithoutRecurring = errors.New("recurring frequency set on a non-recurring record")
)

// ParseTransactionType accepts income, expense, all or the empty string
// (treated as all).
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeIncome:
		return TypeIncome, nil
	case TypeExpense:
		return TypeExpense, nil
	case TypeAll, "":
		return TypeAll, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// ParseFrequency is case-insensitive. The empty string yields an empty
// Frequency and no error.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	if f == "" {
		return "", nil
	}
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
	}
	return f, nil
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts either a calendar date (2006-01-02) or a full RFC3339
// timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return Date{Time: t}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Date{Time: t}, nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(e.Note) > maxTextLen || len(e.Category) > maxTextLen {
		return ErrTextTooLong
	}
	return validateRecurring(e.IsRecurring, e.RecurringFrequency)
}

func (i Income) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return err
	}
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(i.Source) == "" {
		return ErrEmptySource
	}
	if len(i.Description) > maxTextLen || len(i.Source) > maxTextLen {
		return ErrTextTooLong
	}
	return validateRecurring(i.IsRecurring, i.RecurringFrequency)
}

func validateRecurring(recurring bool, f Frequency) error {
	if f == "" {
		return nil
	}
	if !f.Valid() {
		return ErrInvalidFrequency
	}
	if !recurring {
		return ErrFrequencyWithoutRecurring
	}
	return nil
}

func (r RecurringRule) Validate() error {
	if err := r.StartDate.Validate(); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	if !r.EndDate.IsZero() {
		if err := r.EndDate.Validate(); err != nil {
			return fmt.Errorf("invalid end date: %w", err)
		}
		if r.EndDate.Before(r.StartDate.Time) {
			return ErrEndBeforeStart
		}
	}
	if r.Kind != TypeIncome && r.Kind != TypeExpense {
		return ErrInvalidType
	}
	if !r.Every.Valid() {
		return ErrInvalidFrequency
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if len(r.Description) > maxTextLen {
		return ErrTextTooLong
	}
	return nil
}
