package storage

import (
	"database/sql"
)

type Expense struct {
	ID                 int64
	Date               string
	AmountCents        int64
	Category           string
	Note               string
	Tags               string
	IsRecurring        bool
	RecurringFrequency string
	CreatedAt          string
}

type Income struct {
	ID                 int64
	Date               string
	AmountCents        int64
	Source             string
	Description        string
	Tags               string
	IsRecurring        bool
	RecurringFrequency string
	CreatedAt          string
}

type RecurringRule struct {
	ID                int64
	Kind              string
	StartDate         string
	EndDate           sql.NullString
	Frequency         string
	AmountCents       int64
	Category          string
	Description       string
	LastExecutionDate sql.NullString
	CreatedAt         string
	UpdatedAt         string
}

type Kv struct {
	Key       string
	Value     []byte
	UpdatedAt string
}
