package backend

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/config"
	"fintrack/internal/log"
)

func quietFactory() *Factory {
	return NewFactory(log.New(log.Config{Output: &bytes.Buffer{}}))
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "postgres"})
	require.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:         config.BackendSheets,
		GoogleSpreadsheetID: "sheet-id",
		GoogleExpensesSheet: "Spese",
	})
	require.NoError(t, err)
	assert.Equal(t, Sheets, cfg.Type)
	assert.Equal(t, "sheet-id", cfg.GoogleSpreadsheetID)
	assert.Equal(t, "Spese", cfg.GoogleExpensesSheet)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: Memory}, false},
		{"sqlite without path", Config{Type: SQLite}, true},
		{"sqlite", Config{Type: SQLite, SQLiteDBPath: "x.db"}, false},
		{"sheets without id", Config{Type: Sheets, GoogleServiceAccountJSON: "{}"}, true},
		{"sheets without credentials", Config{Type: Sheets, GoogleSpreadsheetID: "id"}, true},
		{"sheets", Config{Type: Sheets, GoogleSpreadsheetID: "id", GoogleServiceAccountJSON: "{}"}, false},
		{"unknown", Config{Type: "redis"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpenMemory(t *testing.T) {
	dir := t.TempDir()
	seed := "Date,Amount,Category,Note\n2024-03-01,12.50,Food,lunch\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "expenses.csv"), []byte(seed), 0o600))

	b, err := quietFactory().Open(context.Background(), Config{Type: Memory, SeedDir: dir})
	require.NoError(t, err)
	defer b.Close()

	assert.Nil(t, b.Recurring)
	assert.NoError(t, b.Ready(context.Background()))

	expenses, err := b.Ledger.ListExpenses(context.Background())
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Food", expenses[0].Category)

	require.NoError(t, b.KV.Put(context.Background(), "k", []byte("v")))
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")

	b, err := quietFactory().Open(context.Background(), Config{Type: SQLite, SQLiteDBPath: path})
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, SQLite, b.Type)
	assert.NotNil(t, b.Recurring)
	assert.NoError(t, b.Ready(context.Background()))
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	_, err := quietFactory().Open(context.Background(), Config{Type: Sheets})
	assert.Error(t, err)
}

func TestNilBackend(t *testing.T) {
	var b *Backend
	assert.NoError(t, b.Close())
	assert.NoError(t, b.Ready(context.Background()))
}
