package backend

import (
	"context"
	"fmt"

	"fintrack/internal/goals"
	gsheet "fintrack/internal/ledger/google"
	"fintrack/internal/ledger/memory"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Factory opens backends.
type Factory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Open validates config and opens the matching backend.
func (f *Factory) Open(ctx context.Context, config Config) (*Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLite:
		return f.openSQLite(config)
	case Sheets:
		return f.openSheets(ctx, config)
	case Memory:
		return f.openMemory(config), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *Factory) openSQLite(config Config) (*Backend, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Backend{
		Type:      SQLite,
		Ledger:    repo,
		KV:        repo,
		Recurring: repo,
		Ping:      repo.Ping,
		Cleanup:   repo.Close,
	}, nil
}

func (f *Factory) openSheets(ctx context.Context, config Config) (*Backend, error) {
	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:      config.GoogleSpreadsheetID,
		ExpensesSheet:      config.GoogleExpensesSheet,
		IncomesSheet:       config.GoogleIncomesSheet,
		ServiceAccountJSON: config.GoogleServiceAccountJSON,
		ServiceAccountFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)

	return &Backend{
		Type:   Sheets,
		Ledger: cli,
		KV:     goals.NewMemoryStore(),
	}, nil
}

func (f *Factory) openMemory(config Config) *Backend {
	var store *memory.Store
	if config.SeedDir != "" {
		store = memory.NewFromFiles(config.SeedDir)
	} else {
		store = memory.New()
	}

	f.logger.Info("Initialized memory backend", "seed_dir", config.SeedDir)

	return &Backend{
		Type:   Memory,
		Ledger: store,
		KV:     goals.NewMemoryStore(),
	}
}
