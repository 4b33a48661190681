package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/goals"
)

// SnapshotKey is the KV key the insights worker writes to.
const SnapshotKey = "insightsSnapshot"

var (
	ErrNoSnapshot = errors.New("no insights snapshot yet")

	// ErrPartialLedger is returned by BuildSnapshot when a ledger side could
	// not be read.
	ErrPartialLedger = errors.New("ledger partially unavailable")
)

// Snapshot is a precomputed view written by the insights worker.
type Snapshot struct {
	GeneratedAt time.Time                `json:"generatedAt"`
	Trigger     string                   `json:"trigger"`
	Insights    []core.Insight           `json:"insights"`
	Budget      analytics.BudgetAnalysis `json:"budget"`
}

// SnapshotRepository stores the latest snapshot in the shared KV store.
type SnapshotRepository struct {
	store goals.Store
}

func NewSnapshotRepository(store goals.Store) *SnapshotRepository {
	return &SnapshotRepository{store: store}
}

func (r *SnapshotRepository) Save(ctx context.Context, s Snapshot) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.store.Put(ctx, SnapshotKey, raw); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns ErrNoSnapshot until the worker has written one.
func (r *SnapshotRepository) Load(ctx context.Context) (Snapshot, error) {
	raw, err := r.store.Get(ctx, SnapshotKey)
	if errors.Is(err, goals.ErrNotFound) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

// BuildSnapshot computes a fresh snapshot from one ledger read. It refuses
// with ErrPartialLedger rather than summarise an incomplete ledger.
func (s *AnalyticsService) BuildSnapshot(ctx context.Context, trigger string) (Snapshot, error) {
	start := time.Now()
	txs, partial, err := s.load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	if partial {
		return Snapshot{}, ErrPartialLedger
	}
	now := s.now()
	snap := Snapshot{
		GeneratedAt: now.UTC(),
		Trigger:     trigger,
		Insights:    analytics.Generate(txs, now),
		Budget:      analytics.AnalyzeBudget(txs, now),
	}
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	s.metrics.ObserveAnalytics("snapshot", time.Since(start))
	return snap, nil
}
