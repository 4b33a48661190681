package services

import (
	"context"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/goals"
	"fintrack/internal/metrics"
)

const transactionsKey = "transactions"

// AnalyticsService answers analytics queries over the normalized ledger.
// The normalized list is cached until Invalidate is called or the entry
// expires. Every method returns ctx.Err() once ctx is done.
type AnalyticsService struct {
	txs            *TransactionService
	cache          cache.Cache[[]core.Transaction]
	metrics        *metrics.Metrics
	forecastMonths int
	now            func() time.Time
}

type AnalyticsOption func(*AnalyticsService)

// WithCache memoizes the normalized transaction list.
func WithCache(c cache.Cache[[]core.Transaction]) AnalyticsOption {
	return func(s *AnalyticsService) { s.cache = c }
}

// WithForecastMonths sets the horizon used when a request leaves it unset.
func WithForecastMonths(n int) AnalyticsOption {
	return func(s *AnalyticsService) {
		if n > 0 {
			s.forecastMonths = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) AnalyticsOption {
	return func(s *AnalyticsService) { s.now = now }
}

func NewAnalyticsService(txs *TransactionService, m *metrics.Metrics, opts ...AnalyticsOption) *AnalyticsService {
	s := &AnalyticsService{
		txs:            txs,
		metrics:        m,
		forecastMonths: analytics.DefaultForecastMonths,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invalidate drops cached data; call it whenever the ledger changes.
func (s *AnalyticsService) Invalidate() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

// Now reports the service clock.
func (s *AnalyticsService) Now() time.Time {
	return s.now()
}

// load returns the normalized ledger and whether a side was missing.
// Partial results are served but never cached, so a recovered backend is
// picked up by the next request.
func (s *AnalyticsService) load(ctx context.Context) ([]core.Transaction, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		if txs, ok := s.cache.Get(transactionsKey); ok {
			s.metrics.IncrCacheHit(transactionsKey)
			return txs, false, nil
		}
		s.metrics.IncrCacheMiss(transactionsKey)
	}
	loaded, err := s.txs.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil && !loaded.Partial() {
		s.cache.Set(transactionsKey, loaded.Transactions)
	}
	return loaded.Transactions, loaded.Partial(), nil
}

// run loads transactions, checks ctx again and computes fn.
func run[T any](ctx context.Context, s *AnalyticsService, op string, fn func([]core.Transaction, time.Time) (T, error)) (T, error) {
	var zero T
	start := time.Now()
	txs, _, err := s.load(ctx)
	if err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	out, err := fn(txs, s.now())
	if err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	s.metrics.ObserveAnalytics(op, time.Since(start))
	return out, nil
}

// Transactions returns the filtered list, optionally narrowed to a history
// period first.
func (s *AnalyticsService) Transactions(ctx context.Context, period analytics.Period, p analytics.FilterParams) ([]core.Transaction, error) {
	return run(ctx, s, "transactions", func(txs []core.Transaction, now time.Time) ([]core.Transaction, error) {
		if period != analytics.PeriodAll {
			txs = analytics.History(txs, period, now)
		}
		return analytics.Filter(txs, p), nil
	})
}

func (s *AnalyticsService) Categories(ctx context.Context, typ core.TransactionType) ([]core.CategoryTotal, error) {
	return run(ctx, s, "categories", func(txs []core.Transaction, _ time.Time) ([]core.CategoryTotal, error) {
		return analytics.ByCategory(txs, typ), nil
	})
}

func (s *AnalyticsService) Monthly(ctx context.Context, months int) ([]core.MonthBucket, error) {
	return run(ctx, s, "monthly", func(txs []core.Transaction, now time.Time) ([]core.MonthBucket, error) {
		return analytics.ByMonth(txs, months, now), nil
	})
}

func (s *AnalyticsService) Daily(ctx context.Context) ([]core.DayBucket, error) {
	return run(ctx, s, "daily", func(txs []core.Transaction, now time.Time) ([]core.DayBucket, error) {
		return analytics.ByDay(txs, now), nil
	})
}

func (s *AnalyticsService) Insights(ctx context.Context) ([]core.Insight, error) {
	return run(ctx, s, "insights", func(txs []core.Transaction, now time.Time) ([]core.Insight, error) {
		return analytics.Generate(txs, now), nil
	})
}

func (s *AnalyticsService) Forecast(ctx context.Context, p analytics.ForecastParams) (core.Forecast, error) {
	if p.Months <= 0 {
		p.Months = s.forecastMonths
	}
	return run(ctx, s, "forecast", func(txs []core.Transaction, now time.Time) (core.Forecast, error) {
		return analytics.Forecast(txs, p, now), nil
	})
}

func (s *AnalyticsService) BudgetAnalysis(ctx context.Context) (analytics.BudgetAnalysis, error) {
	return run(ctx, s, "budget_analysis", func(txs []core.Transaction, now time.Time) (analytics.BudgetAnalysis, error) {
		return analytics.AnalyzeBudget(txs, now), nil
	})
}

func (s *AnalyticsService) Comparison(ctx context.Context, period analytics.Period) (analytics.Comparison, error) {
	return run(ctx, s, "comparison", func(txs []core.Transaction, now time.Time) (analytics.Comparison, error) {
		return analytics.Compare(txs, period, now)
	})
}

func (s *AnalyticsService) GoalsProgress(ctx context.Context, g goals.Goals) (goals.Progress, error) {
	return run(ctx, s, "goals_progress", func(txs []core.Transaction, now time.Time) (goals.Progress, error) {
		return goals.TrackProgress(g, txs, now), nil
	})
}

// SpendingPatterns breaks expenses in [start, end] down by category, month
// and weekday; zero dates select the default window.
func (s *AnalyticsService) SpendingPatterns(ctx context.Context, start, end core.Date) (analytics.SpendingPatterns, error) {
	return run(ctx, s, "spending_patterns", func(txs []core.Transaction, now time.Time) (analytics.SpendingPatterns, error) {
		return analytics.Patterns(txs, start, end, now)
	})
}
