package http

import (
	"net/http"

	"fintrack/internal/analytics"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

// maxMonths caps ?months= on the monthly aggregate.
const maxMonths = 120

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	typ, err := core.ParseTransactionType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	totals, err := s.analytics.Categories(r.Context(), typ)
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	if totals == nil {
		totals = []core.CategoryTotal{}
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	months, err := queryInt(r.URL.Query(), "months", defaultMonths, 1, maxMonths)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	buckets, err := s.analytics.Monthly(r.Context(), months)
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.analytics.Daily(r.Context())
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.analytics.Insights(r.Context())
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	if insights == nil {
		insights = []core.Insight{}
	}
	writeJSON(w, http.StatusOK, insights)
}

func (s *Server) handleInsightsSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		writeError(w, r, log.OpRead, ledger.ErrUnsupported)
		return
	}
	snap, err := s.snapshots.Load(r.Context())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req ForecastRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	params, err := req.params()
	if err != nil {
		writeError(w, r, log.OpValidate, err)
		return
	}
	forecast, err := s.analytics.Forecast(r.Context(), params)
	if err != nil {
		writeError(w, r, log.OpForecast, err)
		return
	}
	writeJSON(w, http.StatusOK, forecast)
}

func (s *Server) handleBudgetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.analytics.BudgetAnalysis(r.Context())
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		raw = string(analytics.PeriodMonth)
	}
	period, err := analytics.ParsePeriod(raw)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	cmp, err := s.analytics.Comparison(r.Context(), period)
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleSpendingPatterns(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseDateRange(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	patterns, err := s.analytics.SpendingPatterns(r.Context(), start, end)
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	writeJSON(w, http.StatusOK, patterns)
}
