package http

import (
	"net/http"

	"fintrack/internal/goals"
	"fintrack/internal/log"
)

func (s *Server) handleGetGoals(w http.ResponseWriter, r *http.Request) {
	g, err := s.records.LoadGoals(r.Context())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handlePutGoals replaces the stored goals. Spent amounts are derived from
// transactions, so any value sent for them is discarded.
func (s *Server) handlePutGoals(w http.ResponseWriter, r *http.Request) {
	var g goals.Goals
	if err := decodeJSON(w, r, &g); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	if g.CategoryBudgets == nil {
		g.CategoryBudgets = []goals.CategoryBudget{}
	}
	for i := range g.CategoryBudgets {
		g.CategoryBudgets[i].Category = sanitizeInput(g.CategoryBudgets[i].Category)
		g.CategoryBudgets[i].Spent = 0
	}

	if err := s.records.SaveGoals(r.Context(), g); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	s.logger.InfoContext(r.Context(), "Goals updated",
		log.FieldOperation, log.OpUpdate,
		"budgets", len(g.CategoryBudgets))
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleGoalsProgress(w http.ResponseWriter, r *http.Request) {
	g, err := s.records.LoadGoals(r.Context())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	progress, err := s.analytics.GoalsProgress(r.Context(), g)
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// handleGoalsRecommendations returns the stored goals with every budget set
// to its recommended share of monthly income. Nothing is saved.
func (s *Server) handleGoalsRecommendations(w http.ResponseWriter, r *http.Request) {
	g, err := s.records.LoadGoals(r.Context())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	g.ApplyRecommendations()
	writeJSON(w, http.StatusOK, g)
}
