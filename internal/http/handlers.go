package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type transactionsResponse struct {
	Transactions []core.Transaction `json:"transactions"`
	Count        int                `json:"count"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	period, filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}

	txs, err := s.analytics.Transactions(r.Context(), period, filter)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactionsResponse{Transactions: txs, Count: len(txs)})
}

// createdResponse echoes the stored record in its normalized form. The
// transaction ID is set when the backend's ref is a record ID.
type createdResponse struct {
	Ref         string           `json:"ref"`
	Transaction core.Transaction `json:"transaction"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	exp, err := req.toExpense(s.analytics.Now())
	if err != nil {
		writeError(w, r, log.OpValidate, err)
		return
	}

	ref, err := s.records.CreateExpense(r.Context(), exp)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}

	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogRecordCreated(r.Context(), "expense", exp.Category, exp.Amount.Cents, exp.Date.Format(time.DateOnly), ref)

	exp.ID, _ = ledger.RecordID(ref)
	writeJSON(w, http.StatusCreated, createdResponse{Ref: ref, Transaction: core.Normalize([]core.Expense{exp}, nil)[0]})
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req IncomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	in, err := req.toIncome(s.analytics.Now())
	if err != nil {
		writeError(w, r, log.OpValidate, err)
		return
	}

	ref, err := s.records.CreateIncome(r.Context(), in)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}

	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogRecordCreated(r.Context(), "income", in.Source, in.Amount.Cents, in.Date.Format(time.DateOnly), ref)

	in.ID, _ = ledger.RecordID(ref)
	writeJSON(w, http.StatusCreated, createdResponse{Ref: ref, Transaction: core.Normalize(nil, []core.Income{in})[0]})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	var req ExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	exp, err := req.toExpense(s.analytics.Now())
	if err != nil {
		writeError(w, r, log.OpValidate, err)
		return
	}
	exp.ID = id
	if err := s.records.UpdateExpense(r.Context(), exp); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, core.Normalize([]core.Expense{exp}, nil)[0])
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	if err := s.records.DeleteExpense(r.Context(), id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	var req IncomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	in, err := req.toIncome(s.analytics.Now())
	if err != nil {
		writeError(w, r, log.OpValidate, err)
		return
	}
	in.ID = id
	if err := s.records.UpdateIncome(r.Context(), in); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, core.Normalize(nil, []core.Income{in})[0])
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, log.OpParse, err)
		return
	}
	if err := s.records.DeleteIncome(r.Context(), id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
