package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"vexpenses/internal/core"
	"vexpenses/internal/services"
)

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	txs := s.store.Transactions()
	if cc := r.URL.Query().Get("costCenter"); cc != "" {
		txs = core.FilterByCostCenter(txs, cc)
	}
	if r.URL.Query().Get("status") == string(core.StatusPending) {
		pending := make([]core.Transaction, 0, len(txs))
		for _, t := range txs {
			if t.Status == core.StatusPending {
				pending = append(pending, t)
			}
		}
		txs = pending
	}
	writeJSON(w, http.StatusOK, txs)
}

type createTransactionRequest struct {
	CollaboratorID string `json:"collaboratorId"`
	Date           string `json:"date"`
	CostCenter     string `json:"costCenter"`
	Category       string `json:"category"`
	Value          string `json:"value"`
	PaymentMethod  string `json:"paymentMethod"`
	Unit           string `json:"unit"`
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := s.svc.CreateTransaction(r.Context(), services.CreateTransactionInput{
		CollaboratorID: req.CollaboratorID,
		Date:           req.Date,
		CostCenter:     req.CostCenter,
		Category:       req.Category,
		Value:          req.Value,
		PaymentMethod:  req.PaymentMethod,
		Unit:           req.Unit,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

// handleTransactionByID routes /api/transactions/{id} and
// /api/transactions/{id}/approve|reject.
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusNotFound, "missing transaction id")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodDelete:
		if err := s.svc.DeleteTransaction(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case action == "approve" && r.Method == http.MethodPost:
		if err := s.svc.Approve(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(core.StatusApproved)})
	case action == "reject" && r.Method == http.MethodPost:
		if err := s.svc.Reject(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": string(core.StatusRejected)})
	default:
		methodNotAllowed(w, "DELETE, POST")
	}
}
