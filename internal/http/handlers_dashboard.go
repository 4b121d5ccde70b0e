package http

import (
	"context"
	"net/http"
	"time"

	"vexpenses/internal/core"
)

// handleSummary recomputes the dashboard aggregates from the current
// transaction collection. An optional costCenter parameter narrows the
// collection before aggregation.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	txs := s.store.Transactions()
	if cc := r.URL.Query().Get("costCenter"); cc != "" {
		txs = core.FilterByCostCenter(txs, cc)
	}
	writeJSON(w, http.StatusOK, core.ComputeSummary(txs, s.seed))
}

// handleInsights returns the AI executive summary for the current state.
// The advisor is best-effort: failures come back as a fixed message with a
// 200 status, never as an error that could suggest dashboard state is bad.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	summary := core.ComputeSummary(s.store.Transactions(), s.seed)
	report := s.insights.ExecutiveSummary(ctx, summary)
	writeJSON(w, http.StatusOK, map[string]string{"report": report})
}

// handleSourceFiles lists the distinct import provenance files.
func (s *Server) handleSourceFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	writeJSON(w, http.StatusOK, core.DistinctSourceFiles(s.store.Transactions()))
}

// handleAudit filters transactions by source file and import date for
// provenance tracing.
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	q := r.URL.Query()
	txs := core.FilterByAudit(s.store.Transactions(), q.Get("sourceFile"), q.Get("importDate"))
	writeJSON(w, http.StatusOK, txs)
}
