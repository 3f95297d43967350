package server

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetDataStats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.db.QueryImportLogs(r.Context(), queryLimit(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// handleAlphaImport stores an Alpha Progression CSV export sent as the
// request body. The provider records the import log itself.
func (s *Server) handleAlphaImport(w http.ResponseWriter, r *http.Request) {
	result, err := s.alpha.Ingest(r.Context(), r.Body)
	if err != nil {
		s.log.Error("alpha import error", "error", err)
		status := http.StatusInternalServerError
		if result == nil {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	if s.metrics != nil {
		s.metrics.CounterSetsImported.Add(float64(result.SetsInserted))
	}
	writeJSON(w, http.StatusOK, result)
}
