package api

import (
	"encoding/json"
	"net/http"

	"github.com/schemadb/schemadb/pkg/domain"
)

// ExportRequest selects what to export. An empty collection list means
// every non-reserved collection.
type ExportRequest struct {
	Collections []string `json:"collections,omitempty"`
	IncludeData bool     `json:"includeData"`
}

// RestoreRequest carries a backup set and an optional collection selection
type RestoreRequest struct {
	Backup      *domain.BackupSet `json:"backup"`
	Collections []string          `json:"collections,omitempty"`
}

// HandleExport handles POST requests to export collections as a backup set
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	req := ExportRequest{IncludeData: true}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Warnw("decoding export request failed", "error", err)
			writeError(w, domain.NewValidationError("invalid request body"))
			return
		}
	}

	set, err := h.backups.Export(req.Collections, req.IncludeData)
	if err != nil {
		h.logger.Errorw("export failed", "error", err)
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, set)
}

// HandleRestore handles POST requests to restore collections from a backup
// set. Partial results are returned even when the restore fails midway.
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	var req RestoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warnw("decoding restore request failed", "error", err)
		writeError(w, domain.NewValidationError("invalid request body"))
		return
	}
	if req.Backup == nil {
		writeError(w, domain.NewValidationError("backup is required",
			domain.FieldError{Field: "backup", Message: "must be present"}))
		return
	}

	results, err := h.backups.Restore(req.Backup, req.Collections)
	if err != nil {
		h.logger.Errorw("restore failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, Envelope{
			Success: false,
			Message: err.Error(),
			Data:    results,
		})
		return
	}
	writeData(w, http.StatusOK, results)
}
