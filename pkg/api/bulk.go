package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/schemadb/schemadb/pkg/domain"
)

// maxBulkItems caps the size of a single bulk request
const maxBulkItems = 1000

// BulkRequest is the request body for bulk operations. Delete accepts
// identifiers either in ids or as items carrying an _id.
type BulkRequest struct {
	Operation string            `json:"operation"`
	Items     []domain.Document `json:"items,omitempty"`
	IDs       []string          `json:"ids,omitempty"`
}

// HandleBulk handles POST requests for bulk insert/update/delete
func (h *Handler) HandleBulk(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	var req BulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warnw("decoding body failed", "collection", collName, "error", err)
		writeError(w, domain.NewValidationError("invalid request body"))
		return
	}

	if len(req.Items)+len(req.IDs) == 0 {
		writeError(w, domain.NewValidationError("no items provided"))
		return
	}
	if len(req.Items) > maxBulkItems || len(req.IDs) > maxBulkItems {
		writeError(w, domain.NewValidationError("maximum 1000 items allowed per bulk request"))
		return
	}

	var (
		result *domain.BulkResult
		err    error
	)
	switch req.Operation {
	case "insert":
		result, err = h.store.BulkInsert(collName, req.Items)
	case "update":
		result, err = h.store.BulkUpdate(collName, req.Items)
	case "delete":
		ids := req.IDs
		if len(ids) == 0 {
			for _, item := range req.Items {
				if id := item.ID(); id != "" {
					ids = append(ids, id)
				}
			}
		}
		result, err = h.store.BulkDelete(collName, ids)
	default:
		writeError(w, domain.NewValidationError("operation must be one of insert, update, delete",
			domain.FieldError{Field: "operation", Message: "unsupported operation"}))
		return
	}
	if err != nil {
		h.logger.Errorw("bulk operation failed",
			"collection", collName, "operation", req.Operation, "error", err)
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, result)
}
