package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/schemadb/schemadb/pkg/domain"
)

// HandlePatchById handles PATCH requests for partial document updates
func (h *Handler) HandlePatchById(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName, docID := vars["coll"], vars["id"]

	var partial domain.Document
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		h.logger.Warnw("decoding body failed", "collection", collName, "error", err)
		writeError(w, domain.NewValidationError("invalid request body"))
		return
	}

	doc, err := h.store.Patch(collName, docID, partial)
	if err != nil {
		h.logger.Warnw("patch failed", "collection", collName, "id", docID, "error", err)
		writeError(w, err)
		return
	}

	h.logger.Infow("document patched", "collection", collName, "id", docID)
	writeData(w, http.StatusOK, doc)
}
