package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/schemadb/schemadb/pkg/domain"
)

// HandleReplaceById handles PUT requests for complete document replacement
func (h *Handler) HandleReplaceById(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName, docID := vars["coll"], vars["id"]

	var body domain.Document
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Warnw("decoding body failed", "collection", collName, "error", err)
		writeError(w, domain.NewValidationError("invalid request body"))
		return
	}

	doc, err := h.store.Replace(collName, docID, body)
	if err != nil {
		h.logger.Warnw("replace failed", "collection", collName, "id", docID, "error", err)
		writeError(w, err)
		return
	}

	h.logger.Infow("document replaced", "collection", collName, "id", docID)
	writeData(w, http.StatusOK, doc)
}
