package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/schemadb/schemadb/pkg/domain"
)

// HandleCreate handles POST requests to create a document in a collection
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	var body domain.Document
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Warnw("decoding body failed", "collection", collName, "error", err)
		writeError(w, domain.NewValidationError("invalid request body"))
		return
	}

	doc, err := h.store.Create(collName, body)
	if err != nil {
		h.logger.Warnw("create failed", "collection", collName, "error", err)
		writeError(w, err)
		return
	}

	h.logger.Infow("document created", "collection", collName, "id", doc.ID())
	writeData(w, http.StatusCreated, doc)
}
