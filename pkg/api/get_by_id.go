package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// HandleGetById handles GET requests for a specific document
func (h *Handler) HandleGetById(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName, docID := vars["coll"], vars["id"]

	doc, err := h.store.GetById(collName, docID)
	if err != nil {
		h.logger.Warnw("get by id failed", "collection", collName, "id", docID, "error", err)
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, doc)
}
