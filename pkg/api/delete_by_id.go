package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// HandleDeleteById handles DELETE requests for a specific document
func (h *Handler) HandleDeleteById(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName, docID := vars["coll"], vars["id"]

	if err := h.store.Delete(collName, docID); err != nil {
		h.logger.Warnw("delete failed", "collection", collName, "id", docID, "error", err)
		writeError(w, err)
		return
	}

	h.logger.Infow("document deleted", "collection", collName, "id", docID)
	writeMessage(w, http.StatusOK, "document deleted")
}
