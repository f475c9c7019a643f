package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// HandleStats handles GET requests for collection introspection
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collName := vars["coll"]

	stats, err := h.store.Stats(collName)
	if err != nil {
		h.logger.Errorw("stats failed", "collection", collName, "error", err)
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}
