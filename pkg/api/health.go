package api

import (
	"net/http"
)

// HandleHealth reports service liveness
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}
