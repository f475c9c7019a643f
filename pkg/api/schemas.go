package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/schemadb/schemadb/pkg/domain"
)

// HandleCreateSchema handles POST requests to register a schema definition
func (h *Handler) HandleCreateSchema(w http.ResponseWriter, r *http.Request) {
	var def domain.SchemaDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		h.logger.Warnw("decoding schema failed", "error", err)
		writeError(w, domain.NewValidationError("invalid request body"))
		return
	}

	created, err := h.registry.Create(&def)
	if err != nil {
		h.logger.Warnw("schema create failed", "collection", def.CollectionName, "error", err)
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, created)
}

// HandleListSchemas handles GET requests for all active schema definitions
func (h *Handler) HandleListSchemas(w http.ResponseWriter, r *http.Request) {
	defs, err := h.registry.ListActive()
	if err != nil {
		h.logger.Errorw("schema list failed", "error", err)
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, defs)
}

// HandleGetSchema handles GET requests for a schema definition by ID,
// active or soft-deleted
func (h *Handler) HandleGetSchema(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	def, err := h.registry.Get(id)
	if err != nil {
		h.logger.Warnw("schema get failed", "id", id, "error", err)
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, def)
}

// HandleUpdateSchema handles PATCH requests for partial schema updates.
// The collection name is immutable and silently ignored when present.
func (h *Handler) HandleUpdateSchema(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var partial domain.Document
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		h.logger.Warnw("decoding schema patch failed", "id", id, "error", err)
		writeError(w, domain.NewValidationError("invalid request body"))
		return
	}

	def, err := h.registry.Update(id, partial)
	if err != nil {
		h.logger.Warnw("schema update failed", "id", id, "error", err)
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, def)
}

// HandleDeleteSchema handles DELETE requests by soft-deleting the
// definition: it stays retrievable by ID but drops out of active lookups
func (h *Handler) HandleDeleteSchema(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.registry.SoftDelete(id); err != nil {
		h.logger.Warnw("schema delete failed", "id", id, "error", err)
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "schema deactivated")
}
