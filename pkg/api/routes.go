package api

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API routes with the given router
func (h *Handler) RegisterRoutes(router *mux.Router) {
	// Schema registry
	router.HandleFunc("/schemas", h.HandleCreateSchema).Methods("POST")
	router.HandleFunc("/schemas", h.HandleListSchemas).Methods("GET")
	router.HandleFunc("/schemas/{id}", h.HandleGetSchema).Methods("GET")
	router.HandleFunc("/schemas/{id}", h.HandleUpdateSchema).Methods("PATCH")
	router.HandleFunc("/schemas/{id}", h.HandleDeleteSchema).Methods("DELETE")

	// Collection operations
	router.HandleFunc("/collections/{coll}", h.HandleList).Methods("GET")
	router.HandleFunc("/collections/{coll}", h.HandleCreate).Methods("POST")
	router.HandleFunc("/collections/{coll}/bulk", h.HandleBulk).Methods("POST")
	router.HandleFunc("/collections/{coll}/stats", h.HandleStats).Methods("GET")

	// Document operations (by ID)
	router.HandleFunc("/collections/{coll}/documents/{id}", h.HandleGetById).Methods("GET")
	router.HandleFunc("/collections/{coll}/documents/{id}", h.HandleReplaceById).Methods("PUT")
	router.HandleFunc("/collections/{coll}/documents/{id}", h.HandlePatchById).Methods("PATCH")
	router.HandleFunc("/collections/{coll}/documents/{id}", h.HandleDeleteById).Methods("DELETE")

	// Backup and restore
	router.HandleFunc("/backup/export", h.HandleExport).Methods("POST")
	router.HandleFunc("/backup/restore", h.HandleRestore).Methods("POST")

	router.HandleFunc("/health", h.HandleHealth).Methods("GET")
}
