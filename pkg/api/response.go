package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/schemadb/schemadb/pkg/domain"
)

// Pagination describes the page window of a list response
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Envelope is the JSON shape of every API response
type Envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message,omitempty"`
	Data       interface{}         `json:"data,omitempty"`
	Errors     []domain.FieldError `json:"errors,omitempty"`
	Pagination *Pagination         `json:"pagination,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, envelope Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(envelope)
}

// writeData writes a success envelope with a data payload
func writeData(w http.ResponseWriter, statusCode int, data interface{}) {
	writeJSON(w, statusCode, Envelope{Success: true, Data: data})
}

// writeMessage writes a success envelope with only a message
func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, Envelope{Success: true, Message: message})
}

// writeList writes a success envelope with a data payload and pagination
func writeList(w http.ResponseWriter, data interface{}, pagination *Pagination) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Pagination: pagination})
}

// writeError maps the error taxonomy onto HTTP statuses. Underlying store
// messages are preserved for diagnostics, never swallowed.
func writeError(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		statusCode    int
	)
	switch {
	case domain.IsValidation(err):
		statusCode = http.StatusBadRequest
	case domain.IsNotFound(err):
		statusCode = http.StatusNotFound
	case domain.IsConflict(err):
		statusCode = http.StatusConflict
	default:
		statusCode = http.StatusInternalServerError
	}

	envelope := Envelope{Success: false, Message: err.Error()}
	if errors.As(err, &validationErr) {
		envelope.Message = validationErr.Message
		envelope.Errors = validationErr.Fields
	}
	writeJSON(w, statusCode, envelope)
}
