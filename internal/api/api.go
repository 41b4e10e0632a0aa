package api

import (
	"encoding/json"
	"net/http"

	"github.com/teammachinist/tiendaqr/internal/logger"
)

// Validation errors (only for validation failed responses)
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// HTTP response writers - return data directly
func WriteJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.ErrorCtx(r.Context(), "Failed to encode JSON response", "error", err, "status_code", statusCode)
	}
}

func WriteSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	WriteJSON(w, r, http.StatusOK, data)
}

func WriteCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	WriteJSON(w, r, http.StatusCreated, data)
}

func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	WriteJSON(w, r, statusCode, map[string]string{"error": message})
}

func WriteValidationError(w http.ResponseWriter, r *http.Request, errors []ValidationError) {
	WriteJSON(w, r, http.StatusBadRequest, ValidationErrors{Errors: errors})
}

func WriteBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusBadRequest, message)
}

func WriteNotFound(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusNotFound, message)
}

func WriteInternalServerError(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusInternalServerError, message)
}
