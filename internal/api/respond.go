// internal/api/respond.go
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"focis/internal/domain"
	"focis/internal/eventstore"
)

// maxBody bounds request bodies accepted by Decode.
const maxBody = 1 << 20

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// Decode reads a JSON request body into v.
func Decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// Status maps an action or ledger error to an HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidPayload),
		errors.Is(err, domain.ErrUnknownKind),
		errors.Is(err, domain.ErrUnknownEntity):
		return http.StatusBadRequest
	case errors.Is(err, eventstore.ErrEventNotFound), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, eventstore.ErrAlreadyReversed),
		errors.Is(err, eventstore.ErrNotReversible),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrCuringIncomplete):
		return http.StatusConflict
	case errors.Is(err, eventstore.ErrStoreClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err with the status Status picks. Unexpected failures are
// logged and their detail withheld from the client.
func Error(w http.ResponseWriter, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
		http.Error(w, "internal error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

// Created writes v with 201.
func Created(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusCreated, v)
}
