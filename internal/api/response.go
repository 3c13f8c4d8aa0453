package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"infinite-experiment/wayfinder/internal/logging"
	"infinite-experiment/wayfinder/internal/models/dtos/responses"
	"infinite-experiment/wayfinder/internal/resolver"
)

func respondWithSuccess[T any](w http.ResponseWriter, statusCode int, data *T) {
	resp := responses.APIResponse[T]{
		Status:    "success",
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	resp := responses.APIResponse[any]{
		Status:    "error",
		Timestamp: time.Now().UTC(),
		Error:     message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	_ = json.NewEncoder(w).Encode(resp)
}

// lookupStatus maps a resolver error to its HTTP status
func lookupStatus(err error) int {
	switch {
	case errors.Is(err, resolver.ErrInvalidQuery):
		return http.StatusBadRequest
	case errors.Is(err, resolver.ErrLocationNotFound):
		return http.StatusNotFound
	case errors.Is(err, resolver.ErrStoreUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondWithLookupError(w http.ResponseWriter, err error) {
	status := lookupStatus(err)
	msg := err.Error()
	if status == http.StatusServiceUnavailable {
		msg = "location store temporarily unavailable, try again shortly"
	}
	if status >= http.StatusInternalServerError {
		logging.Warn("Location lookup failed", "status", status, "error", err)
	}
	respondWithError(w, status, msg)
}
