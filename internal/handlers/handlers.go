// Package handlers processes http requests for URL shortening and redirection
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

type Linker interface {

	//Allocate returns short ID for long URL. created is false if an existing short ID was reused
	Allocate(ctx context.Context, longURL string) (shortID string, created bool, err error)

	//Resolve returns original URL for short ID and records the access
	Resolve(ctx context.Context, shortID string) (string, error)

	//Ping checks the store is alive
	Ping(ctx context.Context) error
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, statusCode int, v any) {
	js, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err = w.Write(js); err != nil {
		logger.Warn("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, statusCode int, msg string) {
	writeJSON(w, logger, statusCode, errorResponse{Error: msg})
}
