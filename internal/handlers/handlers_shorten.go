package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/antonevtu/shortlink/internal/cfg"
	"github.com/antonevtu/shortlink/internal/shortener"
)

// maxBodySize bounds shorten requests after gzip decoding.
const maxBodySize = 64 << 10

type requestURL struct {
	OriginalURL string `json:"originalUrl"`
	URL         string `json:"url"`
}

type responseURL struct {
	ShortURL string `json:"shortUrl"`
	ShortID  string `json:"shortId"`
}

//handlerShortenURLJSONAPI receives long URL from body in format requestURL.
//Returns BaseURL + "/" + shortID in format responseURL.
//201 for a new short ID, 200 if an existing one was reused.
func handlerShortenURLJSONAPI(links Linker, cfgApp cfg.Config, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if err != nil {
			writeError(w, logger, http.StatusBadRequest, err.Error())
			return
		}

		var request requestURL
		if err = json.Unmarshal(body, &request); err != nil {
			writeError(w, logger, http.StatusBadRequest, "invalid JSON body")
			return
		}
		longURL := request.OriginalURL
		if longURL == "" {
			longURL = request.URL
		}

		ctx, cancel := context.WithTimeout(r.Context(), cfgApp.Timeout())
		defer cancel()
		shortID, created, err := links.Allocate(ctx, longURL)
		if err != nil {
			statusCode, msg := allocateErrorStatus(err)
			if statusCode == http.StatusInternalServerError {
				logger.Error("allocate short id", "url", longURL, "error", err)
			}
			writeError(w, logger, statusCode, msg)
			return
		}

		statusCode := http.StatusOK
		if created {
			statusCode = http.StatusCreated
		}
		writeJSON(w, logger, statusCode, responseURL{
			ShortURL: shortURL(cfgApp, shortID),
			ShortID:  shortID,
		})
	}
}

//handlerShortenURL receives long URL from body in text format.
//Returns BaseURL + "/" + shortID in text format.
func handlerShortenURL(links Linker, cfgApp cfg.Config, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		longURL := strings.TrimSpace(string(body))

		ctx, cancel := context.WithTimeout(r.Context(), cfgApp.Timeout())
		defer cancel()
		shortID, created, err := links.Allocate(ctx, longURL)
		if err != nil {
			statusCode, msg := allocateErrorStatus(err)
			if statusCode == http.StatusInternalServerError {
				logger.Error("allocate short id", "url", longURL, "error", err)
			}
			http.Error(w, msg, statusCode)
			return
		}

		statusCode := http.StatusOK
		if created {
			statusCode = http.StatusCreated
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(statusCode)
		if _, err = w.Write([]byte(shortURL(cfgApp, shortID))); err != nil {
			logger.Warn("write response", "error", err)
		}
	}
}

// handlerPing checks the store is alive
func handlerPing(links Linker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := links.Ping(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		} else {
			w.WriteHeader(http.StatusOK)
		}
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return nil, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
	}
	return body, err
}

func allocateErrorStatus(err error) (int, string) {
	if errors.Is(err, shortener.ErrValidation) {
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, "Server error"
}

func shortURL(cfgApp cfg.Config, shortID string) string {
	return strings.TrimRight(cfgApp.BaseURL, "/") + "/" + shortID
}
