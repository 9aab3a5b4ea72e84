package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/antonevtu/shortlink/internal/cfg"
	"github.com/antonevtu/shortlink/internal/shortener"
)

func handlerExpandURL(links Linker, cfgApp cfg.Config, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ctx, cancel := context.WithTimeout(r.Context(), cfgApp.Timeout())
		defer cancel()
		target, err := links.Resolve(ctx, id)
		if errors.Is(err, shortener.ErrNotFound) {
			writeError(w, logger, http.StatusNotFound, "URL not found")
			return
		}
		if err != nil {
			logger.Error("resolve short id", "short_id", id, "error", err)
			writeError(w, logger, http.StatusInternalServerError, "Server error")
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}

func handlerRoot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("API Working"))
	}
}
