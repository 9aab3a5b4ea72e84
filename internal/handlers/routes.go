package handlers

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/antonevtu/shortlink/internal/cfg"
)

func NewRouter(links Linker, cfgApp cfg.Config, logger *slog.Logger) chi.Router {
	// Определяем роутер chi
	r := chi.NewRouter()

	// зададим встроенные middleware, чтобы улучшить стабильность приложения
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// архивирование запроса/ответа gzip
	r.Use(middleware.Compress(5, "application/json", "text/plain"))
	r.Use(gzipRequestHandle)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfgApp.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/", func(r chi.Router) {
		r.Get("/", handlerRoot())
		r.Post("/", handlerShortenURL(links, cfgApp, logger))
		r.Post("/shorten", handlerShortenURLJSONAPI(links, cfgApp, logger))
		r.Post("/api/shorten", handlerShortenURLJSONAPI(links, cfgApp, logger))
		r.Get("/ping", handlerPing(links))

		// профилировщик
		if cfgApp.Profiling {
			r.Mount("/debug", middleware.Profiler())
		}

		r.Get("/{id}", handlerExpandURL(links, cfgApp, logger))
	})
	return r
}
