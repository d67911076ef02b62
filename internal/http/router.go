package httpapi

import (
	"expvar"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(WithRequestID)
	r.Use(WithLogging)
	r.Use(middleware.Recoverer)
	r.Use(WithAPICORS(app.Cfg.CORSAllowedOrigins))
	r.Use(WithRateLimit(app.limiter))

	r.Get("/", app.indexHandler)
	r.Post("/process", app.processFormHandler)
	r.Get("/download/{region}", app.downloadHandler)
	r.Get("/healthz", app.healthHandler)
	r.Get("/debug/metrics", app.metricsHandler)
	r.Handle("/debug/vars", expvar.Handler())

	api := humachi.New(r, huma.DefaultConfig("Price Stock Merger API", "1.0.0"))
	app.registerAPI(api)
	return r
}
