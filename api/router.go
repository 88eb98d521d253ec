package api

import (
	"net/http"
	"time"
	"timetracker/api/router/handlers"
	"timetracker/core"
	"timetracker/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options configures the HTTP surface.
type Options struct {
	// RequestTimeout bounds every request, including its storage calls.
	RequestTimeout time.Duration
	// Compress enables brotli response compression.
	Compress bool
}

// NewRouter creates and configures the chi router for the tracker API.
func NewRouter(svc *core.EventService, db handlers.Pinger, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	if opts.Compress {
		r.Use(brotliCompress)
	}

	handlers.RegisterHealthRoutes(r, db)
	handlers.RegisterVersionRoutes(r)
	handlers.RegisterEventRoutes(r, handlers.NewEventHandler(svc))
	handlers.RegisterTagRoutes(r, handlers.NewTagHandler(svc))
	handlers.RegisterTaskRoutes(r, handlers.NewTaskHandler(svc))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		logger.Error("API CATCH-ALL: Unhandled route: %s %s", r.Method, r.URL.Path)
		http.NotFound(w, r)
	})

	return r
}
