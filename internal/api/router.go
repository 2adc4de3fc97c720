package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/quarryfs/quarry/internal/api/handlers"
	"github.com/quarryfs/quarry/internal/logger"
	"github.com/quarryfs/quarry/pkg/catalog"
	"github.com/quarryfs/quarry/pkg/field"
)

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET /health - Liveness probe
//   - GET /health/ready - Readiness probe (checks the catalog store)
//   - GET /api/v1/fields - Configured field list
//   - POST /api/v1/fields/{handle}/uploads - File upload and ingestion
//   - POST /api/v1/fields/{handle}/target - Upload folder preview
//   - GET /api/v1/assets/{id} - Asset lookup
//   - GET /api/v1/folders/{id} - Folder lookup
func NewRouter(registry *field.Registry, store catalog.Store, maxUploadBytes int64) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	healthHandler := handlers.NewHealthHandler(store)

	// Health routes
	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	fieldHandler := handlers.NewFieldHandler(registry)
	catalogHandler := handlers.NewCatalogHandler(store)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/fields", func(r chi.Router) {
			r.Get("/", fieldHandler.List)

			r.Route("/{handle}", func(r chi.Router) {
				r.With(bodyLimit(maxUploadBytes)).Post("/uploads", fieldHandler.Upload)
				r.Post("/target", fieldHandler.Target)
			})
		})

		r.Get("/assets/{id}", catalogHandler.GetAsset)
		r.Get("/folders/{id}", catalogHandler.GetFolder)
	})

	return r
}

// bodyLimit caps the request body size. Uploads carry whole file
// payloads, so the cap is enforced per route rather than globally.
func bodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// isHealthPath returns true if the request path is a healthcheck endpoint.
func isHealthPath(path string) bool {
	return path == "/health" || strings.HasPrefix(path, "/health/")
}

// requestLogger is a custom middleware that logs requests using the internal logger.
//
// It logs:
//   - Request start (DEBUG level): method, path, remote addr
//   - Request completion (INFO level): method, path, status, duration
//   - Healthcheck requests are logged at DEBUG level to reduce noise
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		}

		// Log healthcheck requests at DEBUG to avoid polluting logs in k8s
		if isHealthPath(r.URL.Path) {
			logger.Debug("API request completed", logArgs...)
		} else {
			logger.Info("API request completed", logArgs...)
		}
	})
}
