package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Rupa-sharon/Financial-Reconciliation-Engine/pkg/logger"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Uploads.
		r.Post("/upload/transactions", s.handleUploadTransactions)
		r.Post("/upload/general-ledger", s.handleUploadGLEntries)

		// Runs.
		r.Post("/reconcile", s.handleReconcile)
		r.Post("/detect-anomalies", s.handleDetectAnomalies)

		// Queries.
		r.Get("/dashboard/stats", s.handleDashboardStats)
		r.Get("/reconciliation/results", s.handleListResults)
		r.Get("/anomalies", s.handleListAnomalies)
		r.Get("/data-quality", s.handleListQuality)

		// Export.
		r.Get("/export/reconciliation", s.handleExport)
	})

	return r
}

// requestLogger logs one line per request through the component logger
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				log.WithFields(logger.Fields{
					"request_id": middleware.GetReqID(r.Context()),
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     ww.Status(),
					"bytes":      ww.BytesWritten(),
					"duration":   time.Since(start).String(),
				}).Info("Request handled")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
