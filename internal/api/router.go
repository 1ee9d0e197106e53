package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/EdgesSeeker/ma-monitor/internal/api/handlers"
	"github.com/EdgesSeeker/ma-monitor/pkg/logger"
)

// NewRouter creates and configures the HTTP router
// SSOT: route registration happens only in this function
func NewRouter(positionHandler *handlers.PositionHandler, stream http.Handler, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Position endpoints
	api.HandleFunc("/positions", positionHandler.Add).Methods("POST")
	api.HandleFunc("/positions", positionHandler.List).Methods("GET")
	api.HandleFunc("/positions/{id}", positionHandler.Remove).Methods("DELETE")

	// Engine endpoints
	api.HandleFunc("/status", positionHandler.Status).Methods("GET")
	api.HandleFunc("/check", positionHandler.Check).Methods("GET", "POST")

	// Live alert stream
	if stream != nil {
		api.Handle("/stream", stream).Methods("GET")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "ma-monitor-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
