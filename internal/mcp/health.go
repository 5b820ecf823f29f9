package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse represents the JSON response from the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Index     string `json:"index"`
	Summaries int    `json:"summaries"`
	Timestamp string `json:"timestamp"`
}

// HealthChecker interface defines the health check dependency.
// The Qdrant storage layer implements this via its Health() method.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NewHealthHandler creates an HTTP handler for the /health endpoint.
// index may be nil when chunk embeddings are kept in memory; in that case the
// service is always healthy. count reports the number of stored summaries.
func NewHealthHandler(index HealthChecker, count func() int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		response := HealthResponse{
			Status:    "healthy",
			Index:     "memory",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		if count != nil {
			response.Summaries = count()
		}

		status := http.StatusOK
		if index != nil {
			if err := index.Health(ctx); err != nil {
				response.Status = "unhealthy"
				response.Index = "disconnected"
				status = http.StatusServiceUnavailable
			} else {
				response.Index = "connected"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(response)
	}
}
