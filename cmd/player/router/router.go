// Package router configures HTTP routes for the player's HTTP API.
//
// The player exposes an HTTP server on port 8082 (configurable) that provides
// chunk inspection, health checks, and Prometheus metrics. This package sets
// up the routes for that HTTP server.
//
// Routes configured:
//   - GET /chunks/current?object=<id>&index=<n> - Retrieve a stored chunk
//   - GET /healthz - Health check endpoint (returns 200 OK)
//   - GET /metrics - Prometheus metrics endpoint
//
// The /chunks/current endpoint reads straight from the chunk store, so it
// reflects what playback caches would be served on their next fetch.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/karu-dev/chunkplay/pkg/httpx"
	"github.com/karu-dev/chunkplay/pkg/storage"
)

var objectIDRegex = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9_-]{0,251}[a-zA-Z0-9])?$`)

// SetupRoutes configures HTTP endpoints for the player.
func SetupRoutes(store storage.Store, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.Handle("/healthz", httpx.HealthHandler())

	// Chunk inspection endpoint
	mux.HandleFunc("/chunks/current", handleGetChunk(store, logger))

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// handleGetChunk returns a handler for GET /chunks/current?object=<id>&index=<n>.
func handleGetChunk(store storage.Store, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		objectID := r.URL.Query().Get("object")
		if objectID == "" {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "object parameter required")
			return
		}

		if !objectIDRegex.MatchString(objectID) {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "invalid object id format")
			return
		}

		indexParam := r.URL.Query().Get("index")
		if indexParam == "" {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "index parameter required")
			return
		}

		index, err := strconv.Atoi(indexParam)
		if err != nil || index < 0 {
			httpx.WriteErrorMessage(w, http.StatusBadRequest, "index must be a non-negative integer")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		chunk, found, err := store.GetChunk(ctx, objectID, index)
		if err != nil {
			logger.Error("failed to get chunk", "object", objectID, "index", index, "error", err)
			httpx.WriteErrorMessage(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if !found {
			httpx.WriteErrorMessage(w, http.StatusNotFound, fmt.Sprintf("chunk %d not found for object %q", index, objectID))
			return
		}

		if err := httpx.WriteJSON(w, http.StatusOK, chunk); err != nil {
			logger.Error("failed to write JSON response", "error", err)
		}
	}
}
