package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/marinelabs/sailgraph/pkg/temporal"
)

// TaskQueue is the Temporal task queue shared by the server and worker
const TaskQueue = "sailgraph-task-queue"

// Server represents the HTTP server for the sailgraph service
type Server struct {
	logger         *slog.Logger
	temporalClient client.Client
	addr           string
}

// NewServer creates a new HTTP server
func NewServer(logger *slog.Logger, temporalClient client.Client, addr string) *Server {
	return &Server{
		logger:         logger,
		temporalClient: temporalClient,
		addr:           addr,
	}
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()

	// Register routes
	mux.HandleFunc("POST /tracks/{id}/sentences", s.handleIngestSentences)
	mux.HandleFunc("POST /tracks/{id}/render", s.handleRender)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Add middleware
	handler := s.loggingMiddleware(mux)

	server := &http.Server{
		Addr:    s.addr,
		Handler: handler,
	}

	s.logger.Info("Starting HTTP server", "addr", s.addr)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

// Sentence ingestion endpoint
func (s *Server) handleIngestSentences(w http.ResponseWriter, r *http.Request) {
	trackID := r.PathValue("id")
	if trackID == "" {
		s.respondError(w, http.StatusBadRequest, "track ID is required")
		return
	}

	var lines []string
	if err := json.NewDecoder(r.Body).Decode(&lines); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if len(lines) == 0 {
		s.respondError(w, http.StatusBadRequest, "at least one sentence is required")
		return
	}

	s.logger.Info("Ingesting sentences", "trackID", trackID, "count", len(lines))

	// Send to Temporal workflow via signal
	workflowID := temporal.GenerateIngestionWorkflowID(trackID)

	// Use SignalWithStart to ensure workflow exists
	signal := temporal.SentenceSignal{
		Lines: lines,
	}

	_, err := s.temporalClient.SignalWithStartWorkflow(
		r.Context(),
		workflowID,
		temporal.SentenceSignalName,
		signal,
		client.StartWorkflowOptions{
			ID:        workflowID,
			TaskQueue: TaskQueue,
		},
		temporal.IngestionWorkflow,
		trackID,
	)

	if err != nil {
		s.logger.Error("Failed to signal workflow", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to ingest sentences")
		return
	}

	s.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"message":        "sentences queued for ingestion",
		"track_id":       trackID,
		"sentence_count": len(lines),
	})
}

// Render endpoint: runs the full bin-and-compose pipeline and returns the
// raster as image/png
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	trackID := r.PathValue("id")
	if trackID == "" {
		s.respondError(w, http.StatusBadRequest, "track ID is required")
		return
	}

	var request temporal.RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Ensure track ID matches
	request.TrackID = trackID

	s.logger.Info("Processing render", "trackID", trackID,
		"width", request.Width, "height", request.Height)

	workflowID := temporal.GenerateRenderWorkflowID(trackID)

	workflowRun, err := s.temporalClient.ExecuteWorkflow(
		r.Context(),
		client.StartWorkflowOptions{
			ID:        workflowID,
			TaskQueue: TaskQueue,
		},
		temporal.RenderWorkflow,
		request,
	)

	if err != nil {
		s.logger.Error("Failed to start render workflow", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to start render")
		return
	}

	// Wait for result
	var result *temporal.RenderResult
	err = workflowRun.Get(r.Context(), &result)
	if err != nil {
		s.logger.Error("Render workflow failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "render execution failed")
		return
	}

	s.logger.Info("Render completed", "trackID", trackID,
		"points", result.PointCount, "columns", result.Columns)

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.PNG); err != nil {
		s.logger.Error("Failed to write PNG response", "error", err)
	}
}

// Health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Middleware for request logging
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap ResponseWriter to capture status code
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		s.logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration", duration,
			"user_agent", r.UserAgent(),
		)
	})
}

// Response helpers
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.logger.Warn("HTTP error response", "status", status, "message", message)
	s.respondJSON(w, status, map[string]string{"error": message})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
