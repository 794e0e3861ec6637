package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/wattwise/bill-ingest-service/internal/auth"
	"github.com/wattwise/bill-ingest-service/internal/classify"
	"github.com/wattwise/bill-ingest-service/internal/db"
	"github.com/wattwise/bill-ingest-service/internal/dispatch"
	"github.com/wattwise/bill-ingest-service/internal/logging"
	"github.com/wattwise/bill-ingest-service/internal/models"
	"github.com/wattwise/bill-ingest-service/internal/storage"
)

const (
	MaxUploadSize = 10 * 1024 * 1024 // 10MB
	Version       = "3.0.0"
)

// Extractor reads bill documents with a vision model
type Extractor interface {
	Extract(ctx context.Context, docs []models.Document) (*models.Extraction, error)
}

// EndpointResolver returns the current service to URL map
type EndpointResolver interface {
	Endpoints(ctx context.Context) map[string]string
}

// Dispatcher executes the planned billing calls
type Dispatcher interface {
	Dispatch(ctx context.Context, specs []dispatch.CallSpec, file *models.Document) ([]dispatch.CallResult, bool)
}

// Retrier re-executes one failed billing call
type Retrier interface {
	Retry(ctx context.Context, req dispatch.RetryRequest) (dispatch.RetryResult, error)
}

// UploadFunc stores an original document and returns its file ref
type UploadFunc func(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)

// PresignFunc returns a temporary URL for a stored file ref
type PresignFunc func(ctx context.Context, ref string) (string, error)

// Dependencies are the collaborators a Handler needs. Upload and Presign may
// be nil when no object storage is configured.
type Dependencies struct {
	Extractor  Extractor
	Endpoints  EndpointResolver
	Dispatcher Dispatcher
	Retrier    Retrier
	Upload     UploadFunc
	Presign    PresignFunc
	Logger     zerolog.Logger
}

// Handler handles HTTP requests for bill processing
type Handler struct {
	config     *models.Config
	classifier classify.Config
	deps       Dependencies
}

// NewHandler creates a new API handler
func NewHandler(config *models.Config, deps Dependencies) *Handler {
	return &Handler{
		config:     config,
		classifier: classify.FromModel(config.Classifier),
		deps:       deps,
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()
	router.Use(logging.Middleware(h.deps.Logger))
	if auth.Enabled() {
		router.Use(auth.JWTMiddleware)
	}

	// Main endpoints
	router.HandleFunc("/api/process-bill", h.ProcessBill).Methods("POST")
	router.HandleFunc("/api/classify", h.ClassifyExtraction).Methods("POST")
	router.HandleFunc("/api/retry-call", h.RetryCall).Methods("POST")

	// Health check
	router.HandleFunc("/health", h.Health).Methods("GET")

	return router
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Classifier string            `json:"classifier_version"`
	Timestamp  string            `json:"timestamp"`
	Uptime     string            `json:"uptime"`
	Memory     MemoryStats       `json:"memory"`
	Database   ServiceStatus     `json:"database"`
	Storage    ServiceStatus     `json:"storage"`
	AI         map[string]string `json:"ai"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health endpoint. The database and storage are optional, so only a missing
// extractor makes the service degraded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:     "healthy",
		Version:    Version,
		Classifier: h.classifier.Version,
		Timestamp:  time.Now().Format(time.RFC3339),
		Uptime:     time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		Database: checkDatabase(),
		Storage:  checkStorage(),
		AI: map[string]string{
			"defaultProvider": h.config.AI.DefaultProvider,
		},
	}

	if h.deps.Extractor == nil {
		response.Status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	json.NewEncoder(w).Encode(response)
}

// checkDatabase reports whether the endpoint store is connected
func checkDatabase() ServiceStatus {
	if db.Pool == nil {
		return ServiceStatus{
			Available: false,
			Error:     "database pool not initialized, using configured endpoints",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "PostgreSQL",
	}
}

// checkStorage verifies MinIO connection
func checkStorage() ServiceStatus {
	if !storage.Enabled() {
		return ServiceStatus{
			Available: false,
			Error:     "storage client not initialized, retries need a file URL",
		}
	}

	return ServiceStatus{
		Available: true,
		Version:   "MinIO S3",
	}
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// sendJSON writes v with the given status
func (h *Handler) sendJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}
