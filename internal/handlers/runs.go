package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/ghautomation/testpage/internal/repository"
	"github.com/ghautomation/testpage/internal/services"
)

const maxRunsLimit = 100

// RunsHandler serves the recorded verification runs as JSON
type RunsHandler struct {
	runService services.RunService
}

// NewRunsHandler creates a new runs handler
func NewRunsHandler(runService services.RunService) *RunsHandler {
	return &RunsHandler{
		runService: runService,
	}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ServeHTTP handles GET /api/runs and GET /api/runs/{id}
func (h *RunsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/runs"), "/")
	if id == "" {
		h.list(w, r)
		return
	}
	h.get(w, id)
}

func (h *RunsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			sendErrorResponse(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxRunsLimit)
	}

	runs, err := h.runService.ListRuns(limit)
	if err != nil {
		log.Printf("Error listing runs: %v", err)
		sendErrorResponse(w, "Failed to list runs", statusFor(err))
		return
	}

	sendJSON(w, runs)
}

func (h *RunsHandler) get(w http.ResponseWriter, id string) {
	run, err := h.runService.GetRun(id)
	if err != nil {
		if !errors.Is(err, repository.ErrRunNotFound) {
			log.Printf("Error getting run %s: %v", id, err)
		}
		sendErrorResponse(w, "Failed to get run", statusFor(err))
		return
	}

	sendJSON(w, run)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrHistoryDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func sendJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// sendErrorResponse sends a JSON error response
func sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
