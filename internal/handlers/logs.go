package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sbilibin2017/gw-rate-predictor/internal/logger"
)

const defaultLogLimit = 50

// LogReader defines only the method needed by this handler.
type LogReader interface {
	Recent(ctx context.Context, limit int) ([]string, error)
}

// LogsResponse carries recent prediction audit log lines
// swagger:model LogsResponse
type LogsResponse struct {
	// Most recent log lines, oldest first
	Logs []string `json:"logs"`

	// Number of returned lines
	Count int `json:"count"`
}

// LogsErrorResponse represents an error response for the log query
// swagger:model LogsErrorResponse
type LogsErrorResponse struct {
	// Error message
	// default: Internal server error
	Error string `json:"error"`
}

// NewLogsHandler returns an HTTP handler serving the prediction audit log.
// @Summary Recent prediction logs
// @Description Returns the most recent prediction audit log lines, oldest first.
// @Tags logs
// @Produce json
// @Param limit query int false "Maximum lines to return" default(50)
// @Success 200 {object} handlers.LogsResponse "Recent log lines"
// @Failure 400 {object} handlers.LogsErrorResponse "Invalid limit"
// @Failure 500 {object} handlers.LogsErrorResponse "Internal server error"
// @Router /api/logs [get]
func NewLogsHandler(svc LogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultLogLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(LogsErrorResponse{Error: "limit must be a positive integer"})
				return
			}
			limit = parsed
		}

		lines, err := svc.Recent(r.Context(), limit)
		if err != nil {
			logger.Log.Errorw("failed to read prediction log", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(LogsErrorResponse{Error: "Internal server error"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(LogsResponse{Logs: lines, Count: len(lines)})
	}
}
