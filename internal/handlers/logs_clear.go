package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-rate-predictor/internal/logger"
)

// LogClearer defines only the method needed by this handler.
type LogClearer interface {
	Clear(ctx context.Context) error
}

// ClearLogsResponse acknowledges clearing of the prediction audit log
// swagger:model ClearLogsResponse
type ClearLogsResponse struct {
	// Clear status
	// default: success
	Status string `json:"status"`
}

// ClearLogsErrorResponse represents an error response for clearing logs
// swagger:model ClearLogsErrorResponse
type ClearLogsErrorResponse struct {
	// Error message
	// default: Internal server error
	Error string `json:"error"`
}

// NewClearLogsHandler returns an HTTP handler that truncates the audit log.
// @Summary Clear prediction logs
// @Description Removes all lines from the prediction audit log.
// @Tags logs
// @Produce json
// @Success 200 {object} handlers.ClearLogsResponse "Logs cleared"
// @Failure 500 {object} handlers.ClearLogsErrorResponse "Internal server error"
// @Router /api/logs/clear [post]
func NewClearLogsHandler(svc LogClearer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Clear(r.Context()); err != nil {
			logger.Log.Errorw("failed to clear prediction log", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ClearLogsErrorResponse{Error: "Internal server error"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ClearLogsResponse{Status: "success"})
	}
}
