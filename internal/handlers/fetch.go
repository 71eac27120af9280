package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/sbilibin2017/gw-rate-predictor/internal/logger"
	"github.com/sbilibin2017/gw-rate-predictor/internal/services"
)

// FetchStarter defines only the method needed by this handler.
type FetchStarter interface {
	Start(ctx context.Context) (uuid.UUID, error)
}

// FetchResponse acknowledges a started background fetch
// swagger:model FetchResponse
type FetchResponse struct {
	// Fetch status
	// default: started
	Status string `json:"status"`

	// Identifier of the background task
	TaskID string `json:"task_id"`
}

// FetchErrorResponse represents an error response for starting a fetch
// swagger:model FetchErrorResponse
type FetchErrorResponse struct {
	// Error message
	// default: Historical data fetch already in progress
	Error string `json:"error"`
}

// NewFetchHandler returns an HTTP handler starting a background data fetch.
// @Summary Fetch historical data
// @Description Starts a background task that fetches missing historical rates from the configured source and merges them into the store. Only one fetch runs at a time.
// @Tags data
// @Produce json
// @Success 202 {object} handlers.FetchResponse "Fetch started"
// @Failure 409 {object} handlers.FetchErrorResponse "Fetch already in progress"
// @Failure 500 {object} handlers.FetchErrorResponse "Internal server error"
// @Router /api/fetch [post]
func NewFetchHandler(svc FetchStarter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		taskID, err := svc.Start(r.Context())
		if err != nil {
			if errors.Is(err, services.ErrFetchInProgress) {
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(FetchErrorResponse{Error: "Historical data fetch already in progress"})
				return
			}
			logger.Log.Errorw("failed to start data fetch", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(FetchErrorResponse{Error: "Internal server error"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(FetchResponse{
			Status: "started",
			TaskID: taskID.String(),
		})
	}
}
