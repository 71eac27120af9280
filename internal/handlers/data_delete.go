package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-rate-predictor/internal/logger"
)

// DataDeleter defines only the method needed by this handler.
type DataDeleter interface {
	DeleteAll(ctx context.Context) error
}

// DeleteDataResponse acknowledges deletion of all stored rate data
// swagger:model DeleteDataResponse
type DeleteDataResponse struct {
	// Deletion status
	// default: success
	Status string `json:"status"`

	// Human readable confirmation
	// default: All rate data deleted
	Message string `json:"message"`
}

// DeleteDataErrorResponse represents an error response for data deletion
// swagger:model DeleteDataErrorResponse
type DeleteDataErrorResponse struct {
	// Error message
	// default: Internal server error
	Error string `json:"error"`
}

// NewDeleteDataHandler returns an HTTP handler removing all stored rate data.
// @Summary Delete all data
// @Description Removes the persisted rate series. Trained models and the prediction log are untouched.
// @Tags data
// @Produce json
// @Success 200 {object} handlers.DeleteDataResponse "Data deleted"
// @Failure 500 {object} handlers.DeleteDataErrorResponse "Internal server error"
// @Router /api/data [delete]
func NewDeleteDataHandler(svc DataDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteAll(r.Context()); err != nil {
			logger.Log.Errorw("failed to delete rate data", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(DeleteDataErrorResponse{Error: "Internal server error"})
			return
		}

		logger.Log.Infow("all rate data deleted")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(DeleteDataResponse{
			Status:  "success",
			Message: "All rate data deleted",
		})
	}
}
