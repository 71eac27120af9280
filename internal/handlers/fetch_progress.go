package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-rate-predictor/internal/models"
)

// ProgressReader defines only the method needed by this handler.
type ProgressReader interface {
	Progress() models.FetchProgress
}

// NewFetchProgressHandler returns an HTTP handler reporting fetch progress.
// @Summary Fetch progress
// @Description Returns the current state of the background historical data fetch.
// @Tags data
// @Produce json
// @Success 200 {object} models.FetchProgress "Progress snapshot"
// @Router /api/fetch/progress [get]
func NewFetchProgressHandler(svc ProgressReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(svc.Progress())
	}
}
