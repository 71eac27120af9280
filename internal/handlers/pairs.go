package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-rate-predictor/internal/logger"
)

// PairsLister defines only the method needed by this handler.
type PairsLister interface {
	Pairs(ctx context.Context) ([]string, error)
}

// PairsResponse lists the currency pairs available for training and prediction
// swagger:model PairsResponse
type PairsResponse struct {
	// Available currency pairs
	// default: ["USD_to_EUR"]
	Pairs []string `json:"pairs"`
}

// PairsErrorResponse represents an error response for the pairs listing
// swagger:model PairsErrorResponse
type PairsErrorResponse struct {
	// Error message
	// default: Internal server error
	Error string `json:"error"`
}

// NewPairsHandler returns an HTTP handler listing available currency pairs.
// @Summary List currency pairs
// @Description Returns the currency pairs present in the stored rate data, or a default list when no data has been fetched yet.
// @Tags rates
// @Produce json
// @Success 200 {object} handlers.PairsResponse "Available pairs"
// @Failure 500 {object} handlers.PairsErrorResponse "Internal server error"
// @Router /api/pairs [get]
func NewPairsHandler(svc PairsLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pairs, err := svc.Pairs(r.Context())
		if err != nil {
			logger.Log.Errorw("failed to list currency pairs", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(PairsErrorResponse{Error: "Internal server error"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(PairsResponse{Pairs: pairs})
	}
}
