package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-rate-predictor/internal/logger"
	"github.com/sbilibin2017/gw-rate-predictor/internal/models"
	"github.com/sbilibin2017/gw-rate-predictor/internal/services"
)

// ModelRetrainer defines only the method needed by this handler.
type ModelRetrainer interface {
	Retrain(ctx context.Context, pair string) (*services.TrainResult, error)
}

// RetrainRequest represents the JSON body for retraining a model
// swagger:model RetrainRequest
type RetrainRequest struct {
	// Currency pair to retrain
	// required: true
	// default: USD_to_EUR
	CurrencyPair string `json:"currency_pair"`
}

// RetrainResponse represents a successful retraining run
// swagger:model RetrainResponse
type RetrainResponse struct {
	// Success message
	// default: Model retrained successfully
	Message string `json:"message"`

	// Currency pair the model was retrained on
	// default: USD_to_EUR
	CurrencyPair string `json:"currency_pair"`

	// Number of observations used
	// default: 100
	DataPoints int `json:"data_points"`

	// First training date, YYYY-MM-DD
	TrainingStart string `json:"training_start"`

	// Last training date, YYYY-MM-DD
	TrainingEnd string `json:"training_end"`
}

// RetrainErrorResponse represents an error response for retraining
// swagger:model RetrainErrorResponse
type RetrainErrorResponse struct {
	// Error message
	// default: Insufficient data for training
	Error string `json:"error"`
}

// NewRetrainHandler returns an HTTP handler that retrains a model for one pair.
// @Summary Retrain a model
// @Description Refits the rolling-average model over the current stored series, fully replacing the previous model state.
// @Tags model
// @Accept json
// @Produce json
// @Param request body handlers.RetrainRequest true "Retrain Request"
// @Success 200 {object} handlers.RetrainResponse "Model retrained"
// @Failure 400 {object} handlers.RetrainErrorResponse "Invalid request or insufficient data"
// @Failure 500 {object} handlers.RetrainErrorResponse "Internal server error"
// @Router /api/retrain [post]
func NewRetrainHandler(svc ModelRetrainer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RetrainRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode retrain request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(RetrainErrorResponse{Error: "Invalid request body"})
			return
		}
		if req.CurrencyPair == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(RetrainErrorResponse{Error: "Missing required field: currency_pair"})
			return
		}

		result, err := svc.Retrain(r.Context(), req.CurrencyPair)
		if err != nil {
			if errors.Is(err, services.ErrNoDataAvailable) || errors.Is(err, services.ErrInsufficientData) {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(RetrainErrorResponse{Error: err.Error()})
				return
			}
			logger.Log.Errorw("failed to retrain model", "pair", req.CurrencyPair, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(RetrainErrorResponse{Error: "Internal server error"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(RetrainResponse{
			Message:       "Model retrained successfully",
			CurrencyPair:  result.CurrencyPair,
			DataPoints:    result.DataPoints,
			TrainingStart: result.Start.Format(models.DateLayout),
			TrainingEnd:   result.End.Format(models.DateLayout),
		})
	}
}
