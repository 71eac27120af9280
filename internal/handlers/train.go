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

// ModelTrainer defines only the method needed by this handler.
type ModelTrainer interface {
	Train(ctx context.Context, pair string) (*services.TrainResult, error)
}

// TrainRequest represents the JSON body for training a model
// swagger:model TrainRequest
type TrainRequest struct {
	// Currency pair to train on
	// required: true
	// default: USD_to_EUR
	CurrencyPair string `json:"currency_pair"`
}

// TrainResponse represents a successful training run
// swagger:model TrainResponse
type TrainResponse struct {
	// Success message
	// default: Model trained successfully
	Message string `json:"message"`

	// Currency pair the model was trained on
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

// TrainErrorResponse represents an error response for training
// swagger:model TrainErrorResponse
type TrainErrorResponse struct {
	// Error message
	// default: Insufficient data for training
	Error string `json:"error"`
}

// NewTrainHandler returns an HTTP handler that trains a model for one pair.
// @Summary Train a model
// @Description Fits a rolling-average model over the stored series of the requested pair and persists it, replacing any previous model.
// @Tags model
// @Accept json
// @Produce json
// @Param request body handlers.TrainRequest true "Train Request"
// @Success 200 {object} handlers.TrainResponse "Model trained"
// @Failure 400 {object} handlers.TrainErrorResponse "Invalid request or insufficient data"
// @Failure 500 {object} handlers.TrainErrorResponse "Internal server error"
// @Router /api/train [post]
func NewTrainHandler(svc ModelTrainer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TrainRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode train request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TrainErrorResponse{Error: "Invalid request body"})
			return
		}
		if req.CurrencyPair == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(TrainErrorResponse{Error: "Missing required field: currency_pair"})
			return
		}

		result, err := svc.Train(r.Context(), req.CurrencyPair)
		if err != nil {
			if errors.Is(err, services.ErrNoDataAvailable) || errors.Is(err, services.ErrInsufficientData) {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(TrainErrorResponse{Error: err.Error()})
				return
			}
			logger.Log.Errorw("failed to train model", "pair", req.CurrencyPair, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(TrainErrorResponse{Error: "Internal server error"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(TrainResponse{
			Message:       "Model trained successfully",
			CurrencyPair:  result.CurrencyPair,
			DataPoints:    result.DataPoints,
			TrainingStart: result.Start.Format(models.DateLayout),
			TrainingEnd:   result.End.Format(models.DateLayout),
		})
	}
}
