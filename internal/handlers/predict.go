package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sbilibin2017/gw-rate-predictor/internal/logger"
	"github.com/sbilibin2017/gw-rate-predictor/internal/models"
	"github.com/sbilibin2017/gw-rate-predictor/internal/services"
)

const (
	defaultDaysAhead = 7
	maxDaysAhead     = 365
)

// PredictModeler defines the model operations this handler drives. A missing
// model is trained on the fly before predicting.
type PredictModeler interface {
	LoadModel(ctx context.Context, pair string) (bool, error)
	Train(ctx context.Context, pair string) (*services.TrainResult, error)
	Predict(ctx context.Context, pair string, startDate time.Time, daysAhead int) (*services.PredictResult, error)
	Evaluate(ctx context.Context, pair string, start, end time.Time) (*services.EvaluationResult, error)
}

// PredictRequest represents the JSON body for requesting predictions
// swagger:model PredictRequest
type PredictRequest struct {
	// Currency pair to predict
	// required: true
	// default: USD_to_EUR
	CurrencyPair string `json:"currency_pair"`

	// First predicted date, YYYY-MM-DD; defaults to today
	PredictionDate string `json:"prediction_date"`

	// Number of consecutive days to predict, 1 to 365
	// default: 7
	DaysAhead int `json:"days_ahead"`
}

// PredictedDay is a single predicted observation
// swagger:model PredictedDay
type PredictedDay struct {
	// Predicted date, YYYY-MM-DD
	Date string `json:"date"`

	// Predicted rate
	// default: 1.105
	PredictedRate float64 `json:"predicted_rate"`

	// Fixed model confidence
	// default: 0.7
	Confidence float64 `json:"confidence"`
}

// PredictResponse carries the predictions plus model metadata
// swagger:model PredictResponse
type PredictResponse struct {
	// Currency pair predicted
	// default: USD_to_EUR
	CurrencyPair string `json:"currency_pair"`

	// Model algorithm tag
	// default: simple_average
	ModelType string `json:"model_type"`

	// Predicted days, consecutive from prediction_date
	Predictions []PredictedDay `json:"predictions"`

	// Observations the model was trained on
	// default: 100
	TrainingDataPoints int `json:"training_data_points"`

	// First training date, YYYY-MM-DD
	TrainingStart string `json:"training_start"`

	// Last training date, YYYY-MM-DD
	TrainingEnd string `json:"training_end"`

	// Rolling window length
	// default: 10
	WindowSize int `json:"window_size"`

	// Backtest RMSE, present only when actuals exist for the predicted span
	RMSE *float64 `json:"rmse,omitempty"`
}

// PredictErrorResponse represents an error response for predictions
// swagger:model PredictErrorResponse
type PredictErrorResponse struct {
	// Error message
	// default: Insufficient data for training
	Error string `json:"error"`
}

// NewPredictHandler returns an HTTP handler producing rate predictions.
// @Summary Predict rates
// @Description Predicts daily rates for a currency pair from the persisted rolling-average model, training one first when none exists. When the predicted span lies in stored history the response includes a backtest RMSE.
// @Tags model
// @Accept json
// @Produce json
// @Param request body handlers.PredictRequest true "Predict Request"
// @Success 200 {object} handlers.PredictResponse "Predictions"
// @Failure 400 {object} handlers.PredictErrorResponse "Invalid request or insufficient data"
// @Failure 500 {object} handlers.PredictErrorResponse "Internal server error"
// @Router /api/predict [post]
func NewPredictHandler(svc PredictModeler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req PredictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode predict request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(PredictErrorResponse{Error: "Invalid request body"})
			return
		}
		if req.CurrencyPair == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(PredictErrorResponse{Error: "Missing required field: currency_pair"})
			return
		}

		startDate := models.Day(time.Now().UTC())
		if req.PredictionDate != "" {
			parsed, err := time.Parse(models.DateLayout, req.PredictionDate)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(PredictErrorResponse{Error: "Invalid prediction_date, expected YYYY-MM-DD"})
				return
			}
			startDate = parsed
		}

		daysAhead := req.DaysAhead
		if daysAhead == 0 {
			daysAhead = defaultDaysAhead
		}
		if daysAhead < 1 || daysAhead > maxDaysAhead {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(PredictErrorResponse{Error: "days_ahead must be between 1 and 365"})
			return
		}

		exists, err := svc.LoadModel(ctx, req.CurrencyPair)
		if err != nil {
			logger.Log.Errorw("failed to load model", "pair", req.CurrencyPair, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(PredictErrorResponse{Error: "Internal server error"})
			return
		}
		if !exists {
			logger.Log.Infow("no persisted model, training before predict", "pair", req.CurrencyPair)
			if _, err := svc.Train(ctx, req.CurrencyPair); err != nil {
				if errors.Is(err, services.ErrNoDataAvailable) || errors.Is(err, services.ErrInsufficientData) {
					w.WriteHeader(http.StatusBadRequest)
					json.NewEncoder(w).Encode(PredictErrorResponse{Error: err.Error()})
					return
				}
				logger.Log.Errorw("failed to train model before predict", "pair", req.CurrencyPair, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(PredictErrorResponse{Error: "Internal server error"})
				return
			}
		}

		result, err := svc.Predict(ctx, req.CurrencyPair, startDate, daysAhead)
		if err != nil {
			logger.Log.Errorw("failed to predict", "pair", req.CurrencyPair, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(PredictErrorResponse{Error: "Internal server error"})
			return
		}

		resp := PredictResponse{
			CurrencyPair:       result.CurrencyPair,
			ModelType:          result.ModelType,
			Predictions:        make([]PredictedDay, len(result.Predictions)),
			TrainingDataPoints: result.TrainingPoints,
			TrainingStart:      result.TrainingStart,
			TrainingEnd:        result.TrainingEnd,
			WindowSize:         result.WindowSize,
		}
		for i, p := range result.Predictions {
			resp.Predictions[i] = PredictedDay{
				Date:          p.Date.Format(models.DateLayout),
				PredictedRate: p.PredictedRate,
				Confidence:    p.Confidence,
			}
		}

		// Backtest against stored actuals when the span overlaps history.
		spanEnd := startDate.AddDate(0, 0, daysAhead-1)
		if eval, err := svc.Evaluate(ctx, req.CurrencyPair, startDate, spanEnd); err == nil {
			rmse := eval.RMSE
			resp.RMSE = &rmse
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}
