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

// ModelEvaluator defines only the method needed by this handler.
type ModelEvaluator interface {
	Evaluate(ctx context.Context, pair string, start, end time.Time) (*services.EvaluationResult, error)
}

// EvaluateRequest represents the JSON body for a model evaluation
// swagger:model EvaluateRequest
type EvaluateRequest struct {
	// Currency pair to evaluate
	// required: true
	// default: USD_to_EUR
	CurrencyPair string `json:"currency_pair"`

	// First evaluated date, YYYY-MM-DD
	// required: true
	StartDate string `json:"start_date"`

	// Last evaluated date inclusive, YYYY-MM-DD
	// required: true
	EndDate string `json:"end_date"`
}

// EvaluateResponse reports model accuracy over a historical range
// swagger:model EvaluateResponse
type EvaluateResponse struct {
	// Currency pair evaluated
	// default: USD_to_EUR
	CurrencyPair string `json:"currency_pair"`

	// Root mean squared error
	RMSE float64 `json:"rmse"`

	// Mean absolute error
	MAE float64 `json:"mae"`

	// Number of compared observations
	TestPoints int `json:"test_points"`

	// First evaluated date, YYYY-MM-DD
	StartDate string `json:"start_date"`

	// Last evaluated date, YYYY-MM-DD
	EndDate string `json:"end_date"`

	// Stored actual rates in the range
	ActualValues []float64 `json:"actual_values"`

	// Model predictions for the same dates
	PredictedValues []float64 `json:"predicted_values"`
}

// EvaluateErrorResponse represents an error response for evaluation
// swagger:model EvaluateErrorResponse
type EvaluateErrorResponse struct {
	// Error message
	// default: No test data in the requested range
	Error string `json:"error"`
}

// NewEvaluateHandler returns an HTTP handler that backtests a trained model.
// @Summary Evaluate a model
// @Description Compares the persisted model's prediction against stored actual rates within an inclusive date range and reports RMSE and MAE.
// @Tags model
// @Accept json
// @Produce json
// @Param request body handlers.EvaluateRequest true "Evaluate Request"
// @Success 200 {object} handlers.EvaluateResponse "Evaluation metrics"
// @Failure 400 {object} handlers.EvaluateErrorResponse "Invalid request or no test data"
// @Failure 404 {object} handlers.EvaluateErrorResponse "Model not found"
// @Failure 500 {object} handlers.EvaluateErrorResponse "Internal server error"
// @Router /api/evaluate [post]
func NewEvaluateHandler(svc ModelEvaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EvaluateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode evaluate request", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(EvaluateErrorResponse{Error: "Invalid request body"})
			return
		}
		if req.CurrencyPair == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(EvaluateErrorResponse{Error: "Missing required field: currency_pair"})
			return
		}

		start, err := time.Parse(models.DateLayout, req.StartDate)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(EvaluateErrorResponse{Error: "Invalid start_date, expected YYYY-MM-DD"})
			return
		}
		end, err := time.Parse(models.DateLayout, req.EndDate)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(EvaluateErrorResponse{Error: "Invalid end_date, expected YYYY-MM-DD"})
			return
		}
		if end.Before(start) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(EvaluateErrorResponse{Error: "end_date must not precede start_date"})
			return
		}

		result, err := svc.Evaluate(r.Context(), req.CurrencyPair, start, end)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrModelNotFound):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(EvaluateErrorResponse{Error: err.Error()})
			case errors.Is(err, services.ErrNoTestData):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(EvaluateErrorResponse{Error: "No test data in the requested range"})
			default:
				logger.Log.Errorw("failed to evaluate model", "pair", req.CurrencyPair, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(EvaluateErrorResponse{Error: "Internal server error"})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(EvaluateResponse{
			CurrencyPair:    req.CurrencyPair,
			RMSE:            result.RMSE,
			MAE:             result.MAE,
			TestPoints:      result.Count,
			StartDate:       result.Start.Format(models.DateLayout),
			EndDate:         result.End.Format(models.DateLayout),
			ActualValues:    result.Actual,
			PredictedValues: result.Predicted,
		})
	}
}
