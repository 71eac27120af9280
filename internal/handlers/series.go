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

// SeriesReader defines only the method needed by this handler.
type SeriesReader interface {
	SeriesFor(ctx context.Context, pair string) ([]models.RatePoint, error)
}

// SeriesResponse carries the dated observations of one currency pair
// swagger:model SeriesResponse
type SeriesResponse struct {
	// Currency pair the series belongs to
	// default: USD_to_EUR
	CurrencyPair string `json:"currency_pair"`

	// Observation dates, YYYY-MM-DD, ascending
	Dates []string `json:"dates"`

	// Observed rates, aligned with dates
	Rates []float64 `json:"rates"`
}

// SeriesErrorResponse represents an error response for the series query
// swagger:model SeriesErrorResponse
type SeriesErrorResponse struct {
	// Error message
	// default: No data available for currency pair
	Error string `json:"error"`
}

// NewSeriesHandler returns an HTTP handler serving one pair's rate series.
// @Summary Rate series for a pair
// @Description Returns all stored observations for the requested currency pair in date order.
// @Tags rates
// @Produce json
// @Param pair query string true "Currency pair, e.g. USD_to_EUR"
// @Success 200 {object} handlers.SeriesResponse "Rate series"
// @Failure 400 {object} handlers.SeriesErrorResponse "Missing pair or no data"
// @Failure 500 {object} handlers.SeriesErrorResponse "Internal server error"
// @Router /api/series [get]
func NewSeriesHandler(svc SeriesReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pair := r.URL.Query().Get("pair")
		if pair == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(SeriesErrorResponse{Error: "Missing required query parameter: pair"})
			return
		}

		points, err := svc.SeriesFor(r.Context(), pair)
		if err != nil {
			if errors.Is(err, services.ErrNoDataAvailable) {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(SeriesErrorResponse{Error: err.Error()})
				return
			}
			logger.Log.Errorw("failed to read rate series", "pair", pair, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(SeriesErrorResponse{Error: "Internal server error"})
			return
		}

		resp := SeriesResponse{
			CurrencyPair: pair,
			Dates:        make([]string, len(points)),
			Rates:        make([]float64, len(points)),
		}
		for i, p := range points {
			resp.Dates[i] = p.Date.Format(models.DateLayout)
			resp.Rates[i] = p.Rate
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}
