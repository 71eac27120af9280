package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sbilibin2017/gw-rate-predictor/internal/logger"
	"github.com/sbilibin2017/gw-rate-predictor/internal/models"
)

// DateRanger defines only the method needed by this handler.
type DateRanger interface {
	DateRange(ctx context.Context) (min, max time.Time, ok bool, err error)
}

// DateRangeResponse reports the span of stored rate data
// swagger:model DateRangeResponse
type DateRangeResponse struct {
	// Whether any rate data is stored
	// default: true
	HasData bool `json:"has_data"`

	// Earliest stored date, YYYY-MM-DD
	MinDate string `json:"min_date,omitempty"`

	// Latest stored date, YYYY-MM-DD
	MaxDate string `json:"max_date,omitempty"`
}

// DateRangeErrorResponse represents an error response for the range query
// swagger:model DateRangeErrorResponse
type DateRangeErrorResponse struct {
	// Error message
	// default: Internal server error
	Error string `json:"error"`
}

// NewDateRangeHandler returns an HTTP handler reporting the stored date range.
// @Summary Stored data range
// @Description Returns the earliest and latest dates present in the stored rate series.
// @Tags rates
// @Produce json
// @Success 200 {object} handlers.DateRangeResponse "Date range"
// @Failure 500 {object} handlers.DateRangeErrorResponse "Internal server error"
// @Router /api/range [get]
func NewDateRangeHandler(svc DateRanger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		min, max, ok, err := svc.DateRange(r.Context())
		if err != nil {
			logger.Log.Errorw("failed to read date range", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(DateRangeErrorResponse{Error: "Internal server error"})
			return
		}

		resp := DateRangeResponse{HasData: ok}
		if ok {
			resp.MinDate = min.Format(models.DateLayout)
			resp.MaxDate = max.Format(models.DateLayout)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}
