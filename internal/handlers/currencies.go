package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-rate-predictor/internal/logger"
)

// CurrencyLister defines only the method needed by this handler.
type CurrencyLister interface {
	Currencies(ctx context.Context) ([]string, error)
}

// CurrenciesResponse lists the currency codes quoted by the rate source
// swagger:model CurrenciesResponse
type CurrenciesResponse struct {
	// Supported currency codes, sorted
	// default: ["EUR","GBP","USD"]
	Currencies []string `json:"currencies"`
}

// CurrenciesErrorResponse represents an error response for the currency listing
// swagger:model CurrenciesErrorResponse
type CurrenciesErrorResponse struct {
	// Error message
	// default: Internal server error
	Error string `json:"error"`
}

// NewCurrenciesHandler returns an HTTP handler listing supported currencies.
// @Summary List currencies
// @Description Returns the sorted currency codes the configured rate source quotes. Falls back to a built-in list when the source is unreachable.
// @Tags rates
// @Produce json
// @Success 200 {object} handlers.CurrenciesResponse "Supported currencies"
// @Failure 500 {object} handlers.CurrenciesErrorResponse "Internal server error"
// @Router /api/currencies [get]
func NewCurrenciesHandler(svc CurrencyLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currencies, err := svc.Currencies(r.Context())
		if err != nil {
			logger.Log.Errorw("failed to list currencies", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(CurrenciesErrorResponse{Error: "Internal server error"})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(CurrenciesResponse{Currencies: currencies})
	}
}
