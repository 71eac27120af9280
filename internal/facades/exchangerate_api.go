package facades

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sbilibin2017/gw-rate-predictor/internal/logger"
)

var (
	// ErrNotAvailable means the source has no rates for the requested date.
	// Callers may skip the date and continue.
	ErrNotAvailable = errors.New("no rates available for the requested date")

	// ErrInvalidAPIKey means the source rejected the credentials. Further
	// requests will fail the same way, so callers should stop.
	ErrInvalidAPIKey = errors.New("exchange rate API rejected the API key")
)

// DefaultAPIBaseURL is the exchangerate-api.com v6 endpoint.
const DefaultAPIBaseURL = "https://v6.exchangerate-api.com/v6"

// ExchangeRateAPIFacade fetches currency snapshots from exchangerate-api.com.
type ExchangeRateAPIFacade struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewExchangeRateAPIFacade creates a facade for the given endpoint and key.
// An empty baseURL falls back to the public API.
func NewExchangeRateAPIFacade(baseURL, apiKey string) *ExchangeRateAPIFacade {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	return &ExchangeRateAPIFacade{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// Name identifies the source in logs and progress messages.
func (f *ExchangeRateAPIFacade) Name() string { return "exchangerate-api" }

// LatestRates fetches the current conversion rates for a base currency.
func (f *ExchangeRateAPIFacade) LatestRates(ctx context.Context, base string) (map[string]float64, error) {
	url := fmt.Sprintf("%s/%s/latest/%s", f.baseURL, f.apiKey, base)
	return f.snapshot(ctx, url)
}

// HistoricalRates fetches the conversion rates for a base currency on a
// specific calendar day.
func (f *ExchangeRateAPIFacade) HistoricalRates(ctx context.Context, base string, date time.Time) (map[string]float64, error) {
	url := fmt.Sprintf("%s/%s/history/%s/%d/%d/%d",
		f.baseURL, f.apiKey, base, date.Year(), int(date.Month()), date.Day())
	return f.snapshot(ctx, url)
}

// apiResponse is the v6 API envelope.
type apiResponse struct {
	Result          string             `json:"result"`
	ErrorType       string             `json:"error-type"`
	ConversionRates map[string]float64 `json:"conversion_rates"`
}

func (f *ExchangeRateAPIFacade) snapshot(ctx context.Context, url string) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build rates request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rates response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrInvalidAPIKey
	case http.StatusNotFound:
		return nil, ErrNotAvailable
	default:
		return nil, fmt.Errorf("rates request failed: status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode rates response: %w", err)
	}

	if payload.Result != "success" {
		logger.Log.Warnw("exchange rate API error",
			"error_type", payload.ErrorType,
		)
		switch payload.ErrorType {
		case "invalid-key", "inactive-account":
			return nil, ErrInvalidAPIKey
		case "no-data-available":
			return nil, ErrNotAvailable
		default:
			return nil, fmt.Errorf("exchange rate API error: %s", payload.ErrorType)
		}
	}

	if len(payload.ConversionRates) == 0 {
		return nil, ErrNotAvailable
	}
	return payload.ConversionRates, nil
}
