package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-rate-predictor/internal/services"
)

type fakeTrainer struct {
	train func(ctx context.Context, pair string) (*services.TrainResult, error)
}

func (f *fakeTrainer) Train(ctx context.Context, pair string) (*services.TrainResult, error) {
	return f.train(ctx, pair)
}

func TestTrainHandler(t *testing.T) {
	okResult := &services.TrainResult{
		CurrencyPair: "USD_to_EUR",
		DataPoints:   100,
		Start:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name               string
		requestBody        any
		train              func(ctx context.Context, pair string) (*services.TrainResult, error)
		expectedStatusCode int
		expectedKey        string
	}{
		{
			name:        "successful training",
			requestBody: TrainRequest{CurrencyPair: "USD_to_EUR"},
			train: func(ctx context.Context, pair string) (*services.TrainResult, error) {
				return okResult, nil
			},
			expectedStatusCode: http.StatusOK,
			expectedKey:        "message",
		},
		{
			name:               "invalid request body",
			requestBody:        "not-json",
			expectedStatusCode: http.StatusBadRequest,
			expectedKey:        "error",
		},
		{
			name:               "missing currency pair",
			requestBody:        TrainRequest{},
			expectedStatusCode: http.StatusBadRequest,
			expectedKey:        "error",
		},
		{
			name:        "insufficient data",
			requestBody: TrainRequest{CurrencyPair: "USD_to_EUR"},
			train: func(ctx context.Context, pair string) (*services.TrainResult, error) {
				return nil, fmt.Errorf("%w: need at least 10 records, got 3", services.ErrInsufficientData)
			},
			expectedStatusCode: http.StatusBadRequest,
			expectedKey:        "error",
		},
		{
			name:        "no data",
			requestBody: TrainRequest{CurrencyPair: "USD_to_EUR"},
			train: func(ctx context.Context, pair string) (*services.TrainResult, error) {
				return nil, fmt.Errorf("%w for currency pair USD_to_EUR", services.ErrNoDataAvailable)
			},
			expectedStatusCode: http.StatusBadRequest,
			expectedKey:        "error",
		},
		{
			name:        "internal error",
			requestBody: TrainRequest{CurrencyPair: "USD_to_EUR"},
			train: func(ctx context.Context, pair string) (*services.TrainResult, error) {
				return nil, errors.New("disk full")
			},
			expectedStatusCode: http.StatusInternalServerError,
			expectedKey:        "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTrainHandler(&fakeTrainer{train: tt.train})

			var body bytes.Buffer
			require.NoError(t, json.NewEncoder(&body).Encode(tt.requestBody))
			req := httptest.NewRequest(http.MethodPost, "/api/train", &body)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatusCode, rr.Code)

			var resp map[string]any
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Contains(t, resp, tt.expectedKey)
		})
	}
}

func TestTrainHandler_ResponseFields(t *testing.T) {
	handler := NewTrainHandler(&fakeTrainer{
		train: func(ctx context.Context, pair string) (*services.TrainResult, error) {
			return &services.TrainResult{
				CurrencyPair: pair,
				DataPoints:   42,
				Start:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
				End:          time.Date(2025, 2, 11, 0, 0, 0, 0, time.UTC),
			}, nil
		},
	})

	var body bytes.Buffer
	require.NoError(t, json.NewEncoder(&body).Encode(TrainRequest{CurrencyPair: "EUR_to_JPY"}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/train", &body))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp TrainResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "EUR_to_JPY", resp.CurrencyPair)
	assert.Equal(t, 42, resp.DataPoints)
	assert.Equal(t, "2025-01-01", resp.TrainingStart)
	assert.Equal(t, "2025-02-11", resp.TrainingEnd)
}
