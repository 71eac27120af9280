package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sbilibin2017/gw-rate-predictor/internal/logger"
	"github.com/sbilibin2017/gw-rate-predictor/internal/models"
)

// WindowSize is the number of most recent observations the rolling-average
// model predicts from.
const WindowSize = 10

// modelType tags persisted predictions with the algorithm that produced them.
const modelType = "simple_average"

// predictionConfidence is a fixed placeholder; the model computes no
// residual-based confidence.
const predictionConfidence = 0.7

// PairRatesReader reads one pair's observations from the rates store.
type PairRatesReader interface {
	RatesForPair(ctx context.Context, pair string) ([]models.RatePoint, error)
}

// ModelStateStore persists trained model artifacts per currency pair.
type ModelStateStore interface {
	Save(ctx context.Context, state models.ModelState) error
	Load(ctx context.Context, pair string) (*models.ModelState, error)
}

// PredictionLogWriter appends to the prediction audit log.
type PredictionLogWriter interface {
	Append(ctx context.Context, entry models.PredictionLogEntry) error
}

// PredictorService trains, persists, predicts and evaluates a rolling-average
// model per currency pair. The predicted rate is the mean of the last
// WindowSize training observations; it is intentionally day-invariant.
type PredictorService struct {
	rates  PairRatesReader
	states ModelStateStore
	audit  PredictionLogWriter

	now func() time.Time
}

// NewPredictorService creates a predictor over the given collaborators.
func NewPredictorService(rates PairRatesReader, states ModelStateStore, audit PredictionLogWriter) *PredictorService {
	return &PredictorService{
		rates:  rates,
		states: states,
		audit:  audit,
		now:    time.Now,
	}
}

// TrainResult summarizes a successful training run.
type TrainResult struct {
	CurrencyPair string
	DataPoints   int
	Start        time.Time
	End          time.Time
}

// Prediction is a single predicted day.
type Prediction struct {
	Date          time.Time
	PredictedRate float64
	Confidence    float64
}

// PredictResult carries the predictions plus the model metadata they came
// from.
type PredictResult struct {
	CurrencyPair   string
	ModelType      string
	Predictions    []Prediction
	TrainingPoints int
	TrainingStart  string
	TrainingEnd    string
	WindowSize     int
}

// EvaluationResult reports retroactive model accuracy over a date range.
type EvaluationResult struct {
	RMSE      float64
	MAE       float64
	Count     int
	Start     time.Time
	End       time.Time
	Actual    []float64
	Predicted []float64
}

// ModelInfo is the summary of a persisted model.
type ModelInfo struct {
	CurrencyPair   string
	ModelType      string
	MeanRate       float64
	StdRate        float64
	TrainingPoints int
	TrainingStart  string
	TrainingEnd    string
	WindowSize     int
}

// Train fits and persists a model for pair from the stored series, fully
// replacing any previous state. It requires at least WindowSize rows with a
// value for the pair.
func (s *PredictorService) Train(ctx context.Context, pair string) (*TrainResult, error) {
	points, err := s.rates.RatesForPair(ctx, pair)
	if err != nil {
		return nil, fmt.Errorf("read training data: %w", err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w for currency pair %s", ErrNoDataAvailable, pair)
	}
	if len(points) < WindowSize {
		return nil, fmt.Errorf("%w: need at least %d records, got %d", ErrInsufficientData, WindowSize, len(points))
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Rate
	}
	mean, std := meanStd(values)

	window := make([]float64, WindowSize)
	copy(window, values[len(values)-WindowSize:])

	state := models.ModelState{
		CurrencyPair:   pair,
		MeanRate:       mean,
		StdRate:        std,
		LastRates:      window,
		TrainingPoints: len(points),
		TrainingStart:  points[0].Date.Format(models.DateLayout),
		TrainingEnd:    points[len(points)-1].Date.Format(models.DateLayout),
	}
	if err := s.states.Save(ctx, state); err != nil {
		return nil, err
	}

	logger.Log.Infow("model trained",
		"currency_pair", pair,
		"data_points", len(points),
		"mean_rate", mean,
	)

	return &TrainResult{
		CurrencyPair: pair,
		DataPoints:   len(points),
		Start:        points[0].Date,
		End:          points[len(points)-1].Date,
	}, nil
}

// Retrain fits the model again over the current data, replacing the old
// state wholesale.
func (s *PredictorService) Retrain(ctx context.Context, pair string) (*TrainResult, error) {
	logger.Log.Infow("retraining model", "currency_pair", pair)
	return s.Train(ctx, pair)
}

// Predict produces daysAhead consecutive daily predictions starting at
// startDate, each carrying the same rate: the mean of the model's window.
// One audit log entry is appended per call.
func (s *PredictorService) Predict(ctx context.Context, pair string, startDate time.Time, daysAhead int) (*PredictResult, error) {
	state, err := s.loadState(ctx, pair)
	if err != nil {
		return nil, err
	}

	predicted := mean(state.LastRates)

	startDate = models.Day(startDate)
	predictions := make([]Prediction, daysAhead)
	for i := 0; i < daysAhead; i++ {
		predictions[i] = Prediction{
			Date:          startDate.AddDate(0, 0, i),
			PredictedRate: predicted,
			Confidence:    predictionConfidence,
		}
	}

	entry := models.PredictionLogEntry{
		Timestamp:      s.now(),
		CurrencyPair:   pair,
		PredictionDate: startDate,
		DaysAhead:      daysAhead,
		PredictedRate:  predicted,
		ModelType:      modelType,
	}
	if err := s.audit.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("log prediction: %w", err)
	}

	return &PredictResult{
		CurrencyPair:   pair,
		ModelType:      modelType,
		Predictions:    predictions,
		TrainingPoints: state.TrainingPoints,
		TrainingStart:  state.TrainingStart,
		TrainingEnd:    state.TrainingEnd,
		WindowSize:     WindowSize,
	}, nil
}

// Evaluate compares the model's constant prediction against the stored
// actuals within [start, end] inclusive and reports RMSE and MAE. An empty
// overlap returns ErrNoTestData.
func (s *PredictorService) Evaluate(ctx context.Context, pair string, start, end time.Time) (*EvaluationResult, error) {
	state, err := s.loadState(ctx, pair)
	if err != nil {
		return nil, err
	}

	points, err := s.rates.RatesForPair(ctx, pair)
	if err != nil {
		return nil, fmt.Errorf("read test data: %w", err)
	}

	start, end = models.Day(start), models.Day(end)
	predicted := mean(state.LastRates)

	var actuals, predictions []float64
	var sqSum, absSum float64
	for _, p := range points {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		diff := p.Rate - predicted
		sqSum += diff * diff
		absSum += math.Abs(diff)
		actuals = append(actuals, p.Rate)
		predictions = append(predictions, predicted)
	}
	if len(actuals) == 0 {
		return nil, ErrNoTestData
	}

	n := float64(len(actuals))
	return &EvaluationResult{
		RMSE:      math.Sqrt(sqSum / n),
		MAE:       absSum / n,
		Count:     len(actuals),
		Start:     start,
		End:       end,
		Actual:    actuals,
		Predicted: predictions,
	}, nil
}

// LoadModel reports whether a persisted model exists for pair. A miss is
// non-fatal; the caller decides whether to train fresh.
func (s *PredictorService) LoadModel(ctx context.Context, pair string) (bool, error) {
	state, err := s.states.Load(ctx, pair)
	if err != nil {
		return false, err
	}
	return state != nil, nil
}

// ModelInfo returns the summary of the persisted model for pair.
func (s *PredictorService) ModelInfo(ctx context.Context, pair string) (*ModelInfo, error) {
	state, err := s.loadState(ctx, pair)
	if err != nil {
		return nil, err
	}
	return &ModelInfo{
		CurrencyPair:   state.CurrencyPair,
		ModelType:      modelType,
		MeanRate:       state.MeanRate,
		StdRate:        state.StdRate,
		TrainingPoints: state.TrainingPoints,
		TrainingStart:  state.TrainingStart,
		TrainingEnd:    state.TrainingEnd,
		WindowSize:     WindowSize,
	}, nil
}

func (s *PredictorService) loadState(ctx context.Context, pair string) (*models.ModelState, error) {
	state, err := s.states.Load(ctx, pair)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("%w for %s", ErrModelNotFound, pair)
	}
	return state, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// meanStd computes population statistics (divide by N, not N-1).
func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	m := mean(values)
	varianceSum := 0.0
	for _, v := range values {
		varianceSum += (v - m) * (v - m)
	}
	return m, math.Sqrt(varianceSum / float64(len(values)))
}
