package services

import "errors"

var (
	// ErrNoDataAvailable means the store is empty or lacks the requested
	// pair column. Recoverable: fetch data first.
	ErrNoDataAvailable = errors.New("no data available")

	// ErrInsufficientData means fewer clean rows than the model window.
	// Recoverable: gather more history.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrModelNotFound means predict or evaluate was called before any
	// train or load succeeded for the pair.
	ErrModelNotFound = errors.New("no trained model found")

	// ErrNoTestData means the evaluation range is disjoint from the
	// available data. Recoverable, not fatal.
	ErrNoTestData = errors.New("no test data available for the specified date range")

	// ErrFetchInProgress means a background fetch is already running.
	// Concurrent fetches are rejected, not queued.
	ErrFetchInProgress = errors.New("a data fetch is already in progress")
)
