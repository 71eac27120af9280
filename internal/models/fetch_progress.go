package models

// Fetch task statuses. A terminal status stays in place until the next fetch
// begins.
const (
	FetchStatusIdle      = "idle"
	FetchStatusFetching  = "fetching"
	FetchStatusCompleted = "completed"
	FetchStatusError     = "error"
)

// FetchProgress is a point-in-time snapshot of the background fetch task.
// swagger:model FetchProgress
type FetchProgress struct {
	// Percent complete, 0-100, non-decreasing within one fetch
	Percent float64 `json:"percent"`

	// One of idle, fetching, completed, error
	Status string `json:"status"`

	// Human-readable progress message
	Message string `json:"message"`
}
