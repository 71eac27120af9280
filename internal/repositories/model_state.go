package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sbilibin2017/gw-rate-predictor/internal/logger"
	"github.com/sbilibin2017/gw-rate-predictor/internal/models"
)

// ModelStateRepository persists one JSON artifact per currency pair under
// modelDir, named <pair>_model.json. Retraining overwrites the artifact
// wholesale.
type ModelStateRepository struct {
	dir string
}

// NewModelStateRepository creates a repository rooted at modelDir.
func NewModelStateRepository(modelDir string) *ModelStateRepository {
	return &ModelStateRepository{dir: modelDir}
}

func (r *ModelStateRepository) path(pair string) string {
	return filepath.Join(r.dir, pair+"_model.json")
}

// Save writes the model state for its currency pair, replacing any previous
// artifact.
func (r *ModelStateRepository) Save(ctx context.Context, state models.ModelState) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model state: %w", err)
	}
	if err := os.WriteFile(r.path(state.CurrencyPair), data, 0o644); err != nil {
		return fmt.Errorf("write model state: %w", err)
	}

	logger.Log.Infow("saved model state",
		"currency_pair", state.CurrencyPair,
		"training_points", state.TrainingPoints,
	)
	return nil
}

// Load reads the persisted state for a pair. A missing artifact returns
// (nil, nil); the caller decides whether that is an error.
func (r *ModelStateRepository) Load(ctx context.Context, pair string) (*models.ModelState, error) {
	data, err := os.ReadFile(r.path(pair))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read model state: %w", err)
	}

	var state models.ModelState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshal model state for %s: %w", pair, err)
	}
	return &state, nil
}
