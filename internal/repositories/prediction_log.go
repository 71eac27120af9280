package repositories

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sbilibin2017/gw-rate-predictor/internal/logger"
	"github.com/sbilibin2017/gw-rate-predictor/internal/models"
)

const predictionLogFileName = "predictions.log"

// PredictionLogRepository is the append-only audit log of predictions made.
// Lines are only ever appended or the whole file truncated; prior lines are
// never rewritten.
type PredictionLogRepository struct {
	file string
}

// NewPredictionLogRepository creates a repository rooted at logDir.
func NewPredictionLogRepository(logDir string) *PredictionLogRepository {
	return &PredictionLogRepository{file: filepath.Join(logDir, predictionLogFileName)}
}

// Append writes one formatted entry line to the end of the log.
func (r *PredictionLogRepository) Append(ctx context.Context, entry models.PredictionLogEntry) error {
	if err := os.MkdirAll(filepath.Dir(r.file), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(r.file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open prediction log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(entry.String() + "\n"); err != nil {
		return fmt.Errorf("append prediction log: %w", err)
	}
	return nil
}

// Recent returns the last limit lines in file order, oldest of the returned
// slice first. A missing log yields an empty result.
func (r *PredictionLogRepository) Recent(ctx context.Context, limit int) ([]string, error) {
	f, err := os.Open(r.file)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("open prediction log: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read prediction log: %w", err)
	}

	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines, nil
}

// Clear truncates the log to empty. A missing log is already clear.
func (r *PredictionLogRepository) Clear(ctx context.Context) error {
	err := os.Truncate(r.file, 0)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear prediction log: %w", err)
	}
	logger.Log.Infow("prediction logs cleared", "file", r.file)
	return nil
}
