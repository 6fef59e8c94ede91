package filtering

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/spigell/profile-matcher/internal/scoring"
)

type minScoreFilter struct {
	disabled bool
	reason   string
	minimum  float64
}

// NewMinScore creates a filter that drops results whose combined score is below the configured minimum.
func NewMinScore() Filter {
	return &minScoreFilter{}
}

func (f *minScoreFilter) Name() string { return "min_score" }

func (f *minScoreFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *minScoreFilter) IsEnabled() bool { return !f.disabled }

func (f *minScoreFilter) Validate(cfg *Config) error {
	f.minimum = 0
	if cfg != nil {
		f.minimum = cfg.MinCombinedScore
	}
	if math.IsNaN(f.minimum) || f.minimum < 0 {
		return fmt.Errorf("minimum combined score must be non-negative, got %v", f.minimum)
	}
	return nil
}

func (f *minScoreFilter) Apply(_ context.Context, deps Deps, results []scoring.Result) ([]scoring.Result, Step, error) {
	initial := len(results)

	kept := make([]scoring.Result, 0, initial)
	for _, r := range results {
		if r.Combined < f.minimum {
			if deps.Logger != nil {
				deps.Logger.Debug("document below minimum combined score",
					zap.String("document", r.DocumentID),
					zap.Float64("combined_score", r.Combined),
				)
			}
			continue
		}
		kept = append(kept, r)
	}

	return kept, Step{Initial: initial, Dropped: initial - len(kept), Left: len(kept)}, nil
}

func (f *minScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_combined_score": fmt.Sprintf("%.2f", f.minimum)},
	}
}
