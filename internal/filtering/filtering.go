package filtering

import (
	"context"
	"fmt"

	"github.com/spigell/profile-matcher/internal/scoring"
	"go.uber.org/zap"
)

// Filter represents a single filtering step applied to ranked results.
// Filters drop results and never reorder them.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, results []scoring.Result) ([]scoring.Result, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	ExcludeDocuments []string
	ExcludeFile      string
	MinCombinedScore float64
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// Default returns the filters in the order they run.
func Default() []Filter {
	return []Filter{
		NewExcludeDocuments(),
		NewExcludeFile(),
		NewMinScore(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates every enabled filter and then applies them sequentially.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, results []scoring.Result) ([]scoring.Result, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			if deps.Logger != nil {
				deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			}
			continue
		}

		next, info, err := step.Apply(ctx, deps, results)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		if deps.Logger != nil {
			deps.Logger.Info("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		results = next
	}

	return results, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// exclude returns results whose document ID is not in ids, plus the removed IDs.
func exclude(results []scoring.Result, ids []string) ([]scoring.Result, []string) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	kept := make([]scoring.Result, 0, len(results))
	var removed []string
	for _, r := range results {
		if _, ok := set[r.DocumentID]; ok {
			removed = append(removed, r.DocumentID)
			continue
		}
		kept = append(kept, r)
	}
	return kept, removed
}
