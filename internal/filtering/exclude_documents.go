package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/profile-matcher/internal/scoring"
)

type excludeDocumentsFilter struct {
	documents []string
}

// NewExcludeDocuments creates a filter that removes the documents listed in the config.
func NewExcludeDocuments() Filter {
	return &excludeDocumentsFilter{}
}

func (f *excludeDocumentsFilter) Name() string { return "exclude_documents" }

func (f *excludeDocumentsFilter) Disable(string) {}

func (f *excludeDocumentsFilter) IsEnabled() bool { return true }

func (f *excludeDocumentsFilter) Validate(cfg *Config) error {
	f.documents = nil
	if cfg != nil {
		for _, id := range cfg.ExcludeDocuments {
			if id = strings.TrimSpace(id); id != "" {
				f.documents = append(f.documents, id)
			}
		}
	}
	return nil
}

func (f *excludeDocumentsFilter) Apply(_ context.Context, deps Deps, results []scoring.Result) ([]scoring.Result, Step, error) {
	initial := len(results)
	if len(f.documents) == 0 {
		return results, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	kept, removed := exclude(results, f.documents)
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding documents by config",
			zap.Strings("excluded_documents", removed),
			zap.Int("documents_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(removed), Left: len(kept)}, nil
}

func (f *excludeDocumentsFilter) Status() Status {
	details := map[string]string{}
	if len(f.documents) > 0 {
		details["documents"] = strings.Join(f.documents, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
