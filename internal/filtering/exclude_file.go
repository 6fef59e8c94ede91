package filtering

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/profile-matcher/internal/scoring"
)

// ExcludedDocuments is the content of an exclude file.
type ExcludedDocuments struct {
	Items []ExcludedDocument `json:"items"`
}

// ExcludedDocument names a document that must not appear in results.
type ExcludedDocument struct {
	ID     string `json:"id"`
	Reason string `json:"reason,omitempty"`
}

// IDs returns the document IDs of the file.
func (e *ExcludedDocuments) IDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// ReadExcludeFile decodes an exclude file. An empty file excludes nothing.
func ReadExcludeFile(path string) (*ExcludedDocuments, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedDocuments{}, nil
	}

	var excluded ExcludedDocuments
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes documents listed in an exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, results []scoring.Result) ([]scoring.Result, Step, error) {
	initial := len(results)
	if f.path == "" {
		return results, Step{Initial: initial, Dropped: 0, Left: initial}, nil
	}

	excluded, err := ReadExcludeFile(f.path)
	if err != nil {
		return results, Step{}, fmt.Errorf("getting excluded documents from file: %w", err)
	}

	kept, removed := exclude(results, excluded.IDs())
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding documents based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_documents", removed),
			zap.Int("documents_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(removed), Left: len(kept)}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
