// Package vocabulary holds the controlled vocabularies used to categorize phrases.
package vocabulary

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Category names a vocabulary list.
type Category string

const (
	Skills         Category = "skills"
	Roles          Category = "roles"
	Industries     Category = "industries"
	Certifications Category = "certifications"
)

// Categories lists the categories in lookup order.
var Categories = []Category{Skills, Roles, Industries, Certifications}

// ErrInvalid is returned for vocabulary documents that cannot be decoded.
var ErrInvalid = errors.New("invalid vocabulary")

// Lists is the on-disk shape of a vocabulary document.
type Lists struct {
	Skills         []string `mapstructure:"skills" yaml:"skills"`
	Roles          []string `mapstructure:"roles" yaml:"roles"`
	Industries     []string `mapstructure:"industries" yaml:"industries"`
	Certifications []string `mapstructure:"certifications" yaml:"certifications"`
	Ignore         []string `mapstructure:"ignore" yaml:"ignore"`
}

// DefaultLists returns the built-in vocabulary.
func DefaultLists() Lists {
	return Lists{
		Skills:         []string{"python", "sql", "machine learning", "data analysis", "public speaking", "project management"},
		Roles:          []string{"data scientist", "product manager", "software engineer", "data analyst", "marketing specialist"},
		Industries:     []string{"finance", "healthcare", "tech", "startups", "e-commerce", "it industry"},
		Certifications: []string{"mba", "data science certification", "machine learning certification", "certification"},
		Ignore:         []string{"team", "project", "experience", "responsible"},
	}
}

// Registry is an immutable set of categorized vocabulary lists.
type Registry struct {
	lists  map[Category][]string
	ignore map[string]struct{}
}

// New builds a registry from lists. Entries are normalized; blanks and
// duplicates within a list are dropped.
func New(l Lists) *Registry {
	r := &Registry{
		lists: map[Category][]string{
			Skills:         normalizeList(l.Skills),
			Roles:          normalizeList(l.Roles),
			Industries:     normalizeList(l.Industries),
			Certifications: normalizeList(l.Certifications),
		},
		ignore: make(map[string]struct{}),
	}

	for _, entry := range normalizeList(l.Ignore) {
		r.ignore[entry] = struct{}{}
	}

	return r
}

// Default returns a registry with the built-in vocabulary.
func Default() *Registry {
	return New(DefaultLists())
}

// Load reads a YAML vocabulary document. Unknown keys are rejected.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary file %q: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes a YAML vocabulary document.
func Parse(data []byte) (*Registry, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	var lists Lists
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      &lists,
	})
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return New(lists), nil
}

// List returns a copy of the entries of category c.
func (r *Registry) List(c Category) []string {
	return append([]string(nil), r.lists[c]...)
}

// All returns every entry in lookup order. Entries present in several lists appear once per list.
func (r *Registry) All() []string {
	var all []string
	for _, c := range Categories {
		all = append(all, r.lists[c]...)
	}
	return all
}

// Lookup returns the first category, in lookup order, containing phrase.
func (r *Registry) Lookup(phrase string) (Category, bool) {
	for _, c := range Categories {
		for _, entry := range r.lists[c] {
			if entry == phrase {
				return c, true
			}
		}
	}
	return "", false
}

// Ignored reports whether phrase is excluded from categorization output.
func (r *Registry) Ignored(phrase string) bool {
	_, ok := r.ignore[phrase]
	return ok
}

// Lists returns a copy of the registry content.
func (r *Registry) Lists() Lists {
	ignore := make([]string, 0, len(r.ignore))
	for entry := range r.ignore {
		ignore = append(ignore, entry)
	}
	sort.Strings(ignore)

	return Lists{
		Skills:         r.List(Skills),
		Roles:          r.List(Roles),
		Industries:     r.List(Industries),
		Certifications: r.List(Certifications),
		Ignore:         ignore,
	}
}

// Normalize applies NFKC, lowercases and collapses whitespace.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func normalizeList(entries []string) []string {
	out := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		entry = Normalize(entry)
		if entry == "" {
			continue
		}
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		out = append(out, entry)
	}
	return out
}
