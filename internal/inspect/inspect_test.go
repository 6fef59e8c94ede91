package inspect

import (
	"errors"
	"reflect"
	"testing"

	"github.com/spigell/profile-matcher/internal/nlp"
)

type staticAnalyzer struct {
	tokens []nlp.Token
	err    error
}

func (s staticAnalyzer) Analyze(string) (*nlp.Analysis, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &nlp.Analysis{Tokens: s.tokens}, nil
}

func TestTokensFiltersContentWords(t *testing.T) {
	t.Parallel()

	analyzer := staticAnalyzer{tokens: []nlp.Token{
		{Text: "She", Lemma: "she", POS: nlp.PRON, Dep: "nsubj", IsStop: true},
		{Text: "teaches", Lemma: "teach", POS: nlp.VERB, Dep: "ROOT"},
		{Text: "ML", Lemma: "ml", POS: nlp.PROPN, Dep: "compound"},
		{Text: "models", Lemma: "model", POS: nlp.NOUN, Dep: "dobj"},
		{Text: "quickly", Lemma: "quickly", POS: nlp.ADV, Dep: "advmod"},
		{Text: "made", Lemma: "make", POS: nlp.VERB, Dep: "conj", IsStop: true},
		{Text: ".", Lemma: ".", POS: nlp.PUNCT, Dep: "punct", IsPunct: true},
	}}

	got, err := New(analyzer).Tokens("ignored")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []Record{
		{Text: "teaches", Lemma: "teach", POS: nlp.VERB, Dep: "ROOT"},
		{Text: "models", Lemma: "model", POS: nlp.NOUN, Dep: "dobj"},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected %+v, got %+v", expected, got)
	}
}

func TestTokensWithEnglishAnalyzer(t *testing.T) {
	t.Parallel()

	got, err := New(nlp.NewEnglish()).Tokens("Built ML models for students and engineers.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var texts []string
	for _, r := range got {
		texts = append(texts, r.Text)
		if r.POS != nlp.NOUN && r.POS != nlp.PROPN && r.POS != nlp.VERB {
			t.Fatalf("unexpected POS in %+v", r)
		}
	}

	for _, want := range []string{"Built", "models", "students", "engineers"} {
		found := false
		for _, text := range texts {
			if text == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected %q in %q", want, texts)
		}
	}
}

func TestPreprocess(t *testing.T) {
	t.Parallel()

	got, err := New(nlp.NewEnglish()).Preprocess("She teaches the Python classes!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "teach python class" {
		t.Fatalf("unexpected preprocessed text %q", got)
	}
}

func TestAnalyzerFailure(t *testing.T) {
	t.Parallel()

	analyzerErr := errors.New("model missing")
	i := New(staticAnalyzer{err: analyzerErr})

	if _, err := i.Tokens("x"); !errors.Is(err, analyzerErr) {
		t.Fatalf("expected analyzer error, got %v", err)
	}
	if _, err := i.Preprocess("x"); !errors.Is(err, analyzerErr) {
		t.Fatalf("expected analyzer error, got %v", err)
	}
}
