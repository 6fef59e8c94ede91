package nlp

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/jdkato/prose/v2"
	"golang.org/x/text/unicode/norm"
)

type resources struct {
	model      *prose.Model
	lemmatizer *golem.Lemmatizer
}

// The tagger model and the lemma dictionary are compiled into the binary and
// loaded once per process. Both are read-only after loading.
var loadResources = sync.OnceValues(func() (*resources, error) {
	doc, err := prose.NewDocument("", prose.WithSegmentation(false), prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("loading tagger model: %w", err)
	}

	lemmatizer, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("loading english lemmas: %w", err)
	}

	return &resources{model: doc.Model, lemmatizer: lemmatizer}, nil
})

var quotes = strings.NewReplacer(
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"&rsquo;", "'",
)

// English analyzes English text with the prose tokenizer and perceptron tagger
// and the golem lemma dictionary. It is safe for concurrent use.
type English struct{}

// NewEnglish returns the English analyzer. Models load on first use.
func NewEnglish() *English {
	return &English{}
}

// Analyze tokenizes normalized text, tags and lemmatizes tokens, and extracts noun chunks.
func (e *English) Analyze(text string) (*Analysis, error) {
	res, err := loadResources()
	if err != nil {
		return nil, err
	}

	text = quotes.Replace(norm.NFKC.String(text))
	if strings.TrimSpace(text) == "" {
		return &Analysis{Text: text}, nil
	}

	doc, err := prose.NewDocument(text,
		prose.UsingModel(res.model),
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("tagging text: %w", err)
	}

	tagged := splitTokens(align(text, doc.Tokens()))
	tags := universalTags(tagged)

	tokens := make([]Token, len(tagged))
	for i, t := range tagged {
		tokens[i] = Token{
			Text:    t.text,
			Lemma:   lemmatize(res.lemmatizer, t.text, tags[i]),
			POS:     tags[i],
			Start:   t.start,
			End:     t.end,
			IsStop:  IsStopWord(t.text),
			IsPunct: tags[i] == PUNCT,
		}
	}

	chunks := chunkNouns(text, tokens)
	parse(tokens, chunks)

	return &Analysis{Text: text, Tokens: tokens, Chunks: chunks}, nil
}
