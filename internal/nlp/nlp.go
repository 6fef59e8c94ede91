// Package nlp describes the linguistic analysis consumed by the matchers and
// ships an English analyzer.
package nlp

// Universal part-of-speech tags produced by analyzers.
const (
	ADJ   = "ADJ"
	ADP   = "ADP"
	ADV   = "ADV"
	AUX   = "AUX"
	CCONJ = "CCONJ"
	DET   = "DET"
	INTJ  = "INTJ"
	NOUN  = "NOUN"
	NUM   = "NUM"
	PART  = "PART"
	PRON  = "PRON"
	PROPN = "PROPN"
	PUNCT = "PUNCT"
	SCONJ = "SCONJ"
	SYM   = "SYM"
	VERB  = "VERB"
	X     = "X"
)

// Token is a single analyzed token. Start and End are byte offsets into Analysis.Text.
type Token struct {
	Text    string
	Lemma   string
	POS     string
	Dep     string
	Start   int
	End     int
	IsStop  bool
	IsPunct bool
}

// Chunk is a noun phrase spanning Tokens[Start:End] with its head at Tokens[Root].
type Chunk struct {
	Text  string
	Start int
	End   int
	Root  int
}

// Analysis is the result of analyzing one text.
type Analysis struct {
	// Text is the normalized text the offsets refer to.
	Text   string
	Tokens []Token
	Chunks []Chunk
}

// ChunkRoot returns the head token of the chunk.
func (a *Analysis) ChunkRoot(c Chunk) Token {
	return a.Tokens[c.Root]
}

// Span returns the text covered by tokens [start, end).
func (a *Analysis) Span(start, end int) string {
	if start >= end || start < 0 || end > len(a.Tokens) {
		return ""
	}
	return a.Text[a.Tokens[start].Start:a.Tokens[end-1].End]
}

// Analyzer turns raw text into tokens and noun chunks.
// Implementations must be safe for concurrent use.
type Analyzer interface {
	Analyze(text string) (*Analysis, error)
}
