package nlp

import (
	"reflect"
	"testing"
)

func texts(a *Analysis) []string {
	out := make([]string, 0, len(a.Tokens))
	for _, t := range a.Tokens {
		out = append(out, t.Text)
	}
	return out
}

func chunkTexts(a *Analysis) []string {
	out := make([]string, 0, len(a.Chunks))
	for _, c := range a.Chunks {
		out = append(out, c.Text)
	}
	return out
}

func analyze(t *testing.T, text string) *Analysis {
	t.Helper()

	a, err := NewEnglish().Analyze(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, tok := range a.Tokens {
		if tok.Text != a.Text[tok.Start:tok.End] {
			t.Fatalf("token %q does not match its offsets", tok.Text)
		}
	}
	return a
}

func token(t *testing.T, a *Analysis, text string) Token {
	t.Helper()

	for _, tok := range a.Tokens {
		if tok.Text == text {
			return tok
		}
	}
	t.Fatalf("token %q not found in %q", text, texts(a))
	return Token{}
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		expect []string
	}{
		{
			name:   "technical terms",
			text:   "I know Node.js, and e-commerce.",
			expect: []string{"I", "know", "Node.js", ",", "and", "e-commerce", "."},
		},
		{
			name:   "slash between words",
			text:   "Skills: Python/SQL",
			expect: []string{"Skills", ":", "Python", "/", "SQL"},
		},
		{
			name:   "possessive",
			text:   "python's ecosystem",
			expect: []string{"python", "'s", "ecosystem"},
		},
		{
			name:   "typographic apostrophe",
			text:   "python’s ecosystem",
			expect: []string{"python", "'s", "ecosystem"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := texts(analyze(t, tt.text)); !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("expected tokens %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestAnalyzeMarksPunctuation(t *testing.T) {
	t.Parallel()

	a := analyze(t, "I know Node.js, and e-commerce.")
	if !token(t, a, ",").IsPunct || !token(t, a, ".").IsPunct {
		t.Fatalf("expected punctuation flags on separators")
	}
	if token(t, a, "Node.js").IsPunct {
		t.Fatalf("Node.js must not be punctuation")
	}
}

func TestAnalyzeEmptyText(t *testing.T) {
	t.Parallel()

	a := analyze(t, "   ")
	if len(a.Tokens) != 0 || len(a.Chunks) != 0 {
		t.Fatalf("expected empty analysis, got %+v", a)
	}
}

func TestLemmas(t *testing.T) {
	t.Parallel()

	a := analyze(t, "Experienced software engineer with 10 years of Python development.")
	if lemma := token(t, a, "Experienced").Lemma; lemma != "experienced" && lemma != "experience" {
		t.Fatalf("unexpected lemma for Experienced: %q", lemma)
	}
	if lemma := token(t, a, "years").Lemma; lemma != "year" {
		t.Fatalf("expected year, got %q", lemma)
	}

	a = analyze(t, "I teach statistics with scikit-learn and pandas.")
	for _, word := range []string{"statistics", "pandas"} {
		if lemma := token(t, a, word).Lemma; lemma != word {
			t.Fatalf("expected %q to keep its form, got %q", word, lemma)
		}
	}

	a = analyze(t, "She teaches the Python classes!")
	for word, lemma := range map[string]string{"teaches": "teach", "classes": "class", "Python": "python"} {
		if got := token(t, a, word).Lemma; got != lemma {
			t.Fatalf("expected lemma %q for %q, got %q", lemma, word, got)
		}
	}
}

func TestLemmatize(t *testing.T) {
	t.Parallel()

	res, err := loadResources()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		word   string
		pos    string
		expect string
	}{
		{word: "models", pos: NOUN, expect: "model"},
		{word: "technologies", pos: NOUN, expect: "technology"},
		{word: "learning", pos: NOUN, expect: "learning"},
		{word: "pandas", pos: NOUN, expect: "pandas"},
		{word: "data", pos: VERB, expect: "data"},
		{word: "Python", pos: PROPN, expect: "python"},
		{word: "created", pos: VERB, expect: "create"},
		{word: "built", pos: VERB, expect: "build"},
		{word: "teaches", pos: VERB, expect: "teach"},
		{word: "Senior", pos: ADJ, expect: "senior"},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			t.Parallel()
			if got := lemmatize(res.lemmatizer, tt.word, tt.pos); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestUniversalTags(t *testing.T) {
	t.Parallel()

	spans := func(pairs ...string) []taggedSpan {
		out := make([]taggedSpan, 0, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			out = append(out, taggedSpan{text: pairs[i], tag: pairs[i+1]})
		}
		return out
	}

	tests := []struct {
		name   string
		spans  []taggedSpan
		expect []string
	}{
		{
			name:   "copula and auxiliary",
			spans:  spans("She", "PRP", "is", "VBZ", "a", "DT", "mentor", "NN", "and", "CC", "has", "VBZ", "taught", "VBN"),
			expect: []string{PRON, AUX, DET, NOUN, CCONJ, AUX, VERB},
		},
		{
			name:   "have as a main verb",
			spans:  spans("I", "PRP", "have", "VBP", "experience", "NN"),
			expect: []string{PRON, VERB, NOUN},
		},
		{
			name:   "subordinating conjunction and negation",
			spans:  spans("because", "IN", "it", "PRP", "is", "VBZ", "not", "RB", "hard", "JJ"),
			expect: []string{SCONJ, PRON, AUX, PART, ADJ},
		},
		{
			name:   "compound gerund",
			spans:  spans("machine", "NN", "learning", "VBG", "course", "NN"),
			expect: []string{NOUN, NOUN, NOUN},
		},
		{
			name:   "gerund governing an object",
			spans:  spans("students", "NNS", "learning", "VBG", "the", "DT", "basics", "NNS"),
			expect: []string{NOUN, VERB, DET, NOUN},
		},
		{
			name:   "punctuation and symbols",
			spans:  spans("(", "(", "/", "SYM", "%", "NN", "-", ":"),
			expect: []string{PUNCT, SYM, NOUN, PUNCT},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := universalTags(tt.spans); !reflect.DeepEqual(got, tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestSplitTokens(t *testing.T) {
	t.Parallel()

	got := splitTokens([]taggedSpan{
		{text: "CI/CD", tag: "NNP", start: 4, end: 9},
		{text: "1/2", tag: "CD", start: 10, end: 13},
		{text: "Maria's", tag: "NNP", start: 14, end: 21},
		{text: "'s", tag: "POS", start: 21, end: 23},
	})

	expect := []taggedSpan{
		{text: "CI", tag: "NNP", start: 4, end: 6},
		{text: "/", tag: "SYM", start: 6, end: 7},
		{text: "CD", tag: "NNP", start: 7, end: 9},
		{text: "1/2", tag: "CD", start: 10, end: 13},
		{text: "Maria", tag: "NNP", start: 14, end: 19},
		{text: "'s", tag: "POS", start: 19, end: 21},
		{text: "'s", tag: "POS", start: 21, end: 23},
	}

	if !reflect.DeepEqual(got, expect) {
		t.Fatalf("expected %+v, got %+v", expect, got)
	}
}

func TestNounChunks(t *testing.T) {
	t.Parallel()

	a := analyze(t, "She teaches machine learning to students.")

	expected := []string{"She", "machine learning", "students"}
	if got := chunkTexts(a); !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected chunks %q, got %q", expected, got)
	}

	if !a.ChunkRoot(a.Chunks[0]).IsStop {
		t.Fatalf("expected pronoun chunk root to be a stop word")
	}

	if root := a.ChunkRoot(a.Chunks[1]); root.Text != "learning" || root.POS != NOUN {
		t.Fatalf("unexpected chunk root: %+v", root)
	}

	if tok := token(t, a, "teaches"); tok.POS != VERB || tok.Dep != "ROOT" {
		t.Fatalf("expected sentence root verb, got %+v", tok)
	}

	if dep := token(t, a, "machine").Dep; dep != "compound" {
		t.Fatalf("expected compound modifier, got %q", dep)
	}

	if dep := token(t, a, "students").Dep; dep != "pobj" {
		t.Fatalf("expected prepositional object, got %q", dep)
	}
}

func TestPartOfSpeech(t *testing.T) {
	t.Parallel()

	a := analyze(t, "She teaches the Python classes!")

	expected := []string{PRON, VERB, DET, PROPN, NOUN, PUNCT}
	got := make([]string, 0, len(a.Tokens))
	for _, tok := range a.Tokens {
		got = append(got, tok.POS)
	}

	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("expected tags %v, got %v", expected, got)
	}
}

func TestIsStopWord(t *testing.T) {
	t.Parallel()

	if !IsStopWord("The") || !IsStopWord("and") {
		t.Fatalf("expected common function words to be stop words")
	}
	if IsStopWord("python") {
		t.Fatalf("python must not be a stop word")
	}
}
