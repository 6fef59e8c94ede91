package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var pennToUniversal = map[string]string{
	"NN": NOUN, "NNS": NOUN, "NNP": PROPN, "NNPS": PROPN,
	"VB": VERB, "VBD": VERB, "VBG": VERB, "VBN": VERB, "VBP": VERB, "VBZ": VERB,
	"MD": AUX,
	"JJ": ADJ, "JJR": ADJ, "JJS": ADJ,
	"RB": ADV, "RBR": ADV, "RBS": ADV, "WRB": ADV,
	"IN": ADP, "RP": ADP,
	"DT": DET, "PDT": DET,
	"PRP": PRON, "PRP$": PRON, "WP": PRON, "WP$": PRON, "WDT": PRON, "EX": PRON,
	"CC": CCONJ, "CD": NUM,
	"TO": PART, "POS": PART,
	"UH": INTJ, "FW": X, "LS": X,
	"SYM": SYM, "#": SYM, "$": SYM,
}

var subordinators = toSet("because although though while whereas if unless whether that so than")

var auxiliaryHeads = toSet("have has had having do does did")

// gerunds that stay verbs after a noun: "students using python"
var verbalGerunds = toSet(`
using including working leading helping teaching making building developing creating managing mentoring
`)

// universalTags maps Penn Treebank tags to universal POS tags and fixes the
// cases the mapping alone gets wrong: copulas and auxiliaries, subordinating
// conjunctions, and compound gerunds such as "machine learning".
func universalTags(spans []taggedSpan) []string {
	tags := make([]string, len(spans))
	for i, sp := range spans {
		lower := strings.ToLower(sp.text)
		pos, ok := pennToUniversal[sp.tag]
		if !ok {
			pos = punctOrSymbol(sp.text)
		}

		switch {
		case pos == VERB && isCopula(lower):
			pos = AUX
		case pos == VERB && hasVerbAfter(spans, i) && contains(auxiliaryHeads, lower):
			pos = AUX
		case pos == ADP && contains(subordinators, lower):
			pos = SCONJ
		case lower == "not" || lower == "n't":
			pos = PART
		}

		if pos == VERB && sp.tag == "VBG" && i > 0 && tags[i-1] == NOUN && !contains(verbalGerunds, lower) && !startsObject(spans, i) {
			pos = NOUN
		}

		tags[i] = pos
	}
	return tags
}

func punctOrSymbol(text string) string {
	r, _ := utf8.DecodeRuneInString(text)
	switch {
	case unicode.IsPunct(r):
		return PUNCT
	case unicode.IsLetter(r) || unicode.IsDigit(r):
		return X
	default:
		return SYM
	}
}

func isCopula(lower string) bool {
	switch lower {
	case "am", "is", "are", "was", "were", "be", "been", "being", "'m", "'re", "'s":
		return true
	}
	return false
}

// hasVerbAfter reports whether a verb follows spans[i], skipping adverbs and negation.
func hasVerbAfter(spans []taggedSpan, i int) bool {
	for j := i + 1; j < len(spans); j++ {
		switch spans[j].tag {
		case "RB", "RBR", "RBS":
			continue
		case "VB", "VBD", "VBG", "VBN", "VBP", "VBZ":
			return true
		}
		return false
	}
	return false
}

// startsObject reports whether the token after a gerund opens a noun phrase it governs.
func startsObject(spans []taggedSpan, i int) bool {
	if i+1 >= len(spans) {
		return false
	}
	switch spans[i+1].tag {
	case "DT", "PRP$", "PDT":
		return true
	}
	return false
}

func contains(set map[string]struct{}, word string) bool {
	_, ok := set[word]
	return ok
}

func isSentenceEnd(punct string) bool {
	return punct == "." || punct == "!" || punct == "?"
}

// parse assigns coarse dependency labels given tags and noun chunks.
func parse(tokens []Token, chunks []Chunk) {
	inChunk := make([]int, len(tokens))
	for i := range inChunk {
		inChunk[i] = -1
	}
	for ci, c := range chunks {
		for i := c.Start; i < c.End; i++ {
			inChunk[i] = ci
		}
	}

	start := 0
	for start < len(tokens) {
		end := start
		for end < len(tokens) {
			end++
			if tokens[end-1].IsPunct && isSentenceEnd(tokens[end-1].Text) {
				break
			}
		}
		parseSentence(tokens, chunks, inChunk, start, end)
		start = end
	}
}

func parseSentence(tokens []Token, chunks []Chunk, inChunk []int, start, end int) {
	root := -1
	for i := start; i < end; i++ {
		if tokens[i].POS == VERB {
			root = i
			break
		}
	}

	for i := start; i < end; i++ {
		t := &tokens[i]
		switch t.POS {
		case VERB:
			switch {
			case i == root:
				t.Dep = "ROOT"
			case i > start && tokens[i-1].Text == "to":
				t.Dep = "xcomp"
			default:
				t.Dep = "conj"
			}
		case NOUN, PROPN, PRON, NUM:
			t.Dep = nominalDep(tokens, chunks, inChunk, i, start, root)
		case ADJ:
			t.Dep = "amod"
		case DET:
			t.Dep = "det"
		case ADP:
			t.Dep = "prep"
		case CCONJ:
			t.Dep = "cc"
		case SCONJ:
			t.Dep = "mark"
		case ADV:
			t.Dep = "advmod"
		case AUX:
			t.Dep = "aux"
		case PART:
			if t.Text == "not" || t.Text == "n't" {
				t.Dep = "neg"
			} else {
				t.Dep = "aux"
			}
		case PUNCT, SYM:
			t.Dep = "punct"
		default:
			t.Dep = "dep"
		}
	}

	if root == -1 {
		for i := start; i < end; i++ {
			ci := inChunk[i]
			if ci >= 0 && chunks[ci].Root == i {
				tokens[i].Dep = "ROOT"
				return
			}
		}
	}
}

func nominalDep(tokens []Token, chunks []Chunk, inChunk []int, i, sentenceStart, root int) string {
	ci := inChunk[i]
	if ci < 0 {
		if tokens[i].POS == NUM {
			return "nummod"
		}
		return "dep"
	}

	chunk := chunks[ci]
	if chunk.Root != i {
		if tokens[i].POS == NUM {
			return "nummod"
		}
		if tokens[i].POS == PRON {
			return "poss"
		}
		return "compound"
	}

	if chunk.Start > sentenceStart {
		before := tokens[chunk.Start-1]
		switch {
		case before.POS == ADP || before.Text == "to":
			return "pobj"
		case before.POS == CCONJ || before.Text == ",":
			return "conj"
		}
	}

	switch {
	case root == -1:
		return "dep"
	case i < root:
		return "nsubj"
	default:
		return "dobj"
	}
}
