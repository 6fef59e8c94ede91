package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"
)

// taggedSpan is a token with its Penn Treebank tag and byte offsets.
type taggedSpan struct {
	text  string
	tag   string
	start int
	end   int
}

// align locates every token in text in order. Tokens that cannot be found are dropped.
func align(text string, tokens []prose.Token) []taggedSpan {
	spans := make([]taggedSpan, 0, len(tokens))

	cursor := 0
	for _, tok := range tokens {
		if tok.Text == "" {
			continue
		}
		idx := strings.Index(text[cursor:], tok.Text)
		if idx < 0 {
			continue
		}
		start := cursor + idx
		end := start + len(tok.Text)
		spans = append(spans, taggedSpan{text: tok.Text, tag: tok.Tag, start: start, end: end})
		cursor = end
	}

	return spans
}

// splitTokens separates slashes between letters (python/sql) and the
// possessive 's into their own tokens.
func splitTokens(spans []taggedSpan) []taggedSpan {
	out := make([]taggedSpan, 0, len(spans))
	for _, sp := range spans {
		for _, part := range splitSlashes(sp) {
			out = append(out, splitPossessive(part)...)
		}
	}
	return out
}

func splitSlashes(sp taggedSpan) []taggedSpan {
	var parts []taggedSpan

	from := 0
	for i := 0; i < len(sp.text); i++ {
		if sp.text[i] != '/' || i == from || i+1 >= len(sp.text) {
			continue
		}

		before, _ := utf8.DecodeLastRuneInString(sp.text[:i])
		after, _ := utf8.DecodeRuneInString(sp.text[i+1:])
		if !unicode.IsLetter(before) || !unicode.IsLetter(after) {
			continue
		}

		parts = append(parts,
			sub(sp, from, i, sp.tag),
			sub(sp, i, i+1, "SYM"),
		)
		from = i + 1
	}

	if len(parts) == 0 {
		return []taggedSpan{sp}
	}
	return append(parts, sub(sp, from, len(sp.text), sp.tag))
}

func splitPossessive(sp taggedSpan) []taggedSpan {
	lower := strings.ToLower(sp.text)
	if len(lower) <= 2 || !strings.HasSuffix(lower, "'s") {
		return []taggedSpan{sp}
	}

	cut := len(sp.text) - 2
	last, _ := utf8.DecodeLastRuneInString(sp.text[:cut])
	if !unicode.IsLetter(last) && !unicode.IsDigit(last) {
		return []taggedSpan{sp}
	}

	return []taggedSpan{
		sub(sp, 0, cut, sp.tag),
		sub(sp, cut, len(sp.text), "POS"),
	}
}

func sub(sp taggedSpan, from, to int, tag string) taggedSpan {
	return taggedSpan{
		text:  sp.text[from:to],
		tag:   tag,
		start: sp.start + from,
		end:   sp.start + to,
	}
}
