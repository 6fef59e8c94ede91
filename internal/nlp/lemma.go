package nlp

import (
	"strings"

	"github.com/aaaton/golem/v4"
)

// Words whose surface form is also their lemma even though they look plural.
var invariantLemmas = toSet(`
data pandas statistics analytics mathematics physics economics electronics linguistics robotics logistics
genetics ethics graphics kubernetes series species news
`)

// lemmatize returns the dictionary lemma for content words. Proper nouns,
// adjectives and nominal gerunds (machine learning) keep their lowercased form.
func lemmatize(lemmatizer *golem.Lemmatizer, word, pos string) string {
	lower := strings.ToLower(word)
	if contains(invariantLemmas, lower) {
		return lower
	}

	switch pos {
	case NOUN:
		if strings.HasSuffix(lower, "ing") {
			return lower
		}
		return lookup(lemmatizer, lower)
	case VERB, AUX:
		return lookup(lemmatizer, lower)
	default:
		return lower
	}
}

func lookup(lemmatizer *golem.Lemmatizer, lower string) string {
	if lemma := lemmatizer.Lemma(lower); lemma != "" {
		return strings.ToLower(lemma)
	}
	return lower
}
