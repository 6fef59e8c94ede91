package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spigell/profile-matcher/internal/inspect"
	"github.com/spigell/profile-matcher/internal/phrase"
	"github.com/spigell/profile-matcher/internal/scoring"
	"github.com/spigell/profile-matcher/internal/semantic"
	"github.com/spigell/profile-matcher/internal/vocabulary"
)

const (
	outputText = "text"
	outputJSON = "json"

	noneFound         = "None found"
	noSemanticMatches = "No strong semantic matches found."
)

var title = cases.Title(language.English)

// matchReport is one ranked document with its explanation.
type matchReport struct {
	scoring.Result
	SemanticMatches []semantic.Match `json:"semantic_matches"`
}

type matchOutput struct {
	Student     string        `json:"student"`
	Preferences []string      `json:"preferences"`
	Matches     []matchReport `json:"matches"`
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printMatches(w io.Writer, out matchOutput) {
	fmt.Fprintf(w, "Student: %s\n", out.Student)
	fmt.Fprintf(w, "Preferences: %s\n", strings.Join(out.Preferences, ", "))

	if len(out.Matches) == 0 {
		fmt.Fprintln(w, "\nNo mentors matched.")
		return
	}

	for _, m := range out.Matches {
		fmt.Fprintf(w, "\n%s - Combined Score: %s\n", m.DocumentID, percent(m.Combined))
		fmt.Fprintf(w, "  Phrase Match Score: %s\n", percent(m.PhraseScore))
		fmt.Fprintf(w, "  Semantic Similarity: %s\n", percent(m.SemanticScore))
		fmt.Fprintf(w, "  Combined Match Score: %s\n", percent(m.Combined))

		fmt.Fprintln(w, "  Matched Phrases:")
		if len(m.Common) == 0 {
			fmt.Fprintln(w, "    None")
		}
		for _, p := range m.Common {
			fmt.Fprintf(w, "    - %s\n", p)
		}

		fmt.Fprintln(w, "  Semantic Word Matches:")
		printSemanticMatches(w, "    ", m.SemanticMatches)
	}
}

func printSemanticMatches(w io.Writer, indent string, matches []semantic.Match) {
	if len(matches) == 0 {
		fmt.Fprintf(w, "%s%s\n", indent, noSemanticMatches)
		return
	}
	for _, m := range matches {
		fmt.Fprintf(w, "%s- %s <-> %s (Similarity: %s)\n", indent, m.Query, m.Candidate, strconv.FormatFloat(m.Score, 'f', -1, 64))
	}
}

func printCategorized(w io.Writer, id string, c phrase.Categorized) {
	fmt.Fprintf(w, "Mentor: %s\n", id)
	for _, category := range vocabulary.Categories {
		phrases := c.Unique(category)
		value := noneFound
		if len(phrases) > 0 {
			value = strings.Join(phrases, ", ")
		}
		fmt.Fprintf(w, "  %s: %s\n", title.String(string(category)), value)
	}
}

func printTokens(w io.Writer, records []inspect.Record, preprocessed string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TEXT\tLEMMA\tPOS\tDEPENDENCY")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Text, r.Lemma, r.POS, r.Dep)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nPreprocessed text:\n%s\n", preprocessed)
	return nil
}
