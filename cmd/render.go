package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/abhisek/cloze/internal/exercise"
)

var letters = [4]string{"A", "B", "C", "D"}

// printExercise writes the article followed by each blank's lettered
// options and, when present, the annotated words.
func printExercise(w io.Writer, ex *exercise.Exercise, details bool) {
	sep := strings.Repeat("─", 60)

	fmt.Fprintln(w, ex.Article)
	fmt.Fprintln(w)
	fmt.Fprintln(w, sep)

	for _, n := range ex.Blanks() {
		opts := ex.Options[n]
		parts := make([]string, 0, len(opts))
		for i, o := range opts {
			parts = append(parts, fmt.Sprintf("%s) %s", letters[i], o))
		}
		fmt.Fprintf(w, "%3d.  %s\n", n, strings.Join(parts, "   "))

		if !details {
			continue
		}
		if d, ok := ex.OptionsDetail[n]; ok {
			for i, od := range d {
				fmt.Fprintf(w, "      %s) %s %s %s\n", letters[i], od.Word, od.Phonetic, od.Meaning)
			}
		}
	}

	if len(ex.Annotations) > 0 {
		fmt.Fprintln(w, sep)
		for _, a := range ex.Annotations {
			fmt.Fprintf(w, "  %s: %s\n", a.Word, a.Meaning)
		}
	}
}

func printScore(w io.Writer, score exercise.Score) {
	blanks := make([]int, 0, len(score.Blanks))
	for n := range score.Blanks {
		blanks = append(blanks, n)
	}
	sort.Ints(blanks)

	for _, n := range blanks {
		b := score.Blanks[n]
		mark := "✓"
		if !b.Correct {
			mark = "✗"
		}
		answer := b.Answer
		if answer == "" {
			answer = "(none)"
		}
		fmt.Fprintf(w, "%3d.  %s %-20s  expected %s\n", n, mark, answer, b.Expected)
	}
	fmt.Fprintf(w, "\nScore: %d/%d\n", score.Correct, score.Total)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
