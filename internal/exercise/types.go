package exercise

import (
	"maps"
	"slices"
)

// Options holds the four choices offered for one blank.
type Options [4]string

// OptionDetail describes one option. OptionsDetail[n][i] always describes
// Options[n][i].
type OptionDetail struct {
	Word         string `json:"word"`
	Meaning      string `json:"meaning"`
	Phonetic     string `json:"phonetic"`
	PartOfSpeech string `json:"partOfSpeech,omitempty"`
}

// Annotation is a glossary entry for a word in the article that is not one
// of the target words.
type Annotation struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
}

// Exercise is a validated cloze test. Blanks are numbered from 1 and appear
// in Article as {{n}}. It is built once per generation and never mutated.
type Exercise struct {
	Article       string                  `json:"article"`
	Options       map[int]Options         `json:"options"`
	OptionsDetail map[int][4]OptionDetail `json:"optionsDetail,omitempty"`
	Annotations   []Annotation            `json:"annotations,omitempty"`

	// AnswerKey maps each blank to its correct option, captured before the
	// options were shuffled. It stays server-side.
	AnswerKey map[int]string `json:"-"`
}

// Blanks returns the blank numbers in ascending order.
func (e *Exercise) Blanks() []int {
	return slices.Sorted(maps.Keys(e.Options))
}
