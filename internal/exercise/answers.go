package exercise

// BlankResult is the outcome for one blank.
type BlankResult struct {
	Answer   string `json:"answer,omitempty"`
	Expected string `json:"expected"`
	Correct  bool   `json:"correct"`
}

// Score summarizes a set of answers.
type Score struct {
	Correct int                 `json:"correct"`
	Total   int                 `json:"total"`
	Blanks  map[int]BlankResult `json:"blanks"`
}

// CheckAnswers scores answers against the exercise's answer key. An answer
// is the chosen option string and must equal the key exactly. Unanswered
// blanks count as wrong; answers for unknown blanks are ignored.
func CheckAnswers(ex *Exercise, answers map[int]string) Score {
	score := Score{Blanks: make(map[int]BlankResult, len(ex.AnswerKey))}
	for n, expected := range ex.AnswerKey {
		given := answers[n]
		ok := given != "" && given == expected
		score.Blanks[n] = BlankResult{Answer: given, Expected: expected, Correct: ok}
		score.Total++
		if ok {
			score.Correct++
		}
	}
	return score
}
