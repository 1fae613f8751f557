package exercise

import (
	"fmt"
	"strings"
)

// DefaultSystemPrompt instructs the model to answer with a single cloze
// exercise JSON object.
const DefaultSystemPrompt = `You are a cloze test generator for English vocabulary learning.

Given a list of English words from the user, output exactly one JSON object. No markdown, no code fence.

Format:
{
  "article": "One or two short paragraphs in natural English. Use placeholders {{1}}, {{2}}, {{3}} for each blank. Each {{n}} corresponds to one of the user's words. Use each given word exactly once.",
  "options": {
    "1": ["correctWord", "wrong1", "wrong2", "wrong3"],
    "2": ["correctWord", "wrong1", "wrong2", "wrong3"],
    ...
  },
  "optionsDetail": {
    "1": [
      {"word": "correctWord", "meaning": "short meaning", "phonetic": "/IPA/", "partOfSpeech": "n."},
      ... one entry per option, in the same order as options["1"]
    ],
    ...
  },
  "annotations": [
    {"word": "a harder word in the article that is not a blank", "meaning": "short meaning"}
  ]
}

Rules: "article" uses {{1}}, {{2}}, etc. "options" keys are string numbers "1", "2", ...; each value is exactly 4 strings (correct first, then 3 wrong options). "optionsDetail" uses the same keys as "options" and describes each option word with its meaning, phonetic and optional part of speech. "annotations" is optional. Output only valid JSON.`

const fallbackInstruction = "Generate a short cloze paragraph with 1 blank."

// BuildPrompt combines the system directive with the target words. The
// result depends only on its inputs. An empty word list asks for a single
// blank instead.
func BuildPrompt(system string, words []string) string {
	return system + "\n\n---\n\n" + userInstruction(words)
}

func userInstruction(words []string) string {
	if len(words) == 0 {
		return fallbackInstruction
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a cloze test using these %d word(s). Use each word exactly once as a blank.\n\n", len(words))
	b.WriteString("Words:\n")
	b.WriteString(strings.Join(words, "\n"))
	return b.String()
}
