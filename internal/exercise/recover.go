package exercise

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/abhisek/cloze/internal/llm"
)

const previewRunes = 200

// parseCompletion parses text as JSON. When that fails it retries once on
// the span from the first '{' to the last '}', which drops commentary the
// model wrapped around the object.
func parseCompletion(text string) (gjson.Result, error) {
	var raw json.RawMessage
	err := json.Unmarshal([]byte(text), &raw)
	if err == nil {
		return gjson.ParseBytes(raw), nil
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		candidate := text[start : end+1]
		if gjson.Valid(candidate) {
			return gjson.Parse(candidate), nil
		}
	}

	return gjson.Result{}, &ErrMalformedResponse{
		Err:     err,
		Preview: llm.Preview(text, previewRunes),
	}
}
