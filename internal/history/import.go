package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/cloze/internal/exercise"
)

// exportSchema describes the history array the web client keeps in
// localStorage under "cloze_test_history".
const exportSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "timestamp", "wordList", "article", "options"],
    "properties": {
      "id": {"type": "string"},
      "timestamp": {"type": "number", "minimum": 0},
      "wordList": {"type": "string"},
      "article": {"type": "string", "minLength": 1},
      "options": {
        "type": "object",
        "additionalProperties": {
          "type": "array",
          "minItems": 4,
          "maxItems": 4,
          "items": {"type": "string"}
        }
      },
      "optionsDetail": {
        "type": "object",
        "additionalProperties": {
          "type": "array",
          "minItems": 4,
          "maxItems": 4,
          "items": {
            "type": "object",
            "required": ["word", "meaning", "phonetic"],
            "properties": {
              "word": {"type": "string"},
              "meaning": {"type": "string"},
              "phonetic": {"type": "string"},
              "partOfSpeech": {"type": "string"}
            }
          }
        }
      },
      "annotations": {
        "type": "array",
        "items": {
          "type": "object",
          "properties": {
            "word": {"type": "string"},
            "meaning": {"type": "string"}
          }
        }
      },
      "answers": {
        "type": "object",
        "additionalProperties": {"type": "string"}
      }
    }
  }
}`

const exportSchemaURL = "schema://cloze-history-export.json"

var compiledExportSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(exportSchema)))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(exportSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(exportSchemaURL)
})

// ImportError reports an export that does not match the expected shape.
type ImportError struct {
	Err error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("invalid history export: %v", e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

type exportedRecord struct {
	Timestamp     float64                             `json:"timestamp"`
	WordList      string                              `json:"wordList"`
	Article       string                              `json:"article"`
	Options       map[string]exercise.Options         `json:"options"`
	OptionsDetail map[string][4]exercise.OptionDetail `json:"optionsDetail"`
	Annotations   []exercise.Annotation               `json:"annotations"`
	Answers       map[string]string                   `json:"answers"`
}

// Import adds the records of a web client history export, newest first as
// exported, keeping at most the history limit. Records get new ids. Blank
// keys go through the same rules as generated exercises, and details that
// do not line up with their options are dropped. It returns how many
// records were imported.
func (s *Service) Import(ctx context.Context, userID string, data []byte) (int, error) {
	schema, err := compiledExportSchema()
	if err != nil {
		return 0, fmt.Errorf("compile export schema: %w", err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return 0, &ImportError{Err: err}
	}
	if err := schema.Validate(doc); err != nil {
		return 0, &ImportError{Err: err}
	}

	var records []exportedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, &ImportError{Err: err}
	}
	if len(records) > s.limit {
		records = records[:s.limit]
	}

	// Oldest first, so the newest export record is also the newest entry.
	imported := 0
	for i := len(records) - 1; i >= 0; i-- {
		entry := fromExport(&records[i])
		if entry.Timestamp <= 0 {
			entry.Timestamp = s.now().UnixMilli()
		}
		if err := s.insert(ctx, userID, entry); err != nil {
			return imported, err
		}
		imported++
	}

	s.prune(ctx, userID)
	s.log.Info("history imported", "user", userID, "records", imported)
	return imported, nil
}

func fromExport(r *exportedRecord) *Entry {
	e := &Entry{
		ID:        newID(),
		Timestamp: int64(r.Timestamp),
		WordList:  r.WordList,
	}
	e.Article = r.Article
	e.Options = make(map[int]exercise.Options, len(r.Options))
	for key, opts := range r.Options {
		if n, ok := exercise.ParseBlank(key); ok {
			e.Options[n] = opts
		}
	}

	for key, details := range r.OptionsDetail {
		n, ok := exercise.ParseBlank(key)
		if !ok || !detailsMatch(e.Options, n, details) {
			continue
		}
		if e.OptionsDetail == nil {
			e.OptionsDetail = make(map[int][4]exercise.OptionDetail)
		}
		e.OptionsDetail[n] = details
	}

	for _, a := range r.Annotations {
		if a.Word != "" || a.Meaning != "" {
			e.Annotations = append(e.Annotations, a)
		}
	}

	for key, answer := range r.Answers {
		n, ok := exercise.ParseBlank(key)
		if _, known := e.Options[n]; !ok || !known || answer == "" {
			continue
		}
		if e.Answers == nil {
			e.Answers = make(map[int]string)
		}
		e.Answers[n] = answer
	}
	return e
}

func detailsMatch(options map[int]exercise.Options, n int, details [4]exercise.OptionDetail) bool {
	opts, ok := options[n]
	if !ok {
		return false
	}
	for i := range opts {
		if details[i].Word != opts[i] {
			return false
		}
	}
	return true
}
