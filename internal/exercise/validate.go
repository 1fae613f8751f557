package exercise

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// keyed is a string-keyed map that remembers first insertion order.
// Setting an existing key replaces the value in place.
type keyed[T any] struct {
	keys []string
	vals map[string]T
}

func newKeyed[T any]() keyed[T] {
	return keyed[T]{vals: make(map[string]T)}
}

func (k *keyed[T]) set(key string, v T) {
	if _, ok := k.vals[key]; !ok {
		k.keys = append(k.keys, key)
	}
	k.vals[key] = v
}

func (k *keyed[T]) get(key string) (T, bool) {
	v, ok := k.vals[key]
	return v, ok
}

func (k *keyed[T]) len() int { return len(k.keys) }

// draft is a completion that passed validation. Keys are still the strings
// the model emitted and options[key][0] is still the correct answer.
type draft struct {
	article     string
	options     keyed[Options]
	details     keyed[[]OptionDetail]
	annotations []Annotation
}

// validate checks parsed against the exercise shape. Rules run in order and
// the first violation is returned as a *SchemaError. Incomplete
// optionsDetail and annotations entries are dropped, never reported.
func validate(parsed gjson.Result) (*draft, error) {
	if !parsed.IsObject() {
		return nil, &SchemaError{Field: "article, options", Message: "missing article or options"}
	}

	fields := lastValues(parsed)
	article, hasArticle := fields["article"]
	options, hasOptions := fields["options"]
	switch {
	case !hasArticle && !hasOptions:
		return nil, &SchemaError{Field: "article, options", Message: "missing article or options"}
	case !hasArticle:
		return nil, &SchemaError{Field: "article", Message: "missing article or options"}
	case !hasOptions:
		return nil, &SchemaError{Field: "options", Message: "missing article or options"}
	}

	if article.Type != gjson.String || strings.TrimSpace(article.Str) == "" {
		return nil, &SchemaError{Field: "article", Message: "article must be a non-empty string"}
	}
	if !options.IsObject() {
		return nil, &SchemaError{Field: "options", Message: "options must be an object"}
	}

	d := &draft{
		article: strings.TrimSpace(article.Str),
		options: newKeyed[Options](),
		details: newKeyed[[]OptionDetail](),
	}

	// Shadowed duplicates are never validated; only the last value counts.
	entries := members(options)
	for _, key := range entries.keys {
		value := entries.vals[key]
		items := value.Array()
		if !value.IsArray() || len(items) != 4 {
			field := fmt.Sprintf("options[%q]", key)
			return nil, &SchemaError{Field: field, Message: field + " must be an array of 4 strings"}
		}
		var opts Options
		for i, e := range items {
			opts[i] = coerce(e)
		}
		d.options.set(key, opts)
	}

	if detail, ok := fields["optionsDetail"]; ok && detail.IsObject() {
		entries := members(detail)
		for _, key := range entries.keys {
			value := entries.vals[key]
			items := value.Array()
			if !value.IsArray() || len(items) != 4 {
				continue
			}
			kept := make([]OptionDetail, 0, 4)
			for _, e := range items {
				if od, ok := optionDetail(e); ok {
					kept = append(kept, od)
				}
			}
			d.details.set(key, kept)
		}
	}

	if notes, ok := fields["annotations"]; ok && notes.IsArray() {
		for _, e := range notes.Array() {
			if a, ok := annotation(e); ok {
				d.annotations = append(d.annotations, a)
			}
		}
	}

	return d, nil
}

// lastValues returns the top-level members of obj. A repeated key keeps its
// last value, matching encoding/json.
func lastValues(obj gjson.Result) map[string]gjson.Result {
	out := make(map[string]gjson.Result)
	obj.ForEach(func(key, value gjson.Result) bool {
		out[key.String()] = value
		return true
	})
	return out
}

// members returns the members of obj in first-seen key order. A repeated
// key keeps its last value.
func members(obj gjson.Result) keyed[gjson.Result] {
	out := newKeyed[gjson.Result]()
	obj.ForEach(func(key, value gjson.Result) bool {
		out.set(key.String(), value)
		return true
	})
	return out
}

// coerce renders an option entry as a string. Numbers use their shortest
// decimal form, so 1.0 becomes "1". Nested values keep their raw JSON.
func coerce(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	case gjson.Null:
		return "null"
	case gjson.Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return strings.TrimSpace(v.Raw)
	}
}

func optionDetail(v gjson.Result) (OptionDetail, bool) {
	if !v.IsObject() {
		return OptionDetail{}, false
	}
	fields := lastValues(v)
	word, okWord := stringField(fields, "word")
	meaning, okMeaning := stringField(fields, "meaning")
	phonetic, okPhonetic := stringField(fields, "phonetic")
	if !okWord || !okMeaning || !okPhonetic {
		return OptionDetail{}, false
	}
	pos, _ := stringField(fields, "partOfSpeech")
	return OptionDetail{
		Word:         word,
		Meaning:      meaning,
		Phonetic:     phonetic,
		PartOfSpeech: pos,
	}, true
}

func annotation(v gjson.Result) (Annotation, bool) {
	if !v.IsObject() {
		return Annotation{}, false
	}
	fields := lastValues(v)
	word, _ := stringField(fields, "word")
	meaning, _ := stringField(fields, "meaning")
	word, meaning = strings.TrimSpace(word), strings.TrimSpace(meaning)
	if word == "" && meaning == "" {
		return Annotation{}, false
	}
	return Annotation{Word: word, Meaning: meaning}, true
}

// stringField returns fields[name] when it is a string.
func stringField(fields map[string]gjson.Result, name string) (string, bool) {
	v, ok := fields[name]
	if !ok || v.Type != gjson.String {
		return "", false
	}
	return v.Str, true
}
