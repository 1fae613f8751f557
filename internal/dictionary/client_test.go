package dictionary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloBody = `[{
	"word": "hello",
	"phonetics": [
		{"text": "/həˈloʊ/"},
		{"text": "/hɛˈləʊ/", "audio": "https://example.com/hello-uk.mp3"}
	],
	"meanings": [
		{
			"partOfSpeech": "noun",
			"definitions": [
				{"definition": "A greeting.", "example": "She gave a cheerful hello."},
				{"definition": "Another sense."}
			]
		},
		{"partOfSpeech": "interjection", "definitions": [{"definition": "Used as a greeting."}]}
	]
}]`

func serve(t *testing.T, status int, body string) (*Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 0, nil), &calls
}

func TestClient_Lookup_Success(t *testing.T) {
	t.Parallel()

	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(helloBody))
	}))
	defer srv.Close()

	detail, err := NewClient(srv.URL+"/", 0, nil).Lookup(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, "/hello", path)
	assert.Equal(t, &WordDetail{
		Word:         "hello",
		Meaning:      "A greeting.\n\nExample: She gave a cheerful hello.",
		PartOfSpeech: "noun",
		Phonetic:     "/hɛˈləʊ/",
	}, detail)
}

func TestClient_Lookup_NotFound(t *testing.T) {
	t.Parallel()

	c, calls := serve(t, http.StatusNotFound, `{"title": "No Definitions Found"}`)
	_, err := c.Lookup(context.Background(), "qwertyuiop")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Lookup_EmptyArray(t *testing.T) {
	t.Parallel()

	c, _ := serve(t, http.StatusOK, `[]`)
	_, err := c.Lookup(context.Background(), "nothing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Lookup_RetriesServerErrorOnce(t *testing.T) {
	t.Parallel()

	c, calls := serve(t, http.StatusBadGateway, `oops`)
	_, err := c.Lookup(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 502")
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Lookup_RetryRecovers(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(helloBody))
	}))
	defer srv.Close()

	detail, err := NewClient(srv.URL, 0, nil).Lookup(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "noun", detail.PartOfSpeech)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Lookup_ClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	c, calls := serve(t, http.StatusTooManyRequests, `slow down`)
	_, err := c.Lookup(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Lookup_BadJSON(t *testing.T) {
	t.Parallel()

	c, _ := serve(t, http.StatusOK, `<html>`)
	_, err := c.Lookup(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode json")
}

func TestMapEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry apiEntry
		want  WordDetail
	}{
		{
			name:  "entry phonetic wins and is wrapped",
			entry: apiEntry{Phonetic: "kæt", Phonetics: []apiPhonetic{{Text: "/x/", Audio: "a.mp3"}}},
			want:  WordDetail{Word: "w", Phonetic: "/kæt/", PartOfSpeech: UnknownPartOfSpeech, Meaning: NoDefinition},
		},
		{
			name:  "first text when none has audio",
			entry: apiEntry{Phonetics: []apiPhonetic{{Audio: "a.mp3"}, {Text: "/one/"}, {Text: "/two/"}}},
			want:  WordDetail{Word: "w", Phonetic: "/one/", PartOfSpeech: UnknownPartOfSpeech, Meaning: NoDefinition},
		},
		{
			name:  "no phonetic",
			entry: apiEntry{Meanings: []apiMeaning{{PartOfSpeech: "verb", Definitions: []apiDefinition{{Definition: "To run."}}}}},
			want:  WordDetail{Word: "w", Phonetic: "", PartOfSpeech: "verb", Meaning: "To run."},
		},
		{
			name:  "meaning without definitions",
			entry: apiEntry{Meanings: []apiMeaning{{PartOfSpeech: "adverb"}}},
			want:  WordDetail{Word: "w", PartOfSpeech: "adverb", Meaning: NoDefinition},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, &tt.want, mapEntry("w", tt.entry))
		})
	}
}
