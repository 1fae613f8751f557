package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abhisek/cloze/internal/logger"
)

const (
	DefaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"
	DefaultTimeout = 10 * time.Second

	retryDelay = 500 * time.Millisecond
)

// Fallbacks used when the entry lacks a field.
const (
	UnknownPartOfSpeech = "unknown"
	NoDefinition        = "No definition found"
)

// ErrNotFound is returned when the dictionary has no entry for a word.
var ErrNotFound = errors.New("word not found")

// WordDetail is what a lookup reports about one word.
type WordDetail struct {
	Word         string `json:"word"`
	Meaning      string `json:"meaning"`
	PartOfSpeech string `json:"partOfSpeech"`
	Phonetic     string `json:"phonetic"`
}

// Client fetches word details from the Free Dictionary API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a Client. An empty baseURL or a non-positive timeout
// selects the defaults.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With("adapter", "freedict"),
	}
}

// Lookup fetches word. It returns ErrNotFound on a 404 or an empty result.
func (c *Client) Lookup(ctx context.Context, word string) (*WordDetail, error) {
	reqURL := c.baseURL + "/" + url.PathEscape(word)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dictionary: create request: %w", err)
	}

	resp, err := c.doWithRetry(ctx, req, word)
	if err != nil {
		c.log.Error("dictionary request failed", "word", word, "error", err)
		return nil, fmt.Errorf("dictionary: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dictionary: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dictionary: read body: %w", err)
	}

	var entries []apiEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("dictionary: decode json: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNotFound
	}

	detail := mapEntry(word, entries[0])
	c.log.Debug("dictionary response", "word", word, "part_of_speech", detail.PartOfSpeech)
	return detail, nil
}

// doWithRetry executes the request with a single retry on 5xx or network
// errors.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request, word string) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)

	shouldRetry := err != nil || resp.StatusCode >= 500
	if !shouldRetry || ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
		resp.Body.Close()
	}
	c.log.Warn("dictionary retry", "word", word, "reason", reason)

	timer := time.NewTimer(retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return c.httpClient.Do(req)
}

// mapEntry reduces an API entry to a WordDetail: the first meaning's part of
// speech and first definition, and the preferred transcription.
func mapEntry(word string, e apiEntry) *WordDetail {
	detail := &WordDetail{
		Word:         word,
		Phonetic:     normalizePhonetic(pickPhonetic(e)),
		PartOfSpeech: UnknownPartOfSpeech,
		Meaning:      NoDefinition,
	}

	if len(e.Meanings) == 0 {
		return detail
	}
	first := e.Meanings[0]
	if first.PartOfSpeech != "" {
		detail.PartOfSpeech = first.PartOfSpeech
	}
	if len(first.Definitions) > 0 && first.Definitions[0].Definition != "" {
		def := first.Definitions[0]
		detail.Meaning = def.Definition
		if def.Example != "" {
			detail.Meaning += "\n\nExample: " + def.Example
		}
	}
	return detail
}

// pickPhonetic prefers the entry's own phonetic, then a transcription that
// has audio, then any transcription.
func pickPhonetic(e apiEntry) string {
	if e.Phonetic != "" {
		return e.Phonetic
	}
	for _, p := range e.Phonetics {
		if p.Text != "" && p.Audio != "" {
			return p.Text
		}
	}
	for _, p := range e.Phonetics {
		if p.Text != "" {
			return p.Text
		}
	}
	return ""
}

func normalizePhonetic(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "/") {
		return s
	}
	return "/" + s + "/"
}
