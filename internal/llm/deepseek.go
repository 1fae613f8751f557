package llm

import "strings"

const defaultDeepSeekBaseURL = "https://api.deepseek.com/v1"

// DeepSeekProvider wraps OpenAIProvider with DeepSeek defaults. DeepSeek
// exposes an OpenAI-compatible chat-completions API.
type DeepSeekProvider struct {
	*OpenAIProvider
}

// NewDeepSeekProvider creates a provider targeting the DeepSeek API. A blank
// key is reported as *ErrConfiguration.
func NewDeepSeekProvider(cfg DeepSeekConfig) (*DeepSeekProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ErrConfiguration{Setting: "DEEPSEEK_API_KEY"}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultDeepSeekBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "deepseek-chat"
	}

	inner := newOpenAIProviderRaw(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   model,
		BaseURL: baseURL,
	})
	inner.legacyMaxTokens = true

	return &DeepSeekProvider{OpenAIProvider: inner}, nil
}

func mapFinishReason(reason string) string {
	if reason == "length" {
		return "max_tokens"
	}
	return "end"
}
