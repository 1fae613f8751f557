package llm

import "context"

// Provider is the core abstraction for text generation.
// Consumers call Generate with a Request and receive the raw completion text.
type Provider interface {
	// Generate sends a prompt to the model and returns its completion.
	// Implementations issue exactly one upstream request and never retry.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is an optional system prompt. The cloze pipeline folds its
	// instructions into the single user message instead.
	System string

	// Messages is the conversation. For cloze generation this is one user
	// message holding the full prompt.
	Messages []Message

	// MaxTokens caps the completion length. Zero leaves it to the provider,
	// except for Anthropic which requires a value.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 2.0.
	Temperature float64

	// JSONMode asks the provider to constrain output to a JSON object where
	// it has a native switch for that. Providers without one ignore it.
	JSONMode bool
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response holds the model's output.
type Response struct {
	// Text is the completion exactly as the provider returned it.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt builds a Request carrying a single user message.
func UserPrompt(prompt string) Request {
	return Request{Messages: []Message{{Role: RoleUser, Content: prompt}}}
}
