package completion

import (
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Chat roles accepted by the provider.
const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

// Sampling parameters used by the chat flows.
const (
	DirectTemperature    float32 = 0.7
	AnalysisTemperature  float32 = 0.3
	OptimizerTemperature float32 = 0.3
	ResponseMaxTokens            = 4000
	OptimizerMaxTokens           = 100
)

// ErrMissingAPIKey is returned when no provider credential is configured.
var ErrMissingAPIKey = errors.New("completion: OpenRouter API key not configured")

// Message is a single conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one chat completion call.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// UpstreamError carries a non-success provider response.
type UpstreamError struct {
	Status  int
	Details string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion: upstream returned status %d: %s", e.Status, e.Details)
}

func (r Request) openAI(stream bool) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, 0, len(r.Messages))
	for _, m := range r.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return openai.ChatCompletionRequest{
		Model:       r.Model,
		Messages:    msgs,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
		Stream:      stream,
	}
}
