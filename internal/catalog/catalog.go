package catalog

import (
	"strings"

	"github.com/wolfman30/aly-chat/internal/prompts"
)

// ModelPreferenceKey is where browsers persist the selected model.
const ModelPreferenceKey = "deepseek-model"

// Model describes a selectable completion model.
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Badge       string `json:"badge"`
	Reasoning   bool   `json:"reasoning"`
}

// ExampleGroup is a set of starter prompts for one focus mode.
type ExampleGroup struct {
	Name      string            `json:"name"`
	FocusMode prompts.FocusMode `json:"focusMode"`
	Examples  []string          `json:"examples"`
}

// Mode describes a focus mode for display.
type Mode struct {
	ID          prompts.FocusMode `json:"id"`
	Label       string            `json:"label"`
	Description string            `json:"description"`
}

var models = []Model{
	{ID: "deepseek/deepseek-r1-0528:free", Name: "DeepSeek R1", Description: "Latest reasoning model with advanced capabilities", Badge: "Free"},
	{ID: "deepseek/deepseek-r1-0528-qwen3-8b:free", Name: "DeepSeek R1 Qwen3-8B", Description: "Qwen3-8B variant with reasoning", Badge: "Free"},
	{ID: "deepseek/deepseek-chat", Name: "DeepSeek Chat", Description: "Standard conversational model", Badge: "Pro"},
	{ID: "deepseek/deepseek-chat-v3-0324:free", Name: "DeepSeek Chat v3", Description: "March 2024 version", Badge: "Free"},
}

var exampleGroups = []ExampleGroup{
	{Name: "Web Search", FocusMode: prompts.ModeWebSearch, Examples: []string{
		"Search for latest AI developments",
		"Find current stock prices for Tesla",
		"What's happening in tech news today?",
	}},
	{Name: "Content Writing", FocusMode: prompts.ModeContentWriting, Examples: []string{
		"Write a blog post about sustainable energy",
		"Create a professional email template",
		"Draft social media content for a product launch",
	}},
	{Name: "Coding", FocusMode: prompts.ModeCoding, Examples: []string{
		"Create a React component for a todo list",
		"Debug this Python function",
		"Convert this JavaScript to TypeScript",
	}},
	{Name: "Reasoning", FocusMode: prompts.ModeReasoning, Examples: []string{
		"Analyze the pros and cons of remote work",
		"Solve this complex math problem step by step",
		"Help me make a strategic business decision",
	}},
}

// Models returns the selectable models; the first entry is the default.
func Models() []Model {
	out := make([]Model, len(models))
	for i, m := range models {
		m.Reasoning = IsReasoningModel(m.ID)
		out[i] = m
	}
	return out
}

// Lookup finds a model by ID.
func Lookup(id string) (Model, bool) {
	for _, m := range Models() {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// IsReasoningModel reports whether the model emits extended reasoning.
func IsReasoningModel(id string) bool {
	return strings.Contains(id, "r1")
}

// Examples returns the starter prompt groups.
func Examples() []ExampleGroup {
	out := make([]ExampleGroup, len(exampleGroups))
	for i, g := range exampleGroups {
		g.Examples = append([]string(nil), g.Examples...)
		out[i] = g
	}
	return out
}

// Modes lists the focus modes with display text.
func Modes() []Mode {
	var out []Mode
	for _, m := range prompts.Modes() {
		out = append(out, Mode{ID: m, Label: m.Label(), Description: m.Description()})
	}
	return out
}
