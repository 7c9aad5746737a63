package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/aly-chat/internal/completion"
	"github.com/wolfman30/aly-chat/internal/search"
)

func TestParseFocusMode(t *testing.T) {
	tests := map[string]FocusMode{
		"general":        ModeGeneral,
		"contentWriting": ModeContentWriting,
		"coding":         ModeCoding,
		"reasoning":      ModeReasoning,
		"webSearch":      ModeWebSearch,
		"":               ModeGeneral,
		"Coding":         ModeGeneral,
		"poetry":         ModeGeneral,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseFocusMode(in), "input %q", in)
	}
	assert.Len(t, Modes(), 5)
	assert.False(t, FocusMode("poetry").Valid())
	assert.Equal(t, "Smart Search", ModeWebSearch.Label())
	assert.Equal(t, ModeGeneral.Label(), FocusMode("poetry").Label())
}

func TestEveryModeCarriesFormattingContract(t *testing.T) {
	for _, m := range Modes() {
		for name, text := range map[string]string{
			"direct":   DirectInstructions(m),
			"analysis": AnalysisInstructions(m),
		} {
			assert.Contains(t, text, "IMPORTANT FORMATTING RULES:", "%s/%s", m, name)
			assert.Contains(t, text, "DO NOT use markdown formatting like ###, **, ####, ---, ===", "%s/%s", m, name)
			assert.Contains(t, text, "<strong>", "%s/%s", m, name)
			assert.Contains(t, text, "<code>", "%s/%s", m, name)
			assert.Equal(t, 9, strings.Count(text, "\n- "), "%s/%s rule count", m, name)
		}
	}
	assert.Contains(t, DirectInstructions(ModeCoding), "with proper indentation")
	assert.Contains(t, DirectInstructions(ModeReasoning), "For any code or formulas")
}

func TestUnknownModeFallsBackToGeneralTemplates(t *testing.T) {
	unknown := FocusMode("poetry")
	assert.Equal(t, OptimizerInstructions(ModeGeneral), OptimizerInstructions(unknown))
	assert.Equal(t, DirectInstructions(ModeGeneral), DirectInstructions(unknown))
	assert.Equal(t, AnalysisInstructions(ModeGeneral), AnalysisInstructions(unknown))
}

func TestOptimizerMessages(t *testing.T) {
	msgs := OptimizerMessages(ModeCoding, "how do I use generics in go")
	require.Len(t, msgs, 2)
	assert.Equal(t, completion.RoleSystem, msgs[0].Role)
	assert.True(t, strings.HasPrefix(msgs[0].Content, "You are a search query optimization expert specializing in programming and development research."))
	assert.True(t, strings.HasSuffix(msgs[0].Content, "6. Return ONLY the optimized search query, nothing else"))
	assert.Equal(t, completion.RoleUser, msgs[1].Role)
	assert.Equal(t, `Optimize this search query for coding mode: "how do I use generics in go"`, msgs[1].Content)

	general := OptimizerInstructions(ModeGeneral)
	assert.Contains(t, general, "yield the best general information results from a web search engine.")
}

func TestDirectMessagesPrependsSystemPrompt(t *testing.T) {
	history := []completion.Message{
		{Role: completion.RoleUser, Content: "hi"},
		{Role: completion.RoleAssistant, Content: "hello"},
		{Role: completion.RoleUser, Content: "write a haiku"},
	}
	msgs := DirectMessages(ModeContentWriting, history)
	require.Len(t, msgs, 4)
	assert.Equal(t, completion.RoleSystem, msgs[0].Role)
	assert.True(t, strings.HasPrefix(msgs[0].Content, "You are Aly AI in Content Writing mode."))
	assert.Equal(t, history, msgs[1:])
}

func TestFormatResults(t *testing.T) {
	got := FormatResults([]search.Result{
		{Title: "A", URL: "https://a.example", Description: "first"},
		{Title: "B", URL: "https://b.example", Description: "second"},
	})
	want := "1. Title: A\n   URL: https://a.example\n   Description: first\n" +
		"\n" +
		"2. Title: B\n   URL: https://b.example\n   Description: second\n"
	assert.Equal(t, want, got)
	assert.Empty(t, FormatResults(nil))
}

func TestAnalysisMessages(t *testing.T) {
	results := []search.Result{{Title: "Go 1.24", URL: "https://go.dev", Description: "release"}}
	msgs := AnalysisMessages(ModeWebSearch, "what's new in go", "go 1.24 release notes", results)
	require.Len(t, msgs, 2)
	assert.Equal(t, AnalysisInstructions(ModeWebSearch), msgs[0].Content)

	user := msgs[1].Content
	assert.True(t, strings.HasPrefix(user, "Original user question: \"what's new in go\"\nOptimized search query used: \"go 1.24 release notes\"\nFocus mode: webSearch\n\n"))
	assert.Contains(t, user, "Here are the current search results from Brave Search:\n\n1. Title: Go 1.24\n   URL: https://go.dev\n   Description: release\n")
	assert.Contains(t, user, "comprehensive answer to the original question in webSearch mode.")
	assert.True(t, strings.HasSuffix(user, "<code> tags for any code examples."))
}

func TestSearchApology(t *testing.T) {
	got := SearchApology("latest news", "top news today", search.FailureMessage)
	assert.Equal(t, "I apologize, but I couldn't retrieve current search results for \"latest news\". \n\nI optimized your query to: \"top news today\"\n\nFailed to perform web search", got)

	assert.True(t, strings.HasSuffix(SearchApology("q", "q", ""), "Please try again later."))
}

func TestCompositionIsDeterministic(t *testing.T) {
	history := []completion.Message{
		{Role: completion.RoleUser, Content: "how to reverse a linked list"},
	}
	results := []search.Result{
		{Title: "A", URL: "https://a.example", Description: "first"},
		{Title: "B", URL: "https://b.example", Description: "second"},
	}

	for _, m := range Modes() {
		assert.Equal(t, search.NeedsSearch(history[0].Content), search.NeedsSearch(history[0].Content))
		assert.Equal(t, DirectMessages(m, history), DirectMessages(m, history), "mode %s", m)
		assert.Equal(t,
			AnalysisMessages(m, "how to reverse a linked list", "reverse linked list", results),
			AnalysisMessages(m, "how to reverse a linked list", "reverse linked list", results),
			"mode %s", m)
		assert.Equal(t, OptimizerMessages(m, "q"), OptimizerMessages(m, "q"), "mode %s", m)
	}
	assert.Equal(t, SearchApology("q", "opt", ""), SearchApology("q", "opt", ""))

	first := DirectMessages(ModeCoding, history)
	first[0].Content = "mutated"
	assert.NotEqual(t, "mutated", DirectMessages(ModeCoding, history)[0].Content)
	assert.Equal(t, "how to reverse a linked list", history[0].Content)
}
