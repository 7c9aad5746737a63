package prompts

import (
	"fmt"
	"strings"

	"github.com/wolfman30/aly-chat/internal/completion"
	"github.com/wolfman30/aly-chat/internal/search"
)

const defaultApologyDetail = "Please try again later."

// OptimizerMessages builds the two-message conversation asking the model to
// rewrite rawQuery as a web search query.
func OptimizerMessages(m FocusMode, rawQuery string) []completion.Message {
	return []completion.Message{
		{Role: completion.RoleSystem, Content: OptimizerInstructions(m)},
		{Role: completion.RoleUser, Content: fmt.Sprintf("Optimize this search query for %s mode: \"%s\"", m, rawQuery)},
	}
}

// DirectMessages prepends the mode's system prompt to the unmodified history.
func DirectMessages(m FocusMode, history []completion.Message) []completion.Message {
	out := make([]completion.Message, 0, len(history)+1)
	out = append(out, completion.Message{Role: completion.RoleSystem, Content: DirectInstructions(m)})
	return append(out, history...)
}

// AnalysisMessages builds the search-grounded system and user pair.
func AnalysisMessages(m FocusMode, original, optimized string, results []search.Result) []completion.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Original user question: \"%s\"\n", original)
	fmt.Fprintf(&b, "Optimized search query used: \"%s\"\n", optimized)
	fmt.Fprintf(&b, "Focus mode: %s\n\n", m)
	b.WriteString("Here are the current search results from Brave Search:\n\n")
	b.WriteString(FormatResults(results))
	fmt.Fprintf(&b, "\n\nPlease analyze these results and provide a comprehensive answer to the original question in %s mode. ", m)
	b.WriteString("Include relevant details, key insights, and cite the sources when appropriate. ")
	b.WriteString("Structure your response clearly and make it informative and easy to understand.\n\n")
	b.WriteString("Remember: Do not use markdown formatting. Use natural language with <strong> tags for emphasis and <code> tags for any code examples.")

	return []completion.Message{
		{Role: completion.RoleSystem, Content: AnalysisInstructions(m)},
		{Role: completion.RoleUser, Content: b.String()},
	}
}

// FormatResults renders results as a numbered block, one entry per result.
func FormatResults(results []search.Result) string {
	entries := make([]string, len(results))
	for i, r := range results {
		entries[i] = fmt.Sprintf("%d. Title: %s\n   URL: %s\n   Description: %s\n", i+1, r.Title, r.URL, r.Description)
	}
	return strings.Join(entries, "\n")
}

// SearchApology is the plain-text reply used when search yields nothing.
func SearchApology(original, optimized, detail string) string {
	if strings.TrimSpace(detail) == "" {
		detail = defaultApologyDetail
	}
	return fmt.Sprintf("I apologize, but I couldn't retrieve current search results for \"%s\". \n\nI optimized your query to: \"%s\"\n\n%s", original, optimized, detail)
}
