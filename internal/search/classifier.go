package search

import "strings"

// triggers are matched as case-insensitive substrings of the user message.
var triggers = []string{
	"latest", "recent", "current", "today", "news",
	"what's happening", "search for", "find", "look up",
	"when did", "what happened", "price of", "stock", "weather",
	"events", "trending", "update", "now", "this week", "this month",
	"2024", "2025", "examples of", "best practices", "how to",
	"tutorial", "guide", "documentation", "compare", "vs", "versus",
	"difference between", "pros and cons",
}

// NeedsSearch reports whether a message likely needs fresh web results.
// Matching is plain substring containment, so "now" also matches "know".
func NeedsSearch(message string) bool {
	lower := strings.ToLower(message)
	if lower == "" {
		return false
	}
	for _, trigger := range triggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// Triggers returns a copy of the trigger phrase list.
func Triggers() []string {
	out := make([]string, len(triggers))
	copy(out, triggers)
	return out
}
