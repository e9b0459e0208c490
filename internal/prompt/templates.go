// Package prompt builds turn-delimited prompts for the Gemma-style
// models. The exact markup must match the models' training format.
package prompt

import (
	"fmt"
	"strings"
)

const (
	userTurnStart  = "<start_of_turn>user\n"
	turnEnd        = "<end_of_turn>\n"
	modelTurnStart = "<start_of_turn>model\n"
)

// Chat formats a prompt for a direct chat turn.
func Chat(prompt string) string {
	return userTurnStart + prompt + turnEnd + modelTurnStart
}

// ToolDecision formats the tool-detection instruction for the
// tool-decision model. The model is expected to answer with exactly
// "web_search" or "chat".
func ToolDecision(prompt string) string {
	return fmt.Sprintf(toolDecisionTemplate, prompt)
}

// Summarize formats the summarization turn embedding the original
// question and the search digest.
func Summarize(prompt, digest string) string {
	return userTurnStart +
		fmt.Sprintf("Based on the following web search results, provide a helpful and concise answer to the question: %q\n\n", prompt) +
		digest + "\n" +
		turnEnd + modelTurnStart
}

// ExtractTurn returns the text between the user-turn delimiters of a
// formatted prompt. Formatting a prompt with Chat and extracting the
// turn round-trips the original text.
func ExtractTurn(formatted string) (string, bool) {
	i := strings.Index(formatted, userTurnStart)
	if i < 0 {
		return "", false
	}
	rest := formatted[i+len(userTurnStart):]
	j := strings.Index(rest, "<end_of_turn>")
	if j < 0 {
		return "", false
	}
	return rest[:j], true
}

const toolDecisionTemplate = `<start_of_turn>user
You are a helpful assistant with access to the following tool:

Tool: web_search
Description: Search the web for current information
When to use: Use this when the user asks about current events, locations, recommendations, comparisons, or needs factual information that may change over time.

Examples:
- "What are the best restaurants in Paris?" -> USE web_search
- "Current weather in Tokyo" -> USE web_search
- "Where is the Eiffel Tower located?" -> USE web_search
- "Tell me about the Eiffel Tower" -> DO NOT use web_search (historical/general knowledge)
- "What is 2+2?" -> DO NOT use web_search (simple calculation)

User request: %s

Respond with ONLY one of these:
- "web_search" if the tool should be used
- "chat" if the tool should not be used<end_of_turn>
<start_of_turn>model
`
