package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRoundTrip(t *testing.T) {
	prompts := []string{
		"What's the weather in Tokyo?",
		"multi\nline\nprompt",
		"prompt with <tags> and \"quotes\"",
	}

	for _, p := range prompts {
		formatted := Chat(p)
		got, ok := ExtractTurn(formatted)
		require.True(t, ok)
		assert.Equal(t, p, got)
	}
}

func TestChatFormat(t *testing.T) {
	got := Chat("hello")
	assert.Equal(t, "<start_of_turn>user\nhello<end_of_turn>\n<start_of_turn>model\n", got)
}

func TestToolDecisionTemplate(t *testing.T) {
	got := ToolDecision("Where is the Eiffel Tower?")

	assert.Contains(t, got, "Tool: web_search")
	assert.Contains(t, got, "User request: Where is the Eiffel Tower?")
	assert.Contains(t, got, `"web_search" if the tool should be used`)
	assert.Contains(t, got, `"chat" if the tool should not be used`)
	assert.True(t, strings.HasSuffix(got, "<end_of_turn>\n<start_of_turn>model\n"))

	// Five worked examples guide the model.
	assert.Equal(t, 5, strings.Count(got, "\" -> "))
}

func TestSummarizeTemplate(t *testing.T) {
	got := Summarize("best ramen in Osaka", "[1] Ichiran\n   Famous chain")

	assert.True(t, strings.HasPrefix(got, "<start_of_turn>user\n"))
	assert.Contains(t, got, `"best ramen in Osaka"`)
	assert.Contains(t, got, "[1] Ichiran")
	assert.True(t, strings.HasSuffix(got, "<end_of_turn>\n<start_of_turn>model\n"))
}

func TestExtractTurnMissingDelimiters(t *testing.T) {
	_, ok := ExtractTurn("no delimiters here")
	assert.False(t, ok)

	_, ok = ExtractTurn("<start_of_turn>user\nunterminated")
	assert.False(t, ok)
}
