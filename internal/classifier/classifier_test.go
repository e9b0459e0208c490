package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyToolDecision(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Decision
	}{
		{"exact tool name", "web_search", UseSearch},
		{"tool name with whitespace", "  web_search\n", UseSearch},
		{"uppercase", "WEB_SEARCH", UseSearch},
		{"bare search", "I would use Search for this", UseSearch},
		{"chat answer", "chat", NoSearch},
		{"empty output", "", NoSearch},
		{"ambiguous output", "I'm not sure what you mean", NoSearch},
		{"refusal", "I cannot answer that", NoSearch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyToolDecision(tt.raw))
		})
	}
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "use-search", UseSearch.String())
	assert.Equal(t, "no-search", NoSearch.String())
}

func TestExtractToolCall(t *testing.T) {
	text := `Sure, let me look that up.
call:{"tool": "web_search", "parameters": {"query": "flights to Rome"}}`

	call, ok := ExtractToolCall(text)
	require.True(t, ok)
	assert.Equal(t, "web_search", call.Name)
	assert.Equal(t, "flights to Rome", call.Parameters["query"])
	assert.True(t, call.IsWebSearch())
}

func TestExtractToolCallTrailingText(t *testing.T) {
	text := `call:{"tool": "search_web", "parameters": {"query": "ticket prices"}} and some trailing prose`

	call, ok := ExtractToolCall(text)
	require.True(t, ok)
	assert.Equal(t, "search_web", call.Name)
	assert.True(t, call.IsWebSearch())
}

func TestExtractToolCallAbsentOrMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no marker", "Just a plain answer."},
		{"marker without json", "call: nothing here"},
		{"malformed json", `call:{"tool": "web_search", "parameters"`},
		{"missing tool name", `call:{"parameters": {"query": "x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ExtractToolCall(tt.text)
			assert.False(t, ok)
		})
	}
}

func TestToolCallQueryFallback(t *testing.T) {
	call := &ToolCall{Name: "web_search", Parameters: map[string]string{}}
	assert.Equal(t, "original prompt", call.Query("original prompt"))

	call.Parameters["query"] = "explicit query"
	assert.Equal(t, "explicit query", call.Query("original prompt"))
}

func TestToolCallIsWebSearch(t *testing.T) {
	for _, name := range []string{"web_search", "search_web", "search"} {
		call := &ToolCall{Name: name}
		assert.True(t, call.IsWebSearch(), name)
	}
	assert.False(t, (&ToolCall{Name: "get_weather"}).IsWebSearch())
}
