// Package classifier provides embedded tool-call extraction.
package classifier

import (
	"encoding/json"
	"strings"
)

// callMarker precedes an embedded tool call in model output.
const callMarker = "call:"

// ToolCall is a structured tool invocation parsed from model output.
type ToolCall struct {
	Name       string            `json:"tool"`
	Parameters map[string]string `json:"parameters"`
}

// IsWebSearch reports whether the call names the web-search tool.
func (c *ToolCall) IsWebSearch() bool {
	switch c.Name {
	case "web_search", "search_web", "search":
		return true
	}
	return false
}

// Query returns the call's query parameter, or fallback when absent.
func (c *ToolCall) Query(fallback string) string {
	if q := strings.TrimSpace(c.Parameters["query"]); q != "" {
		return q
	}
	return fallback
}

// ExtractToolCall parses an embedded `call:{"tool": ..., "parameters":
// {...}}` marker from model output. Returns false when no complete,
// decodable call is present; malformed JSON is never an error for the
// caller, just the absence of a call.
func ExtractToolCall(text string) (*ToolCall, bool) {
	i := strings.Index(text, callMarker)
	if i < 0 {
		return nil, false
	}

	rest := text[i+len(callMarker):]
	j := strings.Index(rest, "{")
	if j < 0 {
		return nil, false
	}

	dec := json.NewDecoder(strings.NewReader(rest[j:]))
	var call ToolCall
	if err := dec.Decode(&call); err != nil {
		return nil, false
	}
	if call.Name == "" {
		return nil, false
	}
	if call.Parameters == nil {
		call.Parameters = make(map[string]string)
	}
	return &call, true
}
