// Package classifier turns free-text model output into pipeline
// decisions.
//
// The tool-decision model returns free text, not a strict enum, so
// classification is deliberately permissive and fails open to direct
// chat.
package classifier

import "strings"

// Decision is the routing outcome for one prompt.
type Decision int

const (
	// NoSearch routes the prompt straight to the chat model.
	NoSearch Decision = iota

	// UseSearch routes the prompt through the web-search stage.
	UseSearch
)

// String returns the decision name.
func (d Decision) String() string {
	if d == UseSearch {
		return "use-search"
	}
	return "no-search"
}

// ClassifyToolDecision classifies the tool-decision model's raw output.
// Any case-insensitive mention of "search" (which covers "web_search")
// selects the search route; everything else, including ambiguous or
// empty output, defaults to NoSearch.
func ClassifyToolDecision(raw string) Decision {
	if strings.Contains(strings.ToLower(raw), "search") {
		return UseSearch
	}
	return NoSearch
}
