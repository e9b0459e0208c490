// Package model provides types for model slot management.
package model

// Role identifies the logical job of a model slot.
type Role string

const (
	// RoleToolDecision classifies whether a prompt needs web search.
	RoleToolDecision Role = "tool-decision"

	// RoleChat produces the user-facing answer.
	RoleChat Role = "chat"
)

// LoadState tracks the lifecycle of a model slot.
type LoadState int

const (
	StateUnloaded LoadState = iota
	StateLoading
	StateReady
	StateFailed
)

// String returns the state name.
func (s LoadState) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is a snapshot of a model slot.
type Status struct {
	Role     Role      `json:"role"`
	Resource string    `json:"resource"`
	State    LoadState `json:"state"`
	Error    string    `json:"error,omitempty"`
}
