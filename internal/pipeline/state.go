// Package pipeline defines the published pipeline state.
package pipeline

// Stage is the current position of a request in the pipeline.
type Stage int

const (
	StageIdle Stage = iota
	StageDetecting
	StageSearching
	StageSummarizing
	StageDirectChat
	StageDone
	StageFailed
)

// String returns the stage label.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageDetecting:
		return "detecting-tool"
	case StageSearching:
		return "searching"
	case StageSummarizing:
		return "summarizing"
	case StageDirectChat:
		return "direct-chat"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the stage ends a request.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// State is an immutable snapshot of the pipeline, emitted on every
// transition. Subscribers only ever observe whole snapshots, never
// partial mutations.
type State struct {
	// Stage is the current pipeline stage.
	Stage Stage

	// RequestID identifies the in-flight request, empty when idle.
	RequestID string

	// Prompt is the submitted user prompt.
	Prompt string

	// Status is a short advisory line describing the current step.
	Status string

	// Response is the accumulated output text so far.
	Response string

	// Err is the fatal error message for a failed request.
	Err string

	// ErrCode is the machine-readable code behind Err, when known.
	ErrCode string

	// Warning is a non-fatal degradation notice (e.g. summarization
	// fell back to the raw search digest).
	Warning string

	// Loading is true until both model loads have resolved.
	Loading bool

	// Generating is true while a request is in flight.
	Generating bool

	// ToolModelReady and ChatModelReady mirror the model slots.
	ToolModelReady bool
	ChatModelReady bool
}
