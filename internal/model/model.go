// Package model manages on-device model slots and inference access.
//
// Supports:
// - Loading a named model into a logical slot (tool-decision, chat)
// - Serialized text generation against a loaded slot
// - A llama.cpp-compatible completion server as the inference engine
package model

import "context"

// Engine is a loaded, inference-capable model.
//
// Engines are not assumed reentrant; the owning Handle serializes
// access to them.
type Engine interface {
	// Generate runs a single completion over an already-formatted prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Close releases the engine's resources.
	Close() error
}

// StreamingEngine is an Engine that can deliver output incrementally.
type StreamingEngine interface {
	Engine

	// GenerateStream runs a completion, invoking fn for each text chunk
	// as it arrives, and returns the full accumulated text.
	GenerateStream(ctx context.Context, prompt string, fn func(chunk string)) (string, error)
}

// Loader resolves a resource reference into a live Engine.
type Loader interface {
	Load(ctx context.Context, resource string) (Engine, error)
}
