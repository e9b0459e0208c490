// Package model provides the local model-directory loader.
package model

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/voyago-ai/voyago/internal/errors"
)

// requiredModelFiles are the files a bundled model directory must contain.
var requiredModelFiles = []string{"config.json", "model.safetensors", "tokenizer.model"}

// DirLoader loads a model from a local directory through an injected
// runtime constructor. The resource reference is the directory path.
// Voyago validates the directory layout; the runtime itself is
// supplied by the embedding application.
type DirLoader struct {
	// Open constructs an engine from a validated model directory.
	Open func(ctx context.Context, dir string) (Engine, error)
}

// Load validates the model directory and hands it to the runtime.
func (l *DirLoader) Load(ctx context.Context, resource string) (Engine, error) {
	info, err := os.Stat(resource)
	if err != nil || !info.IsDir() {
		return nil, apperrors.NewBuilder(apperrors.CodeModelNotFound,
			fmt.Sprintf("model directory %q not found", resource)).
			System().
			WithSuggestion("Check the model path in the config").
			Build()
	}

	for _, name := range requiredModelFiles {
		if _, err := os.Stat(filepath.Join(resource, name)); err != nil {
			return nil, apperrors.System(apperrors.CodeModelNotFound,
				fmt.Sprintf("model directory is missing %s", name))
		}
	}

	if l.Open == nil {
		return nil, apperrors.System(apperrors.CodeModelInitFailed, "no local model runtime is configured")
	}

	engine, err := l.Open(ctx, resource)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeModelInitFailed, "failed to initialize local model", apperrors.CategorySystem)
	}
	return engine, nil
}
