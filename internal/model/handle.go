// Package model provides the Handle for one loaded model slot.
package model

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	apperrors "github.com/voyago-ai/voyago/internal/errors"
)

// Handle owns the loaded state of one inference model and serializes
// access to it. Two handles exist at runtime: the tool-decision slot
// and the chat slot.
type Handle struct {
	role     Role
	resource string
	loader   Loader
	logger   *zap.Logger

	// genMu serializes Generate calls; the engine is not reentrant.
	genMu sync.Mutex

	mu       sync.RWMutex
	state    LoadState
	engine   Engine
	lastErr  error
	loadDone chan struct{}
}

// NewHandle creates an unloaded handle for the given role and resource.
func NewHandle(role Role, resource string, loader Loader, logger *zap.Logger) *Handle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handle{
		role:     role,
		resource: resource,
		loader:   loader,
		logger:   logger,
		state:    StateUnloaded,
	}
}

// Load resolves the backing resource and initializes the engine.
// A second call while already ready is a no-op; a call during an
// in-flight load blocks until that load resolves and returns its
// outcome. The loader is never invoked twice. The slot ends terminally
// ready or failed; there is no automatic reload.
func (h *Handle) Load(ctx context.Context) error {
	h.mu.Lock()
	switch h.state {
	case StateReady:
		h.mu.Unlock()
		return nil
	case StateLoading:
		done := h.loadDone
		h.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
		}
		h.mu.RLock()
		defer h.mu.RUnlock()
		return h.lastErr
	case StateFailed:
		// Terminal: no automatic reload.
		err := h.lastErr
		h.mu.Unlock()
		return err
	}
	h.state = StateLoading
	h.lastErr = nil
	h.loadDone = make(chan struct{})
	h.mu.Unlock()

	h.logger.Info("loading model",
		zap.String("role", string(h.role)),
		zap.String("resource", h.resource))

	engine, err := h.loader.Load(ctx, h.resource)

	h.mu.Lock()
	defer h.mu.Unlock()
	defer close(h.loadDone)

	if err != nil {
		h.state = StateFailed
		h.lastErr = err
		h.logger.Warn("model load failed",
			zap.String("role", string(h.role)),
			zap.Error(err))
		return err
	}

	h.state = StateReady
	h.engine = engine
	h.logger.Info("model ready", zap.String("role", string(h.role)))
	return nil
}

// Generate runs a completion on the loaded engine. It requires the
// slot to be ready and processes one request at a time.
func (h *Handle) Generate(ctx context.Context, prompt string) (string, error) {
	engine, err := h.readyEngine()
	if err != nil {
		return "", err
	}

	h.genMu.Lock()
	defer h.genMu.Unlock()

	text, err := engine.Generate(ctx, prompt)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeModelGenerateFailed,
			fmt.Sprintf("%s model generation failed", h.role), apperrors.CategoryTemporary)
	}
	return text, nil
}

// GenerateStream runs a completion, forwarding chunks to fn as they
// arrive. Engines without streaming support deliver the whole text as
// a single chunk.
func (h *Handle) GenerateStream(ctx context.Context, prompt string, fn func(chunk string)) (string, error) {
	engine, err := h.readyEngine()
	if err != nil {
		return "", err
	}

	h.genMu.Lock()
	defer h.genMu.Unlock()

	var text string
	if se, ok := engine.(StreamingEngine); ok {
		text, err = se.GenerateStream(ctx, prompt, fn)
	} else {
		text, err = engine.Generate(ctx, prompt)
		if err == nil && fn != nil {
			fn(text)
		}
	}
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeModelGenerateFailed,
			fmt.Sprintf("%s model generation failed", h.role), apperrors.CategoryTemporary)
	}
	return text, nil
}

// readyEngine returns the engine if the slot is ready.
func (h *Handle) readyEngine() (Engine, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.state != StateReady || h.engine == nil {
		return nil, apperrors.New(apperrors.CodeModelNotReady,
			fmt.Sprintf("%s model is not ready (state: %s)", h.role, h.state), apperrors.CategorySystem)
	}
	return h.engine, nil
}

// Ready reports whether the slot completed loading successfully.
func (h *Handle) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state == StateReady
}

// State returns the current load state.
func (h *Handle) State() LoadState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// LastError returns the error recorded by a failed load, if any.
func (h *Handle) LastError() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastErr
}

// Role returns the slot's logical role.
func (h *Handle) Role() Role {
	return h.role
}

// Status returns a snapshot of the slot.
func (h *Handle) Status() *Status {
	h.mu.RLock()
	defer h.mu.RUnlock()

	st := &Status{
		Role:     h.role,
		Resource: h.resource,
		State:    h.state,
	}
	if h.lastErr != nil {
		st.Error = h.lastErr.Error()
	}
	return st
}

// Close releases the underlying engine.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.engine == nil {
		return nil
	}
	err := h.engine.Close()
	h.engine = nil
	h.state = StateUnloaded
	return err
}
