// Package model provides the llama.cpp-server inference engine adapter.
// The server exposes an OpenAI-compatible API (completions + model list).
package model

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/voyago-ai/voyago/internal/errors"
)

// endOfTurn is the stop token for Gemma-style turn-delimited prompts.
const endOfTurn = "<end_of_turn>"

// ServerConfig configures the completion-server loader.
type ServerConfig struct {
	BaseURL     string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	Logger      *zap.Logger
}

// ServerLoader loads models served by a llama.cpp-compatible server.
// The resource reference is the served model name.
type ServerLoader struct {
	cfg         *ServerConfig
	client      *http.Client
	retryPolicy *apperrors.Policy
	logger      *zap.Logger
}

// NewServerLoader creates a loader for the given server.
func NewServerLoader(cfg *ServerConfig) *ServerLoader {
	if cfg == nil {
		return nil
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	retryPolicy := &apperrors.Policy{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
		RetryIf:      apperrors.IsRetryable,
	}

	return &ServerLoader{
		cfg:         cfg,
		client:      &http.Client{Timeout: cfg.Timeout},
		retryPolicy: retryPolicy,
		logger:      logger,
	}
}

// Load verifies the named model is served and returns an engine bound
// to it. A model absent from the server's list resolves to
// MODEL_NOT_FOUND; a transport failure resolves to MODEL_INIT_FAILED.
func (l *ServerLoader) Load(ctx context.Context, resource string) (Engine, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", l.cfg.BaseURL+"/v1/models", nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeModelInitFailed, "failed to build model list request", apperrors.CategoryPermanent)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, apperrors.NewBuilder(apperrors.CodeModelInitFailed, "inference server unreachable").
			System().
			Wrap(err).
			WithSuggestion("Start the local inference server").
			WithSuggestion(fmt.Sprintf("Check models.server_url (%s)", l.cfg.BaseURL)).
			Build()
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeModelInitFailed, "failed to read model list", apperrors.CategoryTemporary)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.System(apperrors.CodeModelInitFailed,
			fmt.Sprintf("model list request failed: %s", resp.Status))
	}

	var list modelList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeModelInitFailed, "failed to parse model list", apperrors.CategoryPermanent)
	}

	found := false
	for _, m := range list.Data {
		if m.ID == resource {
			found = true
			break
		}
	}
	if !found {
		return nil, apperrors.NewBuilder(apperrors.CodeModelNotFound,
			fmt.Sprintf("model %q is not served", resource)).
			System().
			WithSuggestion("Check the model name in the config").
			WithSuggestion("Load the model into the inference server").
			Build()
	}

	return &serverEngine{
		baseURL:     l.cfg.BaseURL,
		model:       resource,
		maxTokens:   l.cfg.MaxTokens,
		temperature: l.cfg.Temperature,
		client:      l.client,
		retryPolicy: l.retryPolicy,
		logger:      l.logger,
	}, nil
}

// serverEngine runs completions against one served model.
type serverEngine struct {
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
	retryPolicy *apperrors.Policy
	logger      *zap.Logger
}

// Generate runs a raw completion over the formatted prompt.
func (e *serverEngine) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := e.requestBody(prompt, false)
	if err != nil {
		return "", err
	}

	respBody, err := apperrors.DoWithResult(ctx, e.retryPolicy, func() ([]byte, error) {
		return e.post(ctx, body)
	})
	if err != nil {
		return "", err
	}

	var cr completionResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return "", apperrors.NewBuilder(apperrors.CodeModelGenerateFailed, "failed to parse completion response").
			Permanent().
			Wrap(err).
			WithContext("response_body", string(respBody)).
			Build()
	}
	if len(cr.Choices) == 0 {
		return "", apperrors.Permanent(apperrors.CodeModelGenerateFailed, "completion response contained no choices")
	}

	return strings.TrimSpace(cr.Choices[0].Text), nil
}

// GenerateStream runs a streaming completion, forwarding each SSE text
// chunk to fn.
func (e *serverEngine) GenerateStream(ctx context.Context, prompt string, fn func(chunk string)) (string, error) {
	body, err := e.requestBody(prompt, true)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/v1/completions", bytes.NewReader(body))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeNetworkUnavailable, "failed to create HTTP request", apperrors.CategoryTemporary)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeNetworkUnavailable, "network request failed", apperrors.CategoryTemporary)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", e.statusError(resp.StatusCode, resp.Status, b)
	}

	var accumulated strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			break
		}

		var cr completionResponse
		if err := json.Unmarshal([]byte(payload), &cr); err != nil {
			e.logger.Debug("skipping undecodable stream chunk", zap.Error(err))
			continue
		}
		if len(cr.Choices) == 0 {
			continue
		}
		chunk := cr.Choices[0].Text
		if chunk == "" {
			continue
		}
		accumulated.WriteString(chunk)
		if fn != nil {
			fn(chunk)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeModelGenerateFailed, "completion stream interrupted", apperrors.CategoryTemporary)
	}

	return strings.TrimSpace(accumulated.String()), nil
}

// Close is a no-op; the server owns the weights.
func (e *serverEngine) Close() error {
	return nil
}

// requestBody builds the completion request payload.
func (e *serverEngine) requestBody(prompt string, stream bool) ([]byte, error) {
	maxTokens := e.maxTokens
	if maxTokens <= 0 {
		maxTokens = 512
	}
	temperature := e.temperature
	if temperature <= 0 {
		temperature = 0.3
	}

	body := map[string]any{
		"model":       e.model,
		"prompt":      prompt,
		"max_tokens":  maxTokens,
		"temperature": temperature,
		"stop":        []string{endOfTurn},
		"stream":      stream,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeModelGenerateFailed, "failed to marshal request", apperrors.CategoryPermanent)
	}
	return data, nil
}

// post sends the completion request and maps HTTP status codes to
// error categories.
func (e *serverEngine) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/v1/completions", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeNetworkUnavailable, "failed to create HTTP request", apperrors.CategoryTemporary)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeNetworkUnavailable, "network request failed", apperrors.CategoryTemporary)
	}

	b, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, apperrors.Wrap(readErr, apperrors.CodeNetworkUnavailable, "failed to read response body", apperrors.CategoryTemporary)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, e.statusError(resp.StatusCode, resp.Status, b)
	}
	return b, nil
}

// statusError maps a non-200 HTTP status to an AppError.
func (e *serverEngine) statusError(code int, status string, body []byte) error {
	switch code {
	case http.StatusTooManyRequests:
		return apperrors.Temporary(apperrors.CodeNetworkRateLimit, "inference server is throttling requests")
	case http.StatusBadRequest:
		return apperrors.NewBuilder(apperrors.CodeModelGenerateFailed, "bad completion request").
			Permanent().
			WithContext("response", string(body)).
			Build()
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return apperrors.Temporary(apperrors.CodeModelGenerateFailed, fmt.Sprintf("inference server unavailable: %s", status))
	default:
		return apperrors.Temporary(apperrors.CodeModelGenerateFailed,
			fmt.Sprintf("inference server error (status %d): %s", code, string(body)))
	}
}

// ============================================================
// Server API Types (OpenAI-compatible)
// ============================================================

type modelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int    `json:"index"`
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}
