// Package pipeline implements the request orchestrator.
//
// One request at a time flows through
// Idle -> Detecting -> {Searching -> Summarizing} | DirectChat -> Done,
// with Failed reachable on fatal conditions. The tool-decision model
// picks the route, the search client fetches live context, and the
// chat model produces the final answer.
package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/voyago-ai/voyago/internal/classifier"
	apperrors "github.com/voyago-ai/voyago/internal/errors"
	"github.com/voyago-ai/voyago/internal/model"
	"github.com/voyago-ai/voyago/internal/prompt"
	"github.com/voyago-ai/voyago/internal/search"
)

// subscriberBuffer bounds a subscriber channel. Snapshots beyond the
// buffer are dropped for that subscriber; the terminal snapshot is
// always retained via Snapshot().
const subscriberBuffer = 128

// Orchestrator owns the two model slots and the search client, and
// publishes immutable State snapshots to subscribers.
type Orchestrator struct {
	toolModel *model.Handle
	chatModel *model.Handle
	search    search.Client
	logger    *zap.Logger

	mu       sync.Mutex
	inFlight bool
	state    State
	subs     []chan State
}

// Config configures the orchestrator.
type Config struct {
	ToolModel *model.Handle
	ChatModel *model.Handle
	Search    search.Client
	Logger    *zap.Logger
}

// New creates an orchestrator.
func New(cfg *Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		toolModel: cfg.ToolModel,
		chatModel: cfg.ChatModel,
		search:    cfg.Search,
		logger:    logger,
		state:     State{Stage: StageIdle},
	}
}

// Subscribe returns a channel of state snapshots. The channel is
// closed by Close.
func (o *Orchestrator) Subscribe() <-chan State {
	ch := make(chan State, subscriberBuffer)
	o.mu.Lock()
	o.subs = append(o.subs, ch)
	ch <- o.state
	o.mu.Unlock()
	return ch
}

// Snapshot returns the latest published state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Close closes all subscriber channels.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, ch := range o.subs {
		close(ch)
	}
	o.subs = nil
}

// LoadModels loads both model slots concurrently. The published
// Loading flag stays set until both loads resolve, success or failure;
// individual failures are recorded on the slots, not returned.
func (o *Orchestrator) LoadModels(ctx context.Context) {
	o.publish(func(s *State) {
		s.Loading = true
		s.Status = "Loading models..."
	})

	var g errgroup.Group
	g.Go(func() error {
		if err := o.toolModel.Load(ctx); err != nil {
			o.logger.Warn("tool-decision model unavailable", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		if err := o.chatModel.Load(ctx); err != nil {
			o.logger.Warn("chat model unavailable", zap.Error(err))
		}
		return nil
	})
	_ = g.Wait()

	o.publish(func(s *State) {
		s.Loading = false
		s.Status = ""
	})

	if !o.toolModel.Ready() && !o.chatModel.Ready() {
		o.logger.Error("no model loaded; submissions will be rejected")
	}
}

// Submit starts processing a prompt. It rejects immediately when a
// request is already in flight (no queueing, no preemption) or when
// neither model is ready; rejection leaves the published state
// untouched. The pipeline itself runs on a background goroutine.
func (o *Orchestrator) Submit(ctx context.Context, userPrompt string) error {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return apperrors.User(apperrors.CodePipelineBusy, "a request is already being processed")
	}
	if !o.toolModel.Ready() && !o.chatModel.Ready() {
		o.mu.Unlock()
		return apperrors.NewBuilder(apperrors.CodeNoModelLoaded, "no models are loaded").
			System().
			WithSuggestion("Wait for model loading to finish").
			WithSuggestion("Check the inference server and model names").
			Build()
	}
	o.inFlight = true
	id := uuid.NewString()
	o.mu.Unlock()

	o.logger.Info("request submitted",
		zap.String("request_id", id),
		zap.Int("prompt_len", len(userPrompt)))

	go o.run(ctx, id, userPrompt)
	return nil
}

// run drives one request through the pipeline.
func (o *Orchestrator) run(ctx context.Context, id, userPrompt string) {
	o.publish(func(s *State) {
		*s = State{
			Stage:      StageDetecting,
			RequestID:  id,
			Prompt:     userPrompt,
			Status:     "Analyzing your request...",
			Generating: true,
			Loading:    s.Loading,
		}
	})

	// Tool-decision failures are always recoverable by skipping the
	// tool, so every path out of this stage is a fallback, never a
	// user-facing error.
	if !o.toolModel.Ready() {
		o.logger.Info("tool-decision model not ready, using direct chat",
			zap.String("request_id", id))
		o.directChat(ctx, id, userPrompt)
		return
	}

	raw, err := o.toolModel.Generate(ctx, prompt.ToolDecision(userPrompt))
	if err != nil {
		o.logger.Warn("tool detection failed, falling back to direct chat",
			zap.String("request_id", id),
			zap.Error(err))
		o.directChat(ctx, id, userPrompt)
		return
	}

	decision := classifier.ClassifyToolDecision(raw)
	o.logger.Info("tool decision",
		zap.String("request_id", id),
		zap.String("decision", decision.String()))

	if decision == classifier.UseSearch {
		o.searchAndSummarize(ctx, id, userPrompt)
		return
	}
	o.directChat(ctx, id, userPrompt)
}

// searchAndSummarize runs the Searching and Summarizing stages.
func (o *Orchestrator) searchAndSummarize(ctx context.Context, id, userPrompt string) {
	o.publish(func(s *State) {
		s.Stage = StageSearching
		s.Status = "Searching the web..."
	})

	digest, err := o.search.Search(ctx, userPrompt)
	if err != nil {
		// Search explicitly broke; answering without the requested live
		// data would be misleading, so there is no chat fallback here.
		o.logger.Warn("web search unavailable",
			zap.String("request_id", id),
			zap.Error(err))
		o.fail(apperrors.Wrap(err, apperrors.CodeSearchUnavailable,
			"Web search failed", apperrors.CategoryTemporary))
		return
	}

	// The no-results sentinel still flows through: the chat model is
	// expected to respond gracefully to empty search context.
	o.publish(func(s *State) {
		s.Stage = StageSummarizing
		s.Status = "Summarizing results..."
	})

	if !o.chatModel.Ready() {
		// Search output is still useful without a natural-language
		// wrapper.
		o.logger.Info("chat model not ready, returning raw search digest",
			zap.String("request_id", id))
		o.done(func(s *State) {
			s.Response = digest
		})
		return
	}

	summary, err := o.chatModel.GenerateStream(ctx, prompt.Summarize(userPrompt, digest), func(chunk string) {
		o.publish(func(s *State) {
			s.Response += chunk
		})
	})
	if err != nil {
		o.logger.Warn("summarization failed, returning raw search digest",
			zap.String("request_id", id),
			zap.Error(err))
		o.done(func(s *State) {
			s.Response = digest
			s.Warning = "Summarization failed: " + apperrors.FormatUserMessage(err)
		})
		return
	}

	o.done(func(s *State) {
		s.Response = summary
	})
}

// directChat runs the DirectChat stage.
func (o *Orchestrator) directChat(ctx context.Context, id, userPrompt string) {
	o.publish(func(s *State) {
		s.Stage = StageDirectChat
		s.Status = "Generating response..."
	})

	if !o.chatModel.Ready() {
		// The search route was declined and chat is unavailable; there
		// is nothing left to fall back to.
		o.fail(apperrors.System(apperrors.CodeChatUnavailable, "Chat model not available"))
		return
	}

	text, err := o.chatModel.GenerateStream(ctx, prompt.Chat(userPrompt), func(chunk string) {
		o.publish(func(s *State) {
			s.Response += chunk
		})
	})
	if err != nil {
		o.logger.Warn("chat generation failed",
			zap.String("request_id", id),
			zap.Error(err))
		o.fail(apperrors.Wrap(err, apperrors.CodeChatGenerateFailed,
			"Chat error: "+apperrors.FormatUserMessage(err), apperrors.CategoryTemporary))
		return
	}

	// Some model variants embed a tool call in the reply instead of
	// going through tool detection. Honor a trailing web-search call by
	// appending its digest; failures here only warn.
	warning := ""
	if call, ok := classifier.ExtractToolCall(text); ok && call.IsWebSearch() {
		o.logger.Info("executing embedded tool call",
			zap.String("request_id", id),
			zap.String("tool", call.Name))
		digest, err := o.search.Search(ctx, call.Query(userPrompt))
		if err != nil {
			warning = "Web search failed: " + apperrors.FormatUserMessage(err)
		} else {
			text += "\n\n" + digest
		}
	}

	o.done(func(s *State) {
		s.Response = text
		s.Warning = warning
	})
}

// done publishes the Done stage and clears the in-flight flag.
func (o *Orchestrator) done(mutate func(s *State)) {
	o.publish(func(s *State) {
		mutate(s)
		s.Stage = StageDone
		s.Status = ""
		s.Generating = false
	})
	o.clearInFlight()
}

// fail publishes the Failed stage from a coded error and clears the
// in-flight flag. The accumulated response is left as-is.
func (o *Orchestrator) fail(err error) {
	o.publish(func(s *State) {
		s.Stage = StageFailed
		s.Status = ""
		s.Err = apperrors.FormatUserMessage(err)
		s.ErrCode = errCode(err)
		s.Generating = false
	})
	o.clearInFlight()
}

// errCode extracts the AppError code, if err carries one.
func errCode(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func (o *Orchestrator) clearInFlight() {
	o.mu.Lock()
	o.inFlight = false
	o.mu.Unlock()
}

// publish applies mutate to a copy of the current state, refreshes the
// model-ready flags, stores the new snapshot and fans it out.
func (o *Orchestrator) publish(mutate func(s *State)) {
	o.mu.Lock()
	defer o.mu.Unlock()

	next := o.state
	mutate(&next)
	next.ToolModelReady = o.toolModel.Ready()
	next.ChatModelReady = o.chatModel.Ready()
	o.state = next

	for _, ch := range o.subs {
		select {
		case ch <- next:
		default:
			// Slow subscriber; it can resynchronize via Snapshot.
		}
	}
}
