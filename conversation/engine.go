package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/c360studio/specdialog/extract"
	"github.com/c360studio/specdialog/scenario"
)

// historyWindow is how many trailing messages accompany the prompt.
const historyWindow = 6

// defaultReplyTimeout bounds the collaborator call; extraction never
// waits on it beyond this.
const defaultReplyTimeout = 30 * time.Second

// Replyer produces the conversational reply. Implementations fail with an
// error on provider trouble; the engine substitutes a fallback reply.
type Replyer interface {
	Reply(ctx context.Context, prompt string, history []Message) (string, error)
}

// Result is the outcome of processing one utterance.
type Result struct {
	Reply          string              `json:"reply"`
	Phase          Phase               `json:"phase"`
	PhaseChanged   bool                `json:"phase_changed"`
	ProgressScore  int                 `json:"progress_score"`
	NewEntities    int                 `json:"new_entities"`
	NewScenarios   int                 `json:"new_scenarios"`
	NewConstraints int                 `json:"new_constraints"`
	Questions      []string            `json:"followup_questions,omitempty"`
	State          *State              `json:"state"`
	FallbackReply  bool                `json:"fallback_reply,omitempty"`
}

// Engine runs the per-utterance pipeline: extract, merge, re-evaluate
// phase, rescore, reply.
type Engine struct {
	entities    *extract.EntityExtractor
	constraints *extract.ConstraintExtractor
	scenarios   *scenario.Builder
	machine     *PhaseMachine
	replyer     Replyer
	timeout     time.Duration
	logger      *slog.Logger

	// Sessions share one engine; the fallback rotation is the only
	// cross-session mutable field.
	fallbackIdx atomic.Int64
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithReplyer sets the conversational reply backend. Without one, every
// reply comes from the fallback set.
func WithReplyer(r Replyer) EngineOption {
	return func(e *Engine) { e.replyer = r }
}

// WithReplyTimeout bounds the collaborator call.
func WithReplyTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithPhaseMachine overrides the default phase machine.
func WithPhaseMachine(m *PhaseMachine) EngineOption {
	return func(e *Engine) {
		if m != nil {
			e.machine = m
		}
	}
}

// WithEntityExtractor overrides the default entity extractor.
func WithEntityExtractor(x *extract.EntityExtractor) EngineOption {
	return func(e *Engine) {
		if x != nil {
			e.entities = x
		}
	}
}

// WithConstraintExtractor overrides the default constraint extractor.
func WithConstraintExtractor(x *extract.ConstraintExtractor) EngineOption {
	return func(e *Engine) {
		if x != nil {
			e.constraints = x
		}
	}
}

// WithScenarioBuilder overrides the default scenario builder.
func WithScenarioBuilder(b *scenario.Builder) EngineOption {
	return func(e *Engine) {
		if b != nil {
			e.scenarios = b
		}
	}
}

// NewEngine creates a conversation engine.
func NewEngine(logger *slog.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		entities:    extract.NewEntityExtractor(logger),
		constraints: extract.NewConstraintExtractor(logger),
		scenarios:   scenario.NewBuilder(logger),
		machine:     NewPhaseMachine(DefaultThresholds(), nil),
		timeout:     defaultReplyTimeout,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessMessage runs one utterance through the pipeline and mutates the
// session state. The caller must hold the session's sequential processing
// path; states are never shared across concurrent calls.
func (e *Engine) ProcessMessage(ctx context.Context, state *State, message string) *Result {
	// The three extractions are independent; their results merge
	// order-insensitively into state.
	foundEntities := e.entities.Extract(message, "")
	foundScenarios := e.scenarios.Extract(message, state.EntityNames())
	foundConstraints := e.constraints.Extract(message)

	before := counts{len(state.Entities), len(state.Scenarios), len(state.Constraints)}

	state.Entities = extract.Merge(state.Entities, foundEntities)
	state.Scenarios = append(state.Scenarios, foundScenarios...)
	state.Constraints = extract.MergeConstraints(state.Constraints, foundConstraints)

	phase, changed := e.machine.Next(state.Phase, message,
		len(state.Entities), len(state.Scenarios), len(state.Constraints))
	if changed {
		e.logger.Info("phase transition",
			"session", state.SessionID, "from", state.Phase, "to", phase)
		state.Phase = phase
	}

	state.ProgressScore = Score(len(state.Entities), len(state.Scenarios), len(state.Constraints))
	state.UpdatedAt = time.Now().UTC()

	reply, fallback := e.reply(ctx, state, message)

	state.History = append(state.History,
		Message{Role: "user", Content: message},
		Message{Role: "assistant", Content: reply},
	)

	return &Result{
		Reply:          reply,
		Phase:          state.Phase,
		PhaseChanged:   changed,
		ProgressScore:  state.ProgressScore,
		NewEntities:    len(state.Entities) - before.entities,
		NewScenarios:   len(state.Scenarios) - before.scenarios,
		NewConstraints: len(state.Constraints) - before.constraints,
		Questions:      FollowupQuestions(state),
		State:          state.Snapshot(),
		FallbackReply:  fallback,
	}
}

type counts struct {
	entities, scenarios, constraints int
}

// reply asks the collaborator for a response, degrading to the canned
// fallback set on any failure. Extraction has already completed by the
// time this runs; a dead provider never blocks state updates.
func (e *Engine) reply(ctx context.Context, state *State, message string) (string, bool) {
	if e.replyer == nil {
		return e.nextFallback(), true
	}

	prompt := fmt.Sprintf("%s\n\nCurrent Context:\n%s\nUser Message: %s",
		PhasePrompt(state.Phase), buildContext(state), message)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	reply, err := e.replyer.Reply(ctx, prompt, trailing(state.History, historyWindow))
	if err != nil {
		e.logger.Warn("reply generation failed, using fallback",
			"session", state.SessionID, "error", err)
		return e.nextFallback(), true
	}
	return reply, false
}

func (e *Engine) nextFallback() string {
	idx := e.fallbackIdx.Add(1) - 1
	return fallbackReplies[idx%int64(len(fallbackReplies))]
}

func trailing(history []Message, n int) []Message {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
