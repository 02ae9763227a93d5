package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/metalagman/ollaterm/internal/config"
)

// Generator produces one raw model reply for a message window.
type Generator interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, messages []Message) (string, error)

// Complete implements Generator.
func (f GeneratorFunc) Complete(ctx context.Context, messages []Message) (string, error) {
	return f(ctx, messages)
}

// Prompter returns a human's free-text answer to the model's question.
// It is the only point where the loop blocks on user input.
type Prompter interface {
	Ask(ctx context.Context, question string) (string, error)
}

// WebGateway is the optional search/fetch collaborator. Availability
// is negotiated once per session; Available is a fixed flag, not a
// per-call probe.
type WebGateway interface {
	Available() bool
	Search(ctx context.Context, query string) (string, error)
	Fetch(ctx context.Context, url string) (string, error)
}

// RunState is the only state carried across turns besides the
// conversation itself.
type RunState struct {
	Step                int
	ConsecutiveFailures int
	Done                bool
}

// OutcomeKind classifies how a run ended.
type OutcomeKind int

const (
	// OutcomeDone means the model marked the task complete.
	OutcomeDone OutcomeKind = iota
	// OutcomeFailureCeiling means too many consecutive turns failed
	// to yield a valid decision.
	OutcomeFailureCeiling
	// OutcomeIterationCeiling means the step limit was reached.
	OutcomeIterationCeiling
)

// String renders a human-readable outcome label.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeDone:
		return "done"
	case OutcomeFailureCeiling:
		return "failure ceiling reached"
	case OutcomeIterationCeiling:
		return "iteration ceiling reached"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of a run. Every termination path
// produces one; the loop never exits silently.
type Outcome struct {
	Kind    OutcomeKind
	Summary string
	Steps   int
}

// LoopConfig wires a Loop.
type LoopConfig struct {
	Task         string
	SystemPrompt string
	Budgets      config.Budgets
	// Out receives user-visible progress lines; nil discards them.
	Out io.Writer
	// Spinner enables the progress indicator on Out.
	Spinner bool
}

// Loop drives the turn-by-turn decision cycle: generator call, parse,
// dispatch, feedback. A single control goroutine owns the transcript;
// nothing else mutates it.
type Loop struct {
	task       string
	budgets    config.Budgets
	gen        Generator
	runner     *ShellRunner
	prompter   Prompter
	web        WebGateway
	transcript *Transcript
	out        io.Writer
	spin       io.Writer
	logger     zerolog.Logger
}

// NewLoop constructs a Loop. prompter and web may be nil; the
// dispatcher then reports the capability as unavailable instead of
// failing.
func NewLoop(cfg LoopConfig, gen Generator, runner *ShellRunner, prompter Prompter, web WebGateway) *Loop {
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	var spin io.Writer
	if cfg.Spinner {
		spin = out
	}
	transcript := NewTranscript(cfg.SystemPrompt, cfg.Budgets.HistoryWindow)
	transcript.Append(RoleUser, initialTaskMessage(cfg.Task))
	return &Loop{
		task:       cfg.Task,
		budgets:    cfg.Budgets,
		gen:        gen,
		runner:     runner,
		prompter:   prompter,
		web:        web,
		transcript: transcript,
		out:        out,
		spin:       spin,
		logger:     log.With().Str("component", "loop").Logger(),
	}
}

var errNoDecision = errors.New("no valid decision")

// Run executes the loop until a terminal action or a ceiling is hit.
// The returned error is non-nil only for context cancellation; all
// other failure modes are encoded in the Outcome.
func (l *Loop) Run(ctx context.Context) (Outcome, error) {
	var state RunState
	for state.Step < l.budgets.MaxIterations {
		if err := ctx.Err(); err != nil {
			return Outcome{Kind: OutcomeFailureCeiling, Steps: state.Step}, err
		}
		state.Step++

		dec, err := l.decide(ctx, state.Step)
		if err != nil {
			state.ConsecutiveFailures++
			l.logger.Warn().
				Int("step", state.Step).
				Int("consecutive_failures", state.ConsecutiveFailures).
				Err(err).
				Msg("turn failed")
			if state.ConsecutiveFailures >= l.budgets.MaxConsecFails {
				fmt.Fprintf(l.out, "  Stopping after %d consecutive failures.\n", state.ConsecutiveFailures)
				return Outcome{Kind: OutcomeFailureCeiling, Steps: state.Step}, nil
			}
			if errors.Is(err, errNoDecision) {
				// Hard reset: wipe history, re-anchor on the task.
				l.transcript.Reset(resumeAnchor(l.task))
			}
			continue
		}
		state.ConsecutiveFailures = 0

		done, summary := l.dispatch(ctx, state.Step, dec)
		if done {
			state.Done = true
			return Outcome{Kind: OutcomeDone, Summary: summary, Steps: state.Step}, nil
		}
	}
	fmt.Fprintf(l.out, "  Reached step limit (%d).\n", l.budgets.MaxIterations)
	return Outcome{Kind: OutcomeIterationCeiling, Steps: l.budgets.MaxIterations}, nil
}

// decide obtains a validated decision for this turn, retrying bad
// JSON up to the parse-retry budget with a corrective instruction.
func (l *Loop) decide(ctx context.Context, step int) (*Decision, error) {
	raw, err := withSpinner(l.spin, fmt.Sprintf("Thinking [step %d]", step), func() (string, error) {
		return l.gen.Complete(ctx, l.transcript.Window())
	})
	if err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}
	dec := ParseDecision(raw)

	for attempt := 1; dec == nil && attempt <= l.budgets.MaxParseRetries; attempt++ {
		fmt.Fprintf(l.out, "  Bad JSON (attempt %d/%d).\n", attempt, l.budgets.MaxParseRetries)
		l.transcript.Append(RoleAssistant, raw)
		l.transcript.Append(RoleUser, retryPrompt)
		raw, err = withSpinner(l.spin, "Retrying", func() (string, error) {
			return l.gen.Complete(ctx, l.transcript.Window())
		})
		if err != nil {
			return nil, fmt.Errorf("inference: %w", err)
		}
		dec = ParseDecision(raw)
	}
	if dec == nil {
		fmt.Fprintf(l.out, "  Could not get valid JSON after %d retries.\n", l.budgets.MaxParseRetries)
		return nil, errNoDecision
	}
	return dec, nil
}

// dispatch interprets one validated decision. It returns done=true
// only for the terminal done action; every other branch appends the
// assistant turn plus a user feedback message and continues.
func (l *Loop) dispatch(ctx context.Context, step int, dec *Decision) (done bool, summary string) {
	switch dec.Action {
	case ActionDone:
		return true, strings.TrimSpace(dec.Summary)

	case ActionAsk:
		question := strings.TrimSpace(dec.Question)
		if question == "" {
			question = "?"
		}
		fmt.Fprintf(l.out, "\n  Agent asks: %s\n", question)
		answer := ""
		if l.prompter != nil {
			a, err := l.prompter.Ask(ctx, question)
			if err != nil {
				l.logger.Warn().Err(err).Msg("prompter failed")
			} else {
				answer = a
			}
		}
		l.transcript.Append(RoleAssistant, dec.Raw)
		l.transcript.Append(RoleUser, askFollowup(answer))
		return false, ""

	case ActionSearch:
		l.dispatchWeb(ctx, dec, "WEB SEARCH", dec.Query, func(wctx context.Context) (string, error) {
			return l.web.Search(wctx, dec.Query)
		})
		return false, ""

	case ActionFetch:
		l.dispatchWeb(ctx, dec, "PAGE FETCH", dec.URL, func(wctx context.Context) (string, error) {
			return l.web.Fetch(wctx, dec.URL)
		})
		return false, ""

	case ActionRun:
		l.dispatchRun(ctx, step, dec)
		return false, ""

	default:
		// Parser validation makes this unreachable.
		l.logger.Error().Str("action", string(dec.Action)).Msg("unknown action reached dispatcher")
		l.transcript.Append(RoleAssistant, dec.Raw)
		l.transcript.Append(RoleUser, retryPrompt)
		return false, ""
	}
}

func (l *Loop) dispatchRun(ctx context.Context, step int, dec *Decision) {
	command := strings.TrimSpace(dec.Command)
	if command == "" {
		l.transcript.Append(RoleAssistant, dec.Raw)
		l.transcript.Append(RoleUser, emptyCommandPrompt)
		return
	}

	if reason := strings.TrimSpace(dec.Reason); reason != "" {
		fmt.Fprintf(l.out, "\n  Step %d  %s\n", step, reason)
	} else {
		fmt.Fprintf(l.out, "\n  Step %d\n", step)
	}
	fmt.Fprintf(l.out, "  $ %s\n", command)

	result := l.runner.Run(ctx, command)
	if result.Success() {
		fmt.Fprintf(l.out, "  ok\n")
	} else {
		fmt.Fprintf(l.out, "  exit %s\n", result.ExitLabel())
	}

	notes := heuristicNotes(command, result)
	var feedback string
	if result.Success() {
		feedback = successFeedback(command, result, notes)
	} else {
		feedback = failureFeedback(command, result, notes)
	}
	l.transcript.Append(RoleAssistant, dec.Raw)
	l.transcript.Append(RoleUser, feedback)
}

// dispatchWeb folds a gateway result, or an explicit unavailability
// notice, into feedback. Gateway trouble is never fatal to the loop.
func (l *Loop) dispatchWeb(ctx context.Context, dec *Decision, kind, subject string, call func(context.Context) (string, error)) {
	l.transcript.Append(RoleAssistant, dec.Raw)
	if l.web == nil || !l.web.Available() || strings.TrimSpace(subject) == "" {
		l.transcript.Append(RoleUser, webUnavailableFeedback(kind))
		return
	}
	body, err := withSpinner(l.spin, kind, func() (string, error) {
		return call(ctx)
	})
	if err != nil {
		l.logger.Warn().Err(err).Str("kind", kind).Msg("web gateway call failed")
		l.transcript.Append(RoleUser, webUnavailableFeedback(kind))
		return
	}
	l.transcript.Append(RoleUser, webResultFeedback(kind, subject, body))
}

// Transcript exposes the conversation for inspection by tests and the UI.
func (l *Loop) Transcript() *Transcript {
	return l.transcript
}
