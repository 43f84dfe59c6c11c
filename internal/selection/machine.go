package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/colereed/showrunner/internal/llm"
	"github.com/colereed/showrunner/internal/parse"
)

// State is a title-selection machine state.
type State string

const (
	StateGenerating   State = "generating"
	StatePresented    State = "presented"
	StateRegenerating State = "regenerating"
	StateConfirmed    State = "confirmed"
	StateCancelled    State = "cancelled"
)

// ErrCancelled is returned when the operator aborts title selection. The job
// is not marked processed, so the transcript can be retried later.
var ErrCancelled = errors.New("title selection cancelled")

// Prompter exposes a candidate set to the operator and blocks for one
// classified input. Implementations decide their own presentation and
// invalid-input handling; they only ever return non-invalid inputs.
type Prompter interface {
	Present(ctx context.Context, titles []string) (Input, error)
}

// Machine runs GENERATING -> PRESENTED -> {REGENERATING -> PRESENTED,
// CONFIRMED, CANCELLED}. CONFIRMED is the only outcome that lets the
// pipeline continue.
type Machine struct {
	gen   llm.Generator
	log   *slog.Logger
	state State
}

// NewMachine creates a selection machine.
func NewMachine(gen llm.Generator, log *slog.Logger) *Machine {
	return &Machine{gen: gen, log: log, state: StateGenerating}
}

// State returns the current machine state.
func (m *Machine) State() State {
	return m.state
}

// Run drives the machine to a terminal state and returns the confirmed
// title, or ErrCancelled. Feedback is not cumulative: each regeneration
// carries only the most recent feedback.
func (m *Machine) Run(ctx context.Context, transcript string, prompter Prompter) (string, error) {
	m.state = StateGenerating
	titles, err := m.generate(ctx, transcript, "")
	if err != nil {
		return "", err
	}

	for {
		m.state = StatePresented
		input, err := prompter.Present(ctx, titles)
		if err != nil {
			return "", fmt.Errorf("present titles: %w", err)
		}

		switch input.Kind {
		case KindSelect:
			if input.Index < 1 || input.Index > len(titles) {
				return "", fmt.Errorf("candidate index %d out of range", input.Index)
			}
			m.state = StateConfirmed
			return titles[input.Index-1], nil

		case KindCustom:
			m.state = StateConfirmed
			return input.Text, nil

		case KindFeedback:
			m.state = StateRegenerating
			m.log.Info("regenerating titles", "feedback", input.Text)
			titles, err = m.generate(ctx, transcript, input.Text)
			if err != nil {
				return "", err
			}

		case KindCancel:
			m.state = StateCancelled
			return "", ErrCancelled

		default:
			return "", fmt.Errorf("prompter returned invalid input")
		}
	}
}

// generate produces a fresh candidate set, replacing any previous one
// wholesale. An empty candidate set is a generation failure: the machine
// must never present an empty prompt.
func (m *Machine) generate(ctx context.Context, transcript, feedback string) ([]string, error) {
	raw, err := m.gen.Generate(ctx, llm.StepTitles, llm.GenContext{
		Transcript: transcript,
		Feedback:   feedback,
	})
	if err != nil {
		return nil, err
	}

	titles := parse.Titles(raw)
	if len(titles) == 0 {
		return nil, &llm.GenerationError{Step: llm.StepTitles, Err: errors.New("no titles in response")}
	}
	return titles, nil
}
