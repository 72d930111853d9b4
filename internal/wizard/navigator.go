package wizard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/totalfootcare/checkin-kiosk/internal/formstate"
	"github.com/totalfootcare/checkin-kiosk/internal/session"
	"github.com/totalfootcare/checkin-kiosk/pkg/logging"
)

// HomePath is where the first step's back control and gate redirects land.
const (
	HomePath   = "/"
	VerifyPath = "/encounter-verification"
)

// Navigator applies wizard transitions for a session: save-then-advance,
// retreat-without-save, and the verification gate in front of everything
// past the first step.
type Navigator struct {
	machine  *Machine
	sessions *session.Manager
	logger   *logging.Logger
}

// Transition is the outcome of an advance or retreat.
type Transition struct {
	From Step `json:"from"`
	// To is zero-valued when ToPath points outside the wizard (home) or the
	// transition was a terminal no-op.
	To       Step   `json:"to"`
	ToPath   string `json:"toPath"`
	Terminal bool   `json:"terminal,omitempty"`
}

// NewNavigator builds a navigator over the compiled machine.
func NewNavigator(machine *Machine, sessions *session.Manager, logger *logging.Logger) *Navigator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Navigator{machine: machine, sessions: sessions, logger: logger}
}

// Machine exposes the compiled step sequence.
func (n *Navigator) Machine() *Machine {
	return n.machine
}

// Advance saves the step's payload into its owned section, then moves to the
// next step. The save's persistence write completes before the transition is
// returned, so the next step always rehydrates the just-saved values. A nil
// payload advances without saving (steps whose section was filled by a
// capture upload). On the terminal step the call is a no-op: the caller
// stays put and submission remains a separate, explicit operation.
func (n *Navigator) Advance(ctx context.Context, sessionID string, stepID StepID, payload json.RawMessage) (*Transition, error) {
	step, ok := n.machine.Step(stepID)
	if !ok {
		return nil, fmt.Errorf("wizard: %w: %q", ErrUnknownStep, stepID)
	}
	if t, err := n.gate(ctx, sessionID, step); err != nil {
		return t, err
	}

	form := n.sessions.Form(ctx, sessionID)

	if len(payload) > 0 {
		record, err := formstate.DecodeRecord(step.Section, payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if step.Required != nil {
			if err := step.Required(record); err != nil {
				return nil, err
			}
		}
		if err := form.UpdateSection(step.Section, record); err != nil {
			return nil, err
		}
	} else if step.Required != nil {
		// No payload: the step must already hold a valid record.
		record, err := form.Read(step.Section)
		if err != nil {
			return nil, err
		}
		if err := step.Required(record); err != nil {
			return nil, err
		}
	}

	next, ok := n.machine.Next(stepID)
	if !ok {
		n.logger.Debug("advance on terminal step", "step", stepID)
		return &Transition{From: step, To: step, ToPath: step.Path, Terminal: true}, nil
	}
	return &Transition{From: step, To: next, ToPath: next.Path}, nil
}

// Retreat moves to the previous step without saving anything; Back never
// mutates saved state. The first step retreats to the home screen.
func (n *Navigator) Retreat(ctx context.Context, sessionID string, stepID StepID) (*Transition, error) {
	step, ok := n.machine.Step(stepID)
	if !ok {
		return nil, fmt.Errorf("wizard: %w: %q", ErrUnknownStep, stepID)
	}
	if t, err := n.gate(ctx, sessionID, step); err != nil {
		return t, err
	}

	prev, ok := n.machine.Prev(stepID)
	if !ok {
		return &Transition{From: step, ToPath: HomePath}, nil
	}
	return &Transition{From: step, To: prev, ToPath: prev.Path}, nil
}

// gate enforces the verification precondition for every step past the
// first-gate boundary: an unverified session is redirected to the
// verification screen and nothing is saved.
func (n *Navigator) gate(ctx context.Context, sessionID string, step Step) (*Transition, error) {
	if n.sessions.Verified(ctx, sessionID) {
		return nil, nil
	}
	n.logger.Warn("unverified session reached wizard step", "step", step.ID, "session_id", sessionID)
	return &Transition{From: step, ToPath: VerifyPath}, ErrNotVerified
}
