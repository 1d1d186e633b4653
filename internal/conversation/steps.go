package conversation

import (
	"fmt"

	appconfig "github.com/m3rciful/insurancebot/internal/config"
	"github.com/m3rciful/insurancebot/internal/domain"
)

// StepPolicy decides whether a step reported by the model is applied.
type StepPolicy interface {
	Name() string
	// Resolve returns the step the conversation moves to and whether the hint was accepted.
	Resolve(current, hint domain.Step) (domain.Step, bool)
}

// textTransitions are the moves a text turn may make. The passport and vehicle steps are
// reached only by processing a photo.
var textTransitions = map[domain.Step]domain.Step{
	domain.StepNotStarted:           domain.StepAwaitingPassport,
	domain.StepAwaitingPassport:     domain.StepReserved,
	domain.StepAwaitingConfirmation: domain.StepPriceQuoted,
	domain.StepPriceQuoted:          domain.StepPolicyIssued,
}

// Guarded accepts a hint only when it names the current step or the single allowed next step.
type Guarded struct{}

func (Guarded) Name() string { return appconfig.StepPolicyGuarded }

func (Guarded) Resolve(current, hint domain.Step) (domain.Step, bool) {
	if hint == domain.NoStep || hint == current {
		return current, true
	}
	if next, ok := textTransitions[current]; ok && next == hint {
		return hint, true
	}
	return current, false
}

// Trust applies any valid hint as is, including backward moves.
type Trust struct{}

func (Trust) Name() string { return appconfig.StepPolicyTrust }

func (Trust) Resolve(current, hint domain.Step) (domain.Step, bool) {
	if hint == domain.NoStep {
		return current, true
	}
	if hint >= domain.StepAwaitingPassport && hint <= domain.LastStep {
		return hint, true
	}
	return current, false
}

// PolicyByName returns the step policy configured under name.
func PolicyByName(name string) (StepPolicy, error) {
	switch name {
	case appconfig.StepPolicyGuarded, "":
		return Guarded{}, nil
	case appconfig.StepPolicyTrust:
		return Trust{}, nil
	}
	return nil, fmt.Errorf("unknown step policy %q", name)
}
