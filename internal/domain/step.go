// Package domain holds the conversation step machine vocabulary and the extracted document types.
package domain

import "fmt"

// Step is the position of a conversation in the fixed purchase script.
type Step int

const (
	// NoStep is the model's way of saying no step was completed this turn. It is never persisted.
	NoStep Step = -1

	StepNotStarted           Step = 0
	StepAwaitingPassport     Step = 1
	StepReserved             Step = 2
	StepAwaitingVehicle      Step = 3
	StepAwaitingConfirmation Step = 4
	StepPriceQuoted          Step = 5
	StepPolicyIssued         Step = 6
)

// FirstStep and LastStep bound the values a conversation can be in.
const (
	FirstStep = StepNotStarted
	LastStep  = StepPolicyIssued
)

// Valid reports whether s is a persistable step.
func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

func (s Step) String() string {
	switch s {
	case NoStep:
		return "none"
	case StepNotStarted:
		return "not_started"
	case StepAwaitingPassport:
		return "awaiting_passport"
	case StepReserved:
		return "reserved"
	case StepAwaitingVehicle:
		return "awaiting_vehicle"
	case StepAwaitingConfirmation:
		return "awaiting_confirmation"
	case StepPriceQuoted:
		return "price_quoted"
	case StepPolicyIssued:
		return "policy_issued"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// DocumentFor returns the document kind a photo is taken as while the conversation is at s.
func DocumentFor(s Step) DocumentKind {
	if s < StepAwaitingVehicle {
		return Passport
	}
	return Vehicle
}
