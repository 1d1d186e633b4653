package domain

import "testing"

func TestDocumentFor(t *testing.T) {
	cases := map[Step]DocumentKind{
		StepNotStarted:           Passport,
		StepAwaitingPassport:     Passport,
		StepReserved:             Passport,
		StepAwaitingVehicle:      Vehicle,
		StepAwaitingConfirmation: Vehicle,
		StepPolicyIssued:         Vehicle,
	}
	for step, want := range cases {
		if got := DocumentFor(step); got != want {
			t.Fatalf("DocumentFor(%s) = %s, want %s", step, got, want)
		}
	}
}

func TestStepValid(t *testing.T) {
	for s := FirstStep; s <= LastStep; s++ {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	for _, s := range []Step{NoStep, 7, -2} {
		if s.Valid() {
			t.Fatalf("%s should be invalid", s)
		}
	}
	if Step(9).String() != "step(9)" {
		t.Fatalf("unexpected name %q", Step(9).String())
	}
}
