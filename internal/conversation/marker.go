package conversation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/m3rciful/insurancebot/internal/domain"
)

var markerPattern = regexp.MustCompile(`\[STEP COMPLETED:\s*(-?\d+)\]`)

// ParseMarker finds the first step completion marker in completion and returns the step it names,
// whether a usable marker was found, and the completion with every marker removed.
// Markers naming anything other than -1 or 1..6 are stripped but not reported.
func ParseMarker(completion string) (domain.Step, bool, string) {
	matches := markerPattern.FindAllStringSubmatch(completion, -1)
	if len(matches) == 0 {
		return domain.NoStep, false, completion
	}
	cleaned := strings.TrimSpace(markerPattern.ReplaceAllString(completion, ""))

	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		step := domain.Step(n)
		if step == domain.NoStep || (step >= domain.StepAwaitingPassport && step <= domain.LastStep) {
			return step, true, cleaned
		}
	}
	return domain.NoStep, false, cleaned
}
