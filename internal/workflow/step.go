// Package workflow tracks one creative session: the wizard position, the
// prompt being worked on, and the artifacts generated so far.
package workflow

import (
	"fmt"
	"strings"
)

// Step is one stage of the four-step wizard.
type Step string

const (
	StepPrompt   Step = "prompt"
	StepGenerate Step = "generate"
	StepEnhance  Step = "enhance"
	StepExport   Step = "export"
)

// Steps lists the wizard stages in progression order.
var Steps = []Step{StepPrompt, StepGenerate, StepEnhance, StepExport}

// Index returns the step's position in the progression, or -1 for an
// unknown step.
func (s Step) Index() int {
	for i, step := range Steps {
		if step == s {
			return i
		}
	}
	return -1
}

// ParseStep resolves user input to a known step.
func ParseStep(raw string) (Step, error) {
	s := Step(strings.ToLower(strings.TrimSpace(raw)))
	if s.Index() < 0 {
		return "", fmt.Errorf("unknown workflow step %q", raw)
	}
	return s, nil
}
