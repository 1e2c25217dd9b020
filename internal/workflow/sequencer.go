package workflow

// The sequencer is a pure derivation layer over a session snapshot: it owns
// no state and decides only whether navigation is allowed and how far along
// the wizard is.

// CanProceedTo reports whether the session may navigate to step. Going back
// (or staying) is always allowed, the first step is always reachable, and a
// forward jump requires the immediately preceding step to be complete.
func CanProceedTo(snap Snapshot, step Step) bool {
	idx := step.Index()
	if idx < 0 {
		return false
	}
	if idx <= snap.CurrentStep.Index() {
		return true
	}
	if idx == 0 {
		return true
	}
	prev := Steps[idx-1]
	for _, done := range snap.CompletedSteps {
		if done == prev {
			return true
		}
	}
	return false
}

// Progress returns the wizard completion percentage for the current step.
func Progress(current Step) float64 {
	idx := current.Index()
	if idx < 0 {
		return 0
	}
	return float64(idx+1) / float64(len(Steps)) * 100
}
