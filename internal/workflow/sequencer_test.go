package workflow

import (
	"testing"
	"time"
)

func TestCanProceedTo(t *testing.T) {
	testCases := []struct {
		name      string
		current   Step
		completed []Step
		target    Step
		want      bool
	}{
		{"first step always reachable", StepPrompt, nil, StepPrompt, true},
		{"first step reachable from anywhere", StepExport, nil, StepPrompt, true},
		{"going back allowed", StepEnhance, nil, StepGenerate, true},
		{"forward blocked without predecessor", StepPrompt, nil, StepGenerate, false},
		{"forward allowed with predecessor complete", StepPrompt, []Step{StepPrompt}, StepGenerate, true},
		{"export blocked without enhance", StepGenerate, []Step{StepPrompt, StepGenerate}, StepExport, false},
		{"export allowed with enhance complete", StepEnhance, []Step{StepPrompt, StepGenerate, StepEnhance}, StepExport, true},
		{"skipping a step blocked", StepPrompt, []Step{StepPrompt}, StepEnhance, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			snap := Snapshot{CurrentStep: tc.current, CompletedSteps: tc.completed}
			if got := CanProceedTo(snap, tc.target); got != tc.want {
				t.Fatalf("CanProceedTo(%s -> %s) = %v, want %v", tc.current, tc.target, got, tc.want)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	pairs := map[Step]float64{
		StepPrompt:   25,
		StepGenerate: 50,
		StepEnhance:  75,
		StepExport:   100,
	}
	for step, want := range pairs {
		if got := Progress(step); got != want {
			t.Fatalf("Progress(%s) = %v, want %v", step, got, want)
		}
	}
	if got := Progress(Step("bogus")); got != 0 {
		t.Fatalf("Progress(bogus) = %v", got)
	}
}

func TestParseStep(t *testing.T) {
	if step, err := ParseStep(" Enhance "); err != nil || step != StepEnhance {
		t.Fatalf("ParseStep = %v, %v", step, err)
	}
	if _, err := ParseStep("finish"); err == nil {
		t.Fatal("expected error for unknown step")
	}
}

func TestSessionManagerReuseAndExpiry(t *testing.T) {
	m := NewSessionManager(time.Minute)
	now := time.Unix(1000, 0)
	m.now = func() time.Time { return now }

	a := m.Get("user-a")
	a.SetPrompt("keep me")
	if got := m.Get("user-a"); got != a {
		t.Fatal("same key must return same store")
	}
	if got := m.Get("user-b"); got == a {
		t.Fatal("different keys must not share a store")
	}
	if m.Len() != 2 {
		t.Fatalf("len = %d", m.Len())
	}

	now = now.Add(2 * time.Minute)
	_ = m.Get("user-c")
	if m.Len() != 1 {
		t.Fatalf("expired sessions not pruned, len = %d", m.Len())
	}
	if got := m.Get("user-a"); got == a {
		t.Fatal("expired session must be replaced")
	}
}
