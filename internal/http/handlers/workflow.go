package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jfoote22/3d-ah-fi-server/internal/workflow"
)

type workflowStepRequest struct {
	Step     string `json:"step"`
	Complete bool   `json:"complete"`
}

type workflowPromptRequest struct {
	Prompt string `json:"prompt"`
}

type workflowSelectImageRequest struct {
	ImageID string `json:"imageId"`
}

// WorkflowGet returns the caller's full session snapshot.
func (a *App) WorkflowGet(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.session(r).Snapshot())
}

// WorkflowStep navigates the wizard. Forward jumps are rejected until the
// preceding step is complete; moving backward is always allowed.
func (a *App) WorkflowStep(w http.ResponseWriter, r *http.Request) {
	var req workflowStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	step, err := workflow.ParseStep(req.Step)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	sess := a.session(r)
	if req.Complete {
		sess.CompleteStep(step)
		a.json(w, http.StatusOK, sess.Snapshot())
		return
	}
	if !workflow.CanProceedTo(sess.Snapshot(), step) {
		a.error(w, http.StatusConflict, "step_locked",
			"complete the previous step before moving to "+string(step))
		return
	}
	sess.SetCurrentStep(step)
	a.json(w, http.StatusOK, sess.Snapshot())
}

// WorkflowReset clears the session back to the first step. Prompt history
// and the onboarding flag survive the reset.
func (a *App) WorkflowReset(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	sess.Reset()
	a.json(w, http.StatusOK, sess.Snapshot())
}

// WorkflowSetPrompt updates the working prompt and records it in history.
func (a *App) WorkflowSetPrompt(w http.ResponseWriter, r *http.Request) {
	var req workflowPromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt is required")
		return
	}
	sess := a.session(r)
	sess.SetPrompt(req.Prompt)
	sess.AddPromptToHistory(req.Prompt)
	a.json(w, http.StatusOK, sess.Snapshot())
}

// WorkflowSelectImage marks one generated image as the active selection.
func (a *App) WorkflowSelectImage(w http.ResponseWriter, r *http.Request) {
	var req workflowSelectImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.ImageID) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "imageId is required")
		return
	}
	sess := a.session(r)
	sess.SelectImage(req.ImageID)
	a.json(w, http.StatusOK, sess.Snapshot())
}

// WorkflowDismissOnboarding hides the intro overlay for this user.
func (a *App) WorkflowDismissOnboarding(w http.ResponseWriter, r *http.Request) {
	sess := a.session(r)
	sess.DismissOnboarding()
	a.json(w, http.StatusOK, sess.Snapshot())
}
