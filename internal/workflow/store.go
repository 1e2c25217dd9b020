package workflow

import (
	"sync"

	"github.com/jfoote22/3d-ah-fi-server/internal/domain"
)

// PromptHistoryLimit caps how many prior prompts a session remembers.
const PromptHistoryLimit = 10

// Store holds the state of one creative session. Construct one per session
// with NewStore; there is deliberately no package-level instance so tests
// and handlers always work against their own container.
//
// All methods are safe for concurrent use. Artifact slices are ordered
// most-recent-first by completion time.
type Store struct {
	mu sync.Mutex

	currentStep         Step
	completed           map[Step]struct{}
	prompt              string
	promptHistory       []string
	generatedImages     []domain.GeneratedImage
	selectedImageID     string
	generatedModels     []domain.Model3D
	enhancementType     string
	onboardingDismissed bool
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	CurrentStep         Step                    `json:"currentStep"`
	CompletedSteps      []Step                  `json:"completedSteps"`
	Prompt              string                  `json:"prompt"`
	PromptHistory       []string                `json:"promptHistory"`
	GeneratedImages     []domain.GeneratedImage `json:"generatedImages"`
	SelectedImageID     string                  `json:"selectedImageId,omitempty"`
	GeneratedModels     []domain.Model3D        `json:"generatedModels"`
	EnhancementType     string                  `json:"enhancementType,omitempty"`
	OnboardingDismissed bool                    `json:"onboardingDismissed"`
	Progress            float64                 `json:"progress"`
}

// NewStore returns a session store positioned at the first step.
func NewStore() *Store {
	return &Store{
		currentStep: StepPrompt,
		completed:   make(map[Step]struct{}),
	}
}

// SetCurrentStep unconditionally moves the wizard. Reachability is the
// sequencer's concern, not the store's.
func (s *Store) SetCurrentStep(step Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentStep = step
}

// CompleteStep marks a step done. Idempotent.
func (s *Store) CompleteStep(step Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed[step] = struct{}{}
}

// SetPrompt replaces the working prompt text.
func (s *Store) SetPrompt(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompt = text
}

// AddPromptToHistory records a prompt at the front of the history unless an
// identical entry already exists, then trims to the newest entries.
func (s *Store) AddPromptToHistory(text string) {
	if text == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.promptHistory {
		if existing == text {
			return
		}
	}
	s.promptHistory = append([]string{text}, s.promptHistory...)
	if len(s.promptHistory) > PromptHistoryLimit {
		s.promptHistory = s.promptHistory[:PromptHistoryLimit]
	}
}

// AddGeneratedImage prepends the image and selects it. Producing an image
// while still on the prompt step implicitly completes the first two steps
// and advances to enhance.
func (s *Store) AddGeneratedImage(img domain.GeneratedImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generatedImages = append([]domain.GeneratedImage{img}, s.generatedImages...)
	s.selectedImageID = img.ID
	if s.currentStep == StepPrompt {
		s.completed[StepPrompt] = struct{}{}
		s.completed[StepGenerate] = struct{}{}
		s.currentStep = StepEnhance
	}
}

// SelectImage marks an existing image as selected; unknown ids are ignored
// so the selection invariant holds.
func (s *Store) SelectImage(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, img := range s.generatedImages {
		if img.ID == id {
			s.selectedImageID = id
			return
		}
	}
}

// UpdateImageBackgroundRemoved attaches a background-removed URL to the
// matching image. No-op when the id is unknown.
func (s *Store) UpdateImageBackgroundRemoved(id, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.generatedImages {
		if s.generatedImages[i].ID == id {
			s.generatedImages[i].BackgroundRemovedURL = url
			return
		}
	}
}

// AddGeneratedModel prepends the mesh to the session's model list.
func (s *Store) AddGeneratedModel(m domain.Model3D) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generatedModels = append([]domain.Model3D{m}, s.generatedModels...)
}

// SetEnhancementType records the UI's enhancement selector.
func (s *Store) SetEnhancementType(t string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enhancementType = t
}

// DismissOnboarding records that the user dismissed the onboarding hint.
// The flag survives Reset.
func (s *Store) DismissOnboarding() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onboardingDismissed = true
}

// Reset restores the session to its initial state. Prompt history and the
// onboarding flag survive: history is durable within the session while
// generation results are disposable.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentStep = StepPrompt
	s.completed = make(map[Step]struct{})
	s.prompt = ""
	s.generatedImages = nil
	s.selectedImageID = ""
	s.generatedModels = nil
	s.enhancementType = ""
}

// SelectedImage returns the currently selected image, if any.
func (s *Store) SelectedImage() (domain.GeneratedImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, img := range s.generatedImages {
		if img.ID == s.selectedImageID {
			return img, true
		}
	}
	return domain.GeneratedImage{}, false
}

// Image returns the generated image with the given id, if present.
func (s *Store) Image(id string) (domain.GeneratedImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, img := range s.generatedImages {
		if img.ID == id {
			return img, true
		}
	}
	return domain.GeneratedImage{}, false
}

// Snapshot copies the session state for serialization.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := make([]Step, 0, len(s.completed))
	for _, step := range Steps {
		if _, ok := s.completed[step]; ok {
			completed = append(completed, step)
		}
	}
	snap := Snapshot{
		CurrentStep:         s.currentStep,
		CompletedSteps:      completed,
		Prompt:              s.prompt,
		PromptHistory:       append([]string(nil), s.promptHistory...),
		GeneratedImages:     append([]domain.GeneratedImage(nil), s.generatedImages...),
		SelectedImageID:     s.selectedImageID,
		GeneratedModels:     append([]domain.Model3D(nil), s.generatedModels...),
		EnhancementType:     s.enhancementType,
		OnboardingDismissed: s.onboardingDismissed,
	}
	snap.Progress = Progress(snap.CurrentStep)
	return snap
}
