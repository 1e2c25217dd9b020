package domain

import "context"

// CreationRepository handles persistence for saved creations.
type CreationRepository interface {
	ListByUser(ctx context.Context, userID string) ([]SavedCreation, error)
	SaveAll(ctx context.Context, userID string, items []SavedCreation) error
	GetByID(ctx context.Context, id string) (*SavedCreation, error)
	DeleteByID(ctx context.Context, id string) error
}

// PromptRepository handles persistence for saved prompts. Deletion is
// scoped to the owning user; a foreign id reads as not found.
type PromptRepository interface {
	ListByUser(ctx context.Context, userID string) ([]SavedPrompt, error)
	Save(ctx context.Context, p SavedPrompt) error
	DeleteByID(ctx context.Context, userID, id string) error
}
