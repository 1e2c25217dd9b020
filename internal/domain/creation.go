package domain

import "time"

// CreationType enumerates the kinds of saved artifacts.
type CreationType string

const (
	CreationTypeImage             CreationType = "image"
	CreationTypeModel3D           CreationType = "3d-model"
	CreationTypeColoringBook      CreationType = "coloring-book"
	CreationTypeBackgroundRemoved CreationType = "background-removed"
)

// Valid reports whether the type is one of the known creation kinds.
func (t CreationType) Valid() bool {
	switch t {
	case CreationTypeImage, CreationTypeModel3D, CreationTypeColoringBook, CreationTypeBackgroundRemoved:
		return true
	}
	return false
}

// SavedCreation pairs a generated artifact with the prompt that produced it.
// Exactly one of ImageURL or ModelURL is set, depending on Type.
type SavedCreation struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Type      CreationType `json:"type"`
	ImageURL  string       `json:"imageUrl,omitempty"`
	ModelURL  string       `json:"modelUrl,omitempty"`
	Prompt    string       `json:"prompt"`
	CreatedAt time.Time    `json:"createdAt"`
}

// ArtifactURL returns whichever artifact location the creation carries.
func (c SavedCreation) ArtifactURL() string {
	if c.ModelURL != "" {
		return c.ModelURL
	}
	return c.ImageURL
}

// SavedPrompt is a user-saved prompt string with an independent lifecycle.
type SavedPrompt struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
