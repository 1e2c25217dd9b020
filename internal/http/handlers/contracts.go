package handlers

import (
	"context"

	"github.com/jfoote22/3d-ah-fi-server/internal/providers/bgremoval"
	"github.com/jfoote22/3d-ah-fi-server/internal/providers/mesh"
	"github.com/jfoote22/3d-ah-fi-server/internal/providers/replicate"
)

// The gateway depends on provider capabilities, not concrete clients, so
// tests can substitute stubs.

// ImageGenerator covers text-to-image and image-to-image generation.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req replicate.GenerateRequest) (*replicate.Result, error)
	TransformImage(ctx context.Context, req replicate.TransformRequest) (*replicate.Result, error)
	HasCredentials() bool
	ImageModel() string
	Img2ImgModel() string
}

// MeshGenerator produces 3D meshes.
type MeshGenerator interface {
	GenerateModel(ctx context.Context, req mesh.GenerateRequest) (*mesh.Result, error)
	HasCredentials() bool
	Model() string
}

// BackgroundRemover strips image backgrounds.
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, req bgremoval.RemoveRequest) (*bgremoval.Result, error)
	HasCredentials() bool
}

// PromptEnhancer rewrites prompts through a language model.
type PromptEnhancer interface {
	GeneratePrompt(ctx context.Context, instruction string) (string, error)
	HasCredentials() bool
}
