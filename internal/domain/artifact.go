package domain

import "time"

// GeneratedImage is a session-scoped record of one image the user produced.
// BackgroundRemovedURL is attached later when the user strips the background;
// it is a weak back-reference, not ownership.
type GeneratedImage struct {
	ID                   string     `json:"id"`
	URL                  string     `json:"url"`
	Prompt               string     `json:"prompt"`
	Timestamp            time.Time  `json:"timestamp"`
	BackgroundRemovedURL string     `json:"backgroundRemovedUrl,omitempty"`
	Meta                 *ImageMeta `json:"meta,omitempty"`
}

// ImageMeta carries optional generation metadata echoed from the provider.
type ImageMeta struct {
	Model          string  `json:"model,omitempty"`
	GenerationTime float64 `json:"generationTime,omitempty"`
	Seed           int     `json:"seed,omitempty"`
	AspectRatio    string  `json:"aspectRatio,omitempty"`
}

// Model3D is a session-scoped record of one generated mesh. SourceImageID is
// a weak reference into the session's generated images and may be empty when
// the mesh was produced from an untracked image.
type Model3D struct {
	ID             string    `json:"id"`
	URL            string    `json:"url"`
	SourceImageID  string    `json:"sourceImageId"`
	Timestamp      time.Time `json:"timestamp"`
	Prompt         string    `json:"prompt,omitempty"`
	GenerationTime float64   `json:"generationTime,omitempty"`
}
