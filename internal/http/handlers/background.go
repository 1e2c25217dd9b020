package handlers

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"github.com/jfoote22/3d-ah-fi-server/internal/providers"
	"github.com/jfoote22/3d-ah-fi-server/internal/providers/bgremoval"
)

// maxUploadBytes caps background removal uploads at 12 MiB, matching the
// vendor's own limit for standard accounts.
const maxUploadBytes = 12 << 20

type backgroundRemoveResponse struct {
	Success          bool    `json:"success"`
	ImageURL         string  `json:"imageUrl"`
	CreditsConsumed  float64 `json:"creditsConsumed"`
	RemainingCredits float64 `json:"remainingCredits"`
}

// ImagesRemoveBackground accepts a multipart upload, forwards it to the
// cut-out vendor and returns the result inline as a data URL. When the
// caller names one of its session images via image_id, the session record
// is annotated with the cut-out variant.
func (a *App) ImagesRemoveBackground(w http.ResponseWriter, r *http.Request) {
	if !a.BGRemoval.HasCredentials() {
		a.configError(w, "background removal")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	file, header, err := r.FormFile("image_file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image_file is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "could not read image_file")
		return
	}

	res, err := providers.CallWithTimeout(r.Context(), "remove.bg", a.Config.ImageTimeout,
		func(ctx context.Context) (*bgremoval.Result, error) {
			return a.BGRemoval.RemoveBackground(ctx, bgremoval.RemoveRequest{
				Filename:     header.Filename,
				Data:         data,
				Transparency: r.FormValue("transparency_handling"),
			})
		})
	if err != nil {
		a.providerError(w, r, err, "")
		return
	}

	contentType := res.ContentType
	if contentType == "" {
		contentType = "image/png"
	}
	dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(res.Data)

	if id := strings.TrimSpace(r.FormValue("image_id")); id != "" {
		a.session(r).UpdateImageBackgroundRemoved(id, dataURL)
	}

	a.json(w, http.StatusOK, backgroundRemoveResponse{
		Success:          true,
		ImageURL:         dataURL,
		CreditsConsumed:  res.CreditsConsumed,
		RemainingCredits: res.RemainingCredits,
	})
}
