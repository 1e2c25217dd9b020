package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jfoote22/3d-ah-fi-server/internal/domain"
	"github.com/jfoote22/3d-ah-fi-server/pkg/zip"
)

type saveCreationsRequest struct {
	Items []saveCreationItem `json:"items"`
}

type saveCreationItem struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	ImageURL string `json:"imageUrl"`
	ModelURL string `json:"modelUrl"`
	Prompt   string `json:"prompt"`
}

// CreationsList returns the caller's saved creations, newest first.
func (a *App) CreationsList(w http.ResponseWriter, r *http.Request) {
	items, err := a.Creations.ListByUser(r.Context(), a.currentUserID(r))
	if err != nil {
		a.Logger.Error().Err(err).Msg("list creations")
		a.error(w, http.StatusInternalServerError, "internal", "could not load creations")
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// CreationsSave persists a batch of creations. Inline data URLs are written
// to blob storage so the stored record points at a stable URL.
func (a *App) CreationsSave(w http.ResponseWriter, r *http.Request) {
	var req saveCreationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if len(req.Items) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "items is required")
		return
	}

	userID := a.currentUserID(r)
	now := time.Now()
	saved := make([]domain.SavedCreation, 0, len(req.Items))
	for _, item := range req.Items {
		t := domain.CreationType(item.Type)
		if !t.Valid() {
			a.error(w, http.StatusBadRequest, "bad_request", "unknown creation type "+item.Type)
			return
		}
		id := item.ID
		if id == "" {
			id = uuid.NewString()
		}
		imageURL, err := a.materializeDataURL(r, id, item.ImageURL)
		if err != nil {
			a.Logger.Error().Err(err).Str("creation_id", id).Msg("store creation blob")
			a.error(w, http.StatusInternalServerError, "internal", "could not store creation")
			return
		}
		saved = append(saved, domain.SavedCreation{
			ID:        id,
			UserID:    userID,
			Type:      t,
			ImageURL:  imageURL,
			ModelURL:  item.ModelURL,
			Prompt:    item.Prompt,
			CreatedAt: now,
		})
	}

	if err := a.Creations.SaveAll(r.Context(), userID, saved); err != nil {
		a.Logger.Error().Err(err).Msg("save creations")
		a.error(w, http.StatusInternalServerError, "internal", "could not save creations")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": saved})
}

// CreationsDelete removes one creation and its blob, if it owns one.
func (a *App) CreationsDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	creation, err := a.Creations.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "creation not found")
			return
		}
		a.Logger.Error().Err(err).Msg("load creation")
		a.error(w, http.StatusInternalServerError, "internal", "could not delete creation")
		return
	}
	if creation.UserID != a.currentUserID(r) {
		a.error(w, http.StatusNotFound, "not_found", "creation not found")
		return
	}
	if err := a.Creations.DeleteByID(r.Context(), id); err != nil {
		a.Logger.Error().Err(err).Msg("delete creation")
		a.error(w, http.StatusInternalServerError, "internal", "could not delete creation")
		return
	}
	if a.Blobs != nil {
		if key, ok := a.Blobs.KeyFromURL(creation.ImageURL); ok {
			if err := a.Blobs.Delete(r.Context(), key); err != nil {
				a.Logger.Warn().Err(err).Str("key", key).Msg("delete creation blob")
			}
		}
	}
	a.json(w, http.StatusOK, map[string]any{"success": true})
}

// CreationsExport bundles the caller's creations into a zip archive grouped
// by type. Artifacts in blob storage are embedded, remote ones are exported
// as URL references.
func (a *App) CreationsExport(w http.ResponseWriter, r *http.Request) {
	items, err := a.Creations.ListByUser(r.Context(), a.currentUserID(r))
	if err != nil {
		a.Logger.Error().Err(err).Msg("export creations")
		a.error(w, http.StatusInternalServerError, "internal", "could not export creations")
		return
	}
	if len(items) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "nothing to export")
		return
	}

	folder := cases.Title(language.English)
	assets := make([]zip.Asset, 0, len(items))
	for _, item := range items {
		name := folder.String(strings.ReplaceAll(string(item.Type), "-", " "))
		name = strings.ReplaceAll(name, " ", "") + "/" + item.ID
		url := item.ArtifactURL()
		if a.Blobs != nil {
			if key, ok := a.Blobs.KeyFromURL(url); ok {
				data, err := a.Blobs.Read(r.Context(), key)
				if err == nil {
					assets = append(assets, zip.Asset{Filename: name, MIME: "image/png", Data: data})
					continue
				}
				a.Logger.Warn().Err(err).Str("key", key).Msg("read export blob")
			}
		}
		assets = append(assets, zip.Asset{Filename: name, MIME: "text/uri-list", Data: []byte(url)})
	}

	archive := zip.ArchiveAssets(assets)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="creations.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

// materializeDataURL stores inline base64 image payloads as blobs and
// returns their served URL. Anything else passes through unchanged.
func (a *App) materializeDataURL(r *http.Request, id, url string) (string, error) {
	if a.Blobs == nil || !strings.HasPrefix(url, "data:") {
		return url, nil
	}
	_, payload, ok := strings.Cut(url, ";base64,")
	if !ok {
		return url, nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", err
	}
	key, err := a.Blobs.Write(r.Context(), "creations/"+id+".png", data)
	if err != nil {
		return "", err
	}
	return a.Blobs.URLFor(key), nil
}
