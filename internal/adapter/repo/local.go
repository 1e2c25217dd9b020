package repo

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/jfoote22/3d-ah-fi-server/internal/domain"
	"github.com/jfoote22/3d-ah-fi-server/internal/storage"
)

// LocalCreationLimit caps the creation documents kept by the local fallback
// store; the oldest entries are dropped first.
const LocalCreationLimit = 100

const (
	creationsKey    = "meta/saved-images.json"
	savedPromptsKey = "meta/saved-prompts.json"
)

// LocalStore implements the repository contracts on top of a FileStore for
// deployments without a database. Documents live in JSON files under the
// storage root, mirroring the browser local-storage fallback of the original
// client, including its entry cap.
type LocalStore struct {
	mu sync.Mutex
	fs *storage.FileStore
}

// NewLocalStore wraps a FileStore as a document store.
func NewLocalStore(fs *storage.FileStore) *LocalStore {
	return &LocalStore{fs: fs}
}

func (s *LocalStore) loadCreations(ctx context.Context) ([]domain.SavedCreation, error) {
	data, err := s.fs.Read(ctx, creationsKey)
	if err != nil {
		return nil, nil // nothing saved yet
	}
	var items []domain.SavedCreation
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *LocalStore) storeCreations(ctx context.Context, items []domain.SavedCreation) error {
	if len(items) > LocalCreationLimit {
		sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
		items = items[:LocalCreationLimit]
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = s.fs.Write(ctx, creationsKey, data)
	return err
}

// ListByUser returns the user's creations from the local document file.
func (s *LocalStore) ListByUser(ctx context.Context, userID string) ([]domain.SavedCreation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadCreations(ctx)
	if err != nil {
		return nil, err
	}
	var items []domain.SavedCreation
	for _, c := range all {
		if c.UserID == userID {
			items = append(items, c)
		}
	}
	return items, nil
}

// SaveAll appends the items and enforces the entry cap.
func (s *LocalStore) SaveAll(ctx context.Context, userID string, items []domain.SavedCreation) error {
	if len(items) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadCreations(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		item.UserID = userID
		all = append(all, item)
	}
	return s.storeCreations(ctx, all)
}

// GetByID fetches one creation.
func (s *LocalStore) GetByID(ctx context.Context, id string) (*domain.SavedCreation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadCreations(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.ID == id {
			found := c
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

// DeleteByID removes one creation.
func (s *LocalStore) DeleteByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadCreations(ctx)
	if err != nil {
		return err
	}
	kept := all[:0]
	found := false
	for _, c := range all {
		if c.ID == id {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return domain.ErrNotFound
	}
	return s.storeCreations(ctx, kept)
}

// ListPromptsByUser returns the user's saved prompts.
func (s *LocalStore) ListPromptsByUser(ctx context.Context, userID string) ([]domain.SavedPrompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadPrompts(ctx)
	if err != nil {
		return nil, err
	}
	var items []domain.SavedPrompt
	for _, p := range all {
		if p.UserID == userID {
			items = append(items, p)
		}
	}
	return items, nil
}

// SavePrompt appends one saved prompt.
func (s *LocalStore) SavePrompt(ctx context.Context, p domain.SavedPrompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadPrompts(ctx)
	if err != nil {
		return err
	}
	all = append(all, p)
	data, err := json.Marshal(all)
	if err != nil {
		return err
	}
	_, err = s.fs.Write(ctx, savedPromptsKey, data)
	return err
}

// DeletePromptByID removes one saved prompt owned by the given user. A
// prompt owned by someone else reads as not found.
func (s *LocalStore) DeletePromptByID(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadPrompts(ctx)
	if err != nil {
		return err
	}
	kept := all[:0]
	found := false
	for _, p := range all {
		if p.ID == id && p.UserID == userID {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return domain.ErrNotFound
	}
	data, err := json.Marshal(kept)
	if err != nil {
		return err
	}
	_, err = s.fs.Write(ctx, savedPromptsKey, data)
	return err
}

func (s *LocalStore) loadPrompts(ctx context.Context) ([]domain.SavedPrompt, error) {
	data, err := s.fs.Read(ctx, savedPromptsKey)
	if err != nil {
		return nil, nil
	}
	var items []domain.SavedPrompt
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Prompts adapts the LocalStore to domain.PromptRepository.
func (s *LocalStore) Prompts() domain.PromptRepository {
	return localPromptRepo{s}
}

type localPromptRepo struct{ s *LocalStore }

func (r localPromptRepo) ListByUser(ctx context.Context, userID string) ([]domain.SavedPrompt, error) {
	return r.s.ListPromptsByUser(ctx, userID)
}

func (r localPromptRepo) Save(ctx context.Context, p domain.SavedPrompt) error {
	return r.s.SavePrompt(ctx, p)
}

func (r localPromptRepo) DeleteByID(ctx context.Context, userID, id string) error {
	return r.s.DeletePromptByID(ctx, userID, id)
}

var (
	_ domain.CreationRepository = (*LocalStore)(nil)
	_ domain.PromptRepository   = localPromptRepo{}
)
