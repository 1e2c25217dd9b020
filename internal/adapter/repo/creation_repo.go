package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jfoote22/3d-ah-fi-server/internal/domain"
)

// CreationRepositoryPG implements domain.CreationRepository using PostgreSQL.
type CreationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewCreationRepository constructs a new creation repository instance.
func NewCreationRepository(pool *pgxpool.Pool) *CreationRepositoryPG {
	return &CreationRepositoryPG{pool: pool}
}

// ListByUser returns all creations saved by the user, in storage order.
// Callers sort by CreatedAt as needed.
func (r *CreationRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.SavedCreation, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, type, image_url, model_url, prompt, created_at
FROM creations
WHERE user_id = $1;
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.SavedCreation
	for rows.Next() {
		var c domain.SavedCreation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Type, &c.ImageURL, &c.ModelURL, &c.Prompt, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveAll persists one document per item.
func (r *CreationRepositoryPG) SaveAll(ctx context.Context, userID string, items []domain.SavedCreation) error {
	if len(items) == 0 {
		return nil
	}
	query := `
INSERT INTO creations (id, user_id, type, image_url, model_url, prompt, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	for _, item := range items {
		c := item
		if _, err := r.pool.Exec(ctx, query, c.ID, userID, c.Type, c.ImageURL, c.ModelURL, c.Prompt, c.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches a single creation.
func (r *CreationRepositoryPG) GetByID(ctx context.Context, id string) (*domain.SavedCreation, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, user_id, type, image_url, model_url, prompt, created_at
FROM creations
WHERE id = $1;
`, id)
	var c domain.SavedCreation
	if err := row.Scan(&c.ID, &c.UserID, &c.Type, &c.ImageURL, &c.ModelURL, &c.Prompt, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// DeleteByID removes one creation document.
func (r *CreationRepositoryPG) DeleteByID(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM creations WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.CreationRepository = (*CreationRepositoryPG)(nil)
