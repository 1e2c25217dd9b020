package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jfoote22/3d-ah-fi-server/internal/domain"
)

// PromptRepositoryPG implements domain.PromptRepository using PostgreSQL.
type PromptRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPromptRepository constructs a new saved-prompt repository instance.
func NewPromptRepository(pool *pgxpool.Pool) *PromptRepositoryPG {
	return &PromptRepositoryPG{pool: pool}
}

// ListByUser returns all prompts saved by the user.
func (r *PromptRepositoryPG) ListByUser(ctx context.Context, userID string) ([]domain.SavedPrompt, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, text, created_at
FROM saved_prompts
WHERE user_id = $1;
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.SavedPrompt
	for rows.Next() {
		var p domain.SavedPrompt
		if err := rows.Scan(&p.ID, &p.UserID, &p.Text, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Save persists one prompt document.
func (r *PromptRepositoryPG) Save(ctx context.Context, p domain.SavedPrompt) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO saved_prompts (id, user_id, text, created_at)
VALUES ($1, $2, $3, $4);
`, p.ID, p.UserID, p.Text, p.CreatedAt)
	return err
}

// DeleteByID removes one prompt document owned by the given user.
func (r *PromptRepositoryPG) DeleteByID(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM saved_prompts WHERE id = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.PromptRepository = (*PromptRepositoryPG)(nil)
