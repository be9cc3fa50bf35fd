package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/amora-app/amora-backend/internal/domain"
	"github.com/amora-app/amora-backend/internal/repository"
)

type swipeRepository struct {
	db *sqlx.DB
}

func NewSwipeRepository(db *sqlx.DB) repository.SwipeRepository {
	return &swipeRepository{db: db}
}

func (r *swipeRepository) Upsert(ctx context.Context, action *domain.SwipeAction) error {
	query := `
		INSERT INTO swipe_actions (from_id, to_id, action)
		VALUES ($1, $2, $3)
		ON CONFLICT (from_id, to_id)
		DO UPDATE SET action = EXCLUDED.action, created_at = CURRENT_TIMESTAMP
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query, action.FromID, action.ToID, action.Action).
		Scan(&action.ID, &action.CreatedAt)
}

func (r *swipeRepository) GetByUsers(ctx context.Context, fromID, toID int64) (*domain.SwipeAction, error) {
	var action domain.SwipeAction
	query := `SELECT * FROM swipe_actions WHERE from_id = $1 AND to_id = $2`
	err := r.db.GetContext(ctx, &action, query, fromID, toID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &action, nil
}

func (r *swipeRepository) SwipedIDs(ctx context.Context, fromID int64) (map[int64]struct{}, error) {
	var ids []int64
	query := `SELECT to_id FROM swipe_actions WHERE from_id = $1`
	if err := r.db.SelectContext(ctx, &ids, query, fromID); err != nil {
		return nil, err
	}
	swiped := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		swiped[id] = struct{}{}
	}
	return swiped, nil
}

func (r *swipeRepository) HasPositive(ctx context.Context, fromID, toID int64) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM swipe_actions
			WHERE from_id = $1 AND to_id = $2 AND action IN ('like', 'superlike')
		)
	`
	err := r.db.GetContext(ctx, &exists, query, fromID, toID)
	return exists, err
}

func (r *swipeRepository) Delete(ctx context.Context, fromID, toID int64) error {
	query := `DELETE FROM swipe_actions WHERE from_id = $1 AND to_id = $2`
	_, err := r.db.ExecContext(ctx, query, fromID, toID)
	return err
}
