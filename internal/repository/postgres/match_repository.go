package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/amora-app/amora-backend/internal/domain"
	"github.com/amora-app/amora-backend/internal/pagination"
	"github.com/amora-app/amora-backend/internal/repository"
)

type matchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) repository.MatchRepository {
	return &matchRepository{db: db}
}

// CreateIdempotent relies on the unique (user_a_id, user_b_id) constraint:
// when two processes complete a mutual like concurrently, exactly one INSERT
// lands and the loser reads the winner's row. A constraint conflict is
// resolved, not surfaced.
func (r *matchRepository) CreateIdempotent(ctx context.Context, userA, userB int64) (*domain.Match, error) {
	a, b := domain.NormalizePair(userA, userB)

	match := &domain.Match{UserAID: a, UserBID: b, IsActive: true}
	query := `
		INSERT INTO matches (user_a_id, user_b_id, is_active)
		VALUES ($1, $2, true)
		ON CONFLICT (user_a_id, user_b_id) DO NOTHING
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, a, b).Scan(&match.ID, &match.CreatedAt)
	if err == nil {
		return match, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	// Conflict: the row already exists, fetch it.
	return r.GetByUsers(ctx, a, b)
}

func (r *matchRepository) GetByID(ctx context.Context, id int64) (*domain.Match, error) {
	var match domain.Match
	query := `SELECT * FROM matches WHERE id = $1`
	err := r.db.GetContext(ctx, &match, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

func (r *matchRepository) GetByUsers(ctx context.Context, userA, userB int64) (*domain.Match, error) {
	a, b := domain.NormalizePair(userA, userB)

	var match domain.Match
	query := `SELECT * FROM matches WHERE user_a_id = $1 AND user_b_id = $2`
	err := r.db.GetContext(ctx, &match, query, a, b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

// ListActivePage uses keyset predicates on the composite (created_at, id)
// key so concurrent inserts cannot cause skips or duplicates across pages.
func (r *matchRepository) ListActivePage(ctx context.Context, userID int64, boundaryTS *time.Time, boundaryID int64, dir pagination.Direction, limit int) ([]*domain.Match, error) {
	query := `
		SELECT * FROM matches
		WHERE (user_a_id = $1 OR user_b_id = $1) AND is_active = true
	`
	args := []interface{}{userID}

	if boundaryTS != nil {
		if dir == pagination.DirectionNewer {
			query += ` AND (created_at, id) > ($2, $3)`
		} else {
			query += ` AND (created_at, id) < ($2, $3)`
		}
		args = append(args, *boundaryTS, boundaryID)
	}
	if dir == pagination.DirectionNewer {
		query += ` ORDER BY created_at ASC, id ASC`
	} else {
		query += ` ORDER BY created_at DESC, id DESC`
	}
	query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	var matches []*domain.Match
	err := r.db.SelectContext(ctx, &matches, query, args...)
	return matches, err
}

func (r *matchRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE matches SET is_active = false WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMatchNotFound
	}
	return nil
}
