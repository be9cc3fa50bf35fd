package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/amora-app/amora-backend/internal/domain"
	"github.com/amora-app/amora-backend/internal/repository"
)

type profileStore struct {
	db *sqlx.DB
}

func NewProfileStore(db *sqlx.DB) repository.ProfileStore {
	return &profileStore{db: db}
}

const profileColumns = `
	id, display_name, age, gender, location_lat, location_lon, interests,
	height_cm, smoking, drinking, education, looking_for, children,
	verified, is_vip, has_photo, is_active, last_active_at, created_at
`

func scanProfile(row sqlx.ColScanner) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.ID, &p.DisplayName, &p.Age, &p.Gender,
		&p.LocationLat, &p.LocationLon, pq.Array(&p.Interests),
		&p.HeightCm, &p.Smoking, &p.Drinking, &p.Education, &p.LookingFor, &p.Children,
		&p.Verified, &p.VIP, &p.HasPhoto, &p.IsActive, &p.LastActiveAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileStore) GetProfile(ctx context.Context, id int64) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(r.db.QueryRowxContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *profileStore) GetProfiles(ctx context.Context, ids []int64) ([]*domain.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE id = ANY($1) AND is_active = true
	`
	rows, err := r.db.QueryxContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *profileStore) ListRecentlyActive(ctx context.Context, limit int) ([]*domain.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE is_active = true
		ORDER BY last_active_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *profileStore) GetBlockList(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	var ids []int64
	query := `
		SELECT blocked_id FROM blocks WHERE blocker_id = $1
		UNION
		SELECT blocker_id FROM blocks WHERE blocked_id = $1
	`
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, err
	}
	blocked := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		blocked[id] = struct{}{}
	}
	return blocked, nil
}

func (r *profileStore) UpdateLocation(ctx context.Context, userID int64, lat, lon float64) error {
	query := `
		UPDATE profiles
		SET location_lat = $1, location_lon = $2, last_active_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, lat, lon, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
