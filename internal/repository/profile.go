package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/twoofus/server/internal/model"
)

var ErrProfileNotFound = errors.New("profile not found")

type ProfileRepository interface {
	Upsert(ctx context.Context, profile *model.Profile) error
	ByUserID(ctx context.Context, userID string) (*model.Profile, error)
	Locales(ctx context.Context, userIDs []string) (map[string]string, error)
}

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Upsert(ctx context.Context, profile *model.Profile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	query := `
		INSERT INTO user_profiles (user_id, display_name, locale, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = excluded.display_name,
			locale = excluded.locale,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		profile.UserID,
		profile.DisplayName,
		profile.Locale,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	return err
}

func (r *profileRepository) ByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	profile := &model.Profile{}
	err := r.db.GetContext(ctx, profile, `SELECT * FROM user_profiles WHERE user_id = $1`, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Locales returns the stored locale of every user that has a profile.
// Users without one are absent from the map.
func (r *profileRepository) Locales(ctx context.Context, userIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM user_profiles WHERE user_id IN (?)`, userIDs)
	if err != nil {
		return nil, err
	}

	var profiles []*model.Profile
	err = r.db.SelectContext(ctx, &profiles, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.UserID] = p.Locale
	}
	return out, nil
}
