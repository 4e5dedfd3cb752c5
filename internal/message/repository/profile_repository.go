package repository

import (
	"context"
	"errors"

	"direct_message_service/internal/message/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ProfileRepository definition get user display attributes
type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*domain.UserProfile, error)
}

type profileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository create a ProfileRepository backed by PostgreSQL
func NewProfileRepository(db *pgxpool.Pool) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	row := r.db.QueryRow(ctx,
		"SELECT user_id, name, COALESCE(avatar_url, '') FROM user_profile WHERE user_id = $1", userID)

	var profile domain.UserProfile
	err := row.Scan(&profile.UserID, &profile.Name, &profile.AvatarURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}
