package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"trailcast/internal/types"
)

// UserRepository provides the user profile fields used for scoring.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// ParseUserID validates a user id. Ids are UUIDs.
func ParseUserID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidUserID,
			"user id must be a UUID", err, map[string]any{"user_id": id})
	}
	return parsed, nil
}

// GetByID returns the user with the given id.
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*types.User, error) {
	id, err := ParseUserID(userID)
	if err != nil {
		return nil, err
	}

	var u types.User
	err = r.db.QueryRow(ctx,
		`SELECT u.id, u.username, u.home_latitude, u.home_longitude,
		        u.home_location_name, u.use_metric, u.timezone
		 FROM users u
		 WHERE u.id = $1`,
		id,
	).Scan(&id, &u.Username, &u.HomeLatitude, &u.HomeLongitude, &u.HomeLocationName, &u.UseMetric, &u.Timezone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve user", err)
	}
	u.ID = id.String()
	return &u, nil
}
