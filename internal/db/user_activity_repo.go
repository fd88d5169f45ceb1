package db

import (
	"context"

	"trailcast/internal/types"
)

// UserActivityRepository provides the user_activities join.
type UserActivityRepository struct {
	db DBTX
}

// NewUserActivityRepository creates a UserActivityRepository.
func NewUserActivityRepository(db DBTX) *UserActivityRepository {
	return &UserActivityRepository{db: db}
}

// ListForUser returns the user's active activities with their overrides,
// primary first, then in catalog order.
func (r *UserActivityRepository) ListForUser(ctx context.Context, userID string) ([]types.UserActivity, error) {
	id, err := ParseUserID(userID)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT ua.id, ua.ideal_temp_min, ua.ideal_temp_max, ua.max_wind_speed,
		        ua.max_rain_probability, ua.is_primary, ua.created_at, `+activityColumns+`
		 FROM user_activities ua
		 JOIN activity_types a ON a.id = ua.activity_type_id
		 WHERE ua.user_id = $1 AND a.is_active
		 ORDER BY ua.is_primary DESC, a.sort_order, a.name`,
		id,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list user activities", err)
	}
	defer rows.Close()

	out := []types.UserActivity{}
	for rows.Next() {
		ua := types.UserActivity{UserID: id.String()}
		o := &ua.Overrides
		targets := append([]any{
			&ua.ID, &o.IdealTempMin, &o.IdealTempMax, &o.MaxWindSpeed,
			&o.MaxRainProbability, &ua.IsPrimary, &ua.CreatedAt,
		}, activityScanTargets(&ua.Activity)...)
		if err := rows.Scan(targets...); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan user activity", err)
		}
		out = append(out, ua)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate user activities", err)
	}
	return out, nil
}
