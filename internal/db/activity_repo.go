package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"trailcast/internal/types"
)

// ActivityRepository provides read access to the activity_types table.
type ActivityRepository struct {
	db DBTX
}

// NewActivityRepository creates an ActivityRepository.
func NewActivityRepository(db DBTX) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// activityColumns is shared by every activity query so scanActivity stays in
// step with the SELECT list. The alias must be "a".
const activityColumns = `a.id, a.slug, a.name, a.emoji, a.description, a.icon_name, a.is_active, a.sort_order,
	a.temp_weight, a.wind_weight, a.rain_weight, a.humidity_weight, a.uv_weight,
	a.visibility_weight, a.air_quality_weight, a.golden_hour_weight, a.swell_weight,
	a.ideal_temp_min, a.ideal_temp_max, a.max_wind_speed, a.max_rain_probability,
	a.created_at`

func activityScanTargets(a *types.ActivityType) []any {
	p := &a.Profile
	return []any{
		&a.ID, &a.Slug, &a.Name, &a.Emoji, &a.Description, &a.IconName, &a.IsActive, &a.SortOrder,
		&p.TempWeight, &p.WindWeight, &p.RainWeight, &p.HumidityWeight, &p.UVWeight,
		&p.VisibilityWeight, &p.AirQualityWeight, &p.GoldenHourWeight, &p.SwellWeight,
		&p.IdealTempMin, &p.IdealTempMax, &p.MaxWindSpeed, &p.MaxRainProbability,
		&a.CreatedAt,
	}
}

func scanActivity(row pgx.Row) (*types.ActivityType, error) {
	var a types.ActivityType
	if err := row.Scan(activityScanTargets(&a)...); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListActive returns active activities ordered by sort order, then name.
func (r *ActivityRepository) ListActive(ctx context.Context) ([]types.ActivityType, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+activityColumns+`
		 FROM activity_types a
		 WHERE a.is_active
		 ORDER BY a.sort_order, a.name`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list activities", err)
	}
	defer rows.Close()

	activities := []types.ActivityType{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan activity", err)
		}
		activities = append(activities, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate activities", err)
	}
	return activities, nil
}

// GetBySlug returns an active activity. Inactive activities are not found.
func (r *ActivityRepository) GetBySlug(ctx context.Context, slug string) (*types.ActivityType, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+activityColumns+`
		 FROM activity_types a
		 WHERE a.slug = $1 AND a.is_active`,
		slug,
	)
	a, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundActivity, "activity not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve activity", err)
	}
	return a, nil
}
