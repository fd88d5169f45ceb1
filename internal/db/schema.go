package db

import (
	"context"
	"fmt"
)

// schema creates the tables the repositories read. Statements are
// idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS activity_types (
		id                   BIGSERIAL PRIMARY KEY,
		slug                 VARCHAR(60) NOT NULL UNIQUE,
		name                 VARCHAR(60) NOT NULL UNIQUE,
		emoji                VARCHAR(10) NOT NULL,
		description          TEXT NOT NULL DEFAULT '',
		icon_name            VARCHAR(40) NOT NULL DEFAULT 'activity',
		is_active            BOOLEAN NOT NULL DEFAULT TRUE,
		sort_order           INTEGER NOT NULL DEFAULT 0,
		temp_weight          DOUBLE PRECISION NOT NULL DEFAULT 0.20 CHECK (temp_weight >= 0),
		wind_weight          DOUBLE PRECISION NOT NULL DEFAULT 0.15 CHECK (wind_weight >= 0),
		rain_weight          DOUBLE PRECISION NOT NULL DEFAULT 0.20 CHECK (rain_weight >= 0),
		humidity_weight      DOUBLE PRECISION NOT NULL DEFAULT 0.10 CHECK (humidity_weight >= 0),
		uv_weight            DOUBLE PRECISION NOT NULL DEFAULT 0.10 CHECK (uv_weight >= 0),
		visibility_weight    DOUBLE PRECISION NOT NULL DEFAULT 0.05 CHECK (visibility_weight >= 0),
		air_quality_weight   DOUBLE PRECISION NOT NULL DEFAULT 0.10 CHECK (air_quality_weight >= 0),
		golden_hour_weight   DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (golden_hour_weight >= 0),
		swell_weight         DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (swell_weight >= 0),
		ideal_temp_min       DOUBLE PRECISION NOT NULL DEFAULT 10,
		ideal_temp_max       DOUBLE PRECISION NOT NULL DEFAULT 25,
		max_wind_speed       DOUBLE PRECISION NOT NULL DEFAULT 30,
		max_rain_probability DOUBLE PRECISION NOT NULL DEFAULT 20,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id                 UUID PRIMARY KEY,
		username           VARCHAR(150) NOT NULL UNIQUE,
		home_latitude      DOUBLE PRECISION,
		home_longitude     DOUBLE PRECISION,
		home_location_name VARCHAR(200) NOT NULL DEFAULT '',
		use_metric         BOOLEAN NOT NULL DEFAULT TRUE,
		timezone           VARCHAR(63) NOT NULL DEFAULT 'UTC',
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS user_activities (
		id                   BIGSERIAL PRIMARY KEY,
		user_id              UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		activity_type_id     BIGINT NOT NULL REFERENCES activity_types(id) ON DELETE CASCADE,
		ideal_temp_min       DOUBLE PRECISION,
		ideal_temp_max       DOUBLE PRECISION,
		max_wind_speed       DOUBLE PRECISION,
		max_rain_probability DOUBLE PRECISION,
		is_primary           BOOLEAN NOT NULL DEFAULT FALSE,
		created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, activity_type_id)
	)`,
}

// Migrate applies the schema.
func Migrate(ctx context.Context, db DBTX) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

// SeedCatalog inserts the default activities, leaving existing slugs untouched.
func SeedCatalog(ctx context.Context, db DBTX) error {
	for _, a := range DefaultCatalog() {
		p := a.Profile
		_, err := db.Exec(ctx,
			`INSERT INTO activity_types (
				slug, name, emoji, description, icon_name, is_active, sort_order,
				temp_weight, wind_weight, rain_weight, humidity_weight, uv_weight,
				visibility_weight, air_quality_weight, golden_hour_weight, swell_weight,
				ideal_temp_min, ideal_temp_max, max_wind_speed, max_rain_probability
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
			ON CONFLICT (slug) DO NOTHING`,
			a.Slug, a.Name, a.Emoji, a.Description, a.IconName, a.IsActive, a.SortOrder,
			p.TempWeight, p.WindWeight, p.RainWeight, p.HumidityWeight, p.UVWeight,
			p.VisibilityWeight, p.AirQualityWeight, p.GoldenHourWeight, p.SwellWeight,
			p.IdealTempMin, p.IdealTempMax, p.MaxWindSpeed, p.MaxRainProbability,
		)
		if err != nil {
			return fmt.Errorf("seed activity %s: %w", a.Slug, err)
		}
	}
	return nil
}
