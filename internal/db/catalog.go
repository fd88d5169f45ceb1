package db

import "trailcast/internal/types"

// DefaultCatalog is the activity catalog seeded into new databases and served
// by the in-memory store.
func DefaultCatalog() []types.ActivityType {
	hiking := types.DefaultProfile()
	hiking.IdealTempMin, hiking.IdealTempMax = 8, 22
	hiking.MaxWindSpeed = 35

	running := types.DefaultProfile()
	running.TempWeight, running.HumidityWeight, running.AirQualityWeight = 0.25, 0.15, 0.15
	running.IdealTempMin, running.IdealTempMax = 5, 18
	running.MaxWindSpeed = 25

	cycling := types.DefaultProfile()
	cycling.WindWeight = 0.25
	cycling.IdealTempMin, cycling.IdealTempMax = 12, 26
	cycling.MaxWindSpeed = 20
	cycling.MaxRainProbability = 15

	surfing := types.ActivityProfile{
		TempWeight:         0.10,
		WindWeight:         0.25,
		RainWeight:         0.05,
		UVWeight:           0.05,
		VisibilityWeight:   0.05,
		SwellWeight:        0.50,
		IdealTempMin:       16,
		IdealTempMax:       30,
		MaxWindSpeed:       20,
		MaxRainProbability: 60,
	}

	photography := types.ActivityProfile{
		TempWeight:         0.05,
		WindWeight:         0.10,
		RainWeight:         0.20,
		VisibilityWeight:   0.25,
		AirQualityWeight:   0.05,
		GoldenHourWeight:   0.35,
		IdealTempMin:       0,
		IdealTempMax:       30,
		MaxWindSpeed:       30,
		MaxRainProbability: 20,
	}

	climbing := types.DefaultProfile()
	climbing.RainWeight, climbing.HumidityWeight = 0.30, 0.15
	climbing.IdealTempMin, climbing.IdealTempMax = 8, 20
	climbing.MaxRainProbability = 10

	return []types.ActivityType{
		{ID: 1, Slug: "hiking", Name: "Hiking", Emoji: "🥾", IconName: "mountain", IsActive: true, SortOrder: 1,
			Description: "Trails and day hikes.", Profile: hiking},
		{ID: 2, Slug: "running", Name: "Running", Emoji: "🏃", IconName: "footprints", IsActive: true, SortOrder: 2,
			Description: "Road and trail running.", Profile: running},
		{ID: 3, Slug: "cycling", Name: "Cycling", Emoji: "🚴", IconName: "bike", IsActive: true, SortOrder: 3,
			Description: "Road and gravel rides.", Profile: cycling},
		{ID: 4, Slug: "surfing", Name: "Surfing", Emoji: "🏄", IconName: "waves", IsActive: true, SortOrder: 4,
			Description: "Swell-driven surf sessions.", Profile: surfing},
		{ID: 5, Slug: "photography", Name: "Photography", Emoji: "📷", IconName: "camera", IsActive: true, SortOrder: 5,
			Description: "Landscape shooting in good light.", Profile: photography},
		{ID: 6, Slug: "climbing", Name: "Climbing", Emoji: "🧗", IconName: "mountain-snow", IsActive: true, SortOrder: 6,
			Description: "Outdoor rock on dry days.", Profile: climbing},
	}
}
