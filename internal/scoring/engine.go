package scoring

import (
	"strconv"

	"trailcast/internal/types"
)

// Factor names as they appear in a ScoreResult breakdown.
const (
	FactorTemp       = "temp"
	FactorWind       = "wind"
	FactorRain       = "rain"
	FactorHumidity   = "humidity"
	FactorUV         = "uv"
	FactorVisibility = "visibility"
	FactorAirQuality = "air_quality"
	FactorGoldenHour = "golden_hour"
	FactorSwell      = "swell"
)

// Score labels, from best to worst.
const (
	LabelExcellent = "Excellent"
	LabelGood      = "Good"
	LabelFair      = "Fair"
	LabelPoor      = "Poor"
	LabelBad       = "Bad"
)

// neutralScore is returned when every weight is zero.
const neutralScore = 50.0

type factorScore struct {
	name   string
	score  float64
	weight float64
}

func evaluate(s types.WeatherSample, p types.ActivityProfile) [9]factorScore {
	return [9]factorScore{
		{FactorTemp, Temperature(s.Temp, p.IdealTempMin, p.IdealTempMax), p.TempWeight},
		{FactorWind, Wind(s.WindSpeed, p.MaxWindSpeed), p.WindWeight},
		{FactorRain, Rain(s.RainProb, p.MaxRainProbability), p.RainWeight},
		{FactorHumidity, Humidity(s.Humidity), p.HumidityWeight},
		{FactorUV, UV(s.UVIndex), p.UVWeight},
		{FactorVisibility, Visibility(s.Visibility), p.VisibilityWeight},
		{FactorAirQuality, AirQuality(s.AQI), p.AirQualityWeight},
		{FactorGoldenHour, GoldenHour(s.MinutesToGolden), p.GoldenHourWeight},
		{FactorSwell, Swell(s.SwellHeight), p.SwellWeight},
	}
}

// ComputeScore rates a sample against a profile.
//
// The score is the weighted mean of the factor scores scaled to 0–100 and
// rounded to one decimal. Only factors with a positive weight contribute
// and appear in Factors. When no weight is positive the result is a neutral
// 50 "Fair" with an empty breakdown.
func ComputeScore(s types.WeatherSample, p types.ActivityProfile) types.ScoreResult {
	factors := evaluate(s, p)

	var totalWeight, weighted float64
	breakdown := make(map[string]float64, len(factors))
	for _, f := range factors {
		if !(f.weight > 0) {
			continue
		}
		totalWeight += f.weight
		weighted += f.score * f.weight
		breakdown[f.name] = round1(f.score * 100)
	}

	if totalWeight == 0 {
		return types.ScoreResult{Score: neutralScore, Label: Label(neutralScore), Factors: map[string]float64{}}
	}

	score := round1(weighted / totalWeight * 100)
	return types.ScoreResult{
		Score:   score,
		Label:   Label(score),
		Factors: breakdown,
	}
}

// Label maps a 0–100 score to its category. Lower bounds are inclusive.
func Label(score float64) string {
	switch {
	case score >= 80:
		return LabelExcellent
	case score >= 65:
		return LabelGood
	case score >= 50:
		return LabelFair
	case score >= 35:
		return LabelPoor
	default:
		return LabelBad
	}
}

// round1 rounds the exact binary value to one decimal, ties to even.
func round1(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}
