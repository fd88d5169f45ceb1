package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailcast/internal/types"
)

func mildSample() types.WeatherSample {
	return types.WeatherSample{Temp: 20, WindSpeed: 6, RainProb: 0, Humidity: 45}
}

func TestComputeScore_DefaultProfile(t *testing.T) {
	got := ComputeScore(mildSample(), types.DefaultProfile())

	// (0.20 + 0.15 + 0.20 + 0.10 + 0.7*0.10 + 0.7*0.05 + 0.7*0.10) / 0.90
	assert.Equal(t, 91.7, got.Score)
	assert.Equal(t, LabelExcellent, got.Label)
	assert.Equal(t, map[string]float64{
		FactorTemp:       100,
		FactorWind:       100,
		FactorRain:       100,
		FactorHumidity:   100,
		FactorUV:         70,
		FactorVisibility: 70,
		FactorAirQuality: 70,
	}, got.Factors)
}

func TestComputeScore_ZeroWeightsFallBack(t *testing.T) {
	profile := types.ActivityProfile{IdealTempMin: 10, IdealTempMax: 25, MaxWindSpeed: 30, MaxRainProbability: 20}

	got := ComputeScore(types.WeatherSample{Temp: -30, WindSpeed: 200, RainProb: 100, Humidity: 100}, profile)

	assert.Equal(t, 50.0, got.Score)
	assert.Equal(t, LabelFair, got.Label)
	require.NotNil(t, got.Factors)
	assert.Empty(t, got.Factors)
}

func TestComputeScore_OmitsZeroWeightFactors(t *testing.T) {
	profile := types.DefaultProfile()
	profile.SwellWeight = 0.3
	profile.UVWeight = 0

	got := ComputeScore(mildSample(), profile)

	assert.Contains(t, got.Factors, FactorSwell)
	assert.NotContains(t, got.Factors, FactorUV)
	assert.NotContains(t, got.Factors, FactorGoldenHour)
	assert.Equal(t, 50.0, got.Factors[FactorSwell], "missing swell scores neutral")
}

func TestComputeScore_SingleFactor(t *testing.T) {
	profile := types.ActivityProfile{RainWeight: 2, MaxRainProbability: 20}

	got := ComputeScore(types.WeatherSample{RainProb: 10}, profile)

	assert.Equal(t, 75.0, got.Score)
	assert.Equal(t, LabelGood, got.Label)
	assert.Equal(t, map[string]float64{FactorRain: 75}, got.Factors)
}

func TestComputeScore_WeightsAreRelative(t *testing.T) {
	sample := types.WeatherSample{Temp: 31, WindSpeed: 25, RainProb: 35, Humidity: 70, UVIndex: types.Float(7)}
	p := types.DefaultProfile()
	scaled := p
	scaled.TempWeight *= 4
	scaled.WindWeight *= 4
	scaled.RainWeight *= 4
	scaled.HumidityWeight *= 4
	scaled.UVWeight *= 4
	scaled.VisibilityWeight *= 4
	scaled.AirQualityWeight *= 4

	assert.Equal(t, ComputeScore(sample, p), ComputeScore(sample, scaled))
}

func TestComputeScore_Deterministic(t *testing.T) {
	sample := types.WeatherSample{
		Temp: 4, WindSpeed: 33, RainProb: 55, Humidity: 88,
		UVIndex: types.Float(1), Visibility: types.Float(3200), AQI: types.Float(47),
		MinutesToGolden: types.Float(25), SwellHeight: types.Float(1.8),
	}
	p := types.DefaultProfile()
	p.GoldenHourWeight = 0.4
	p.SwellWeight = 0.1

	first := ComputeScore(sample, p)
	for range 20 {
		assert.Equal(t, first, ComputeScore(sample, p))
	}
	assert.GreaterOrEqual(t, first.Score, 0.0)
	assert.LessOrEqual(t, first.Score, 100.0)
	assert.Len(t, first.Factors, 9)
}

func TestLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, LabelExcellent},
		{80, LabelExcellent},
		{79.9, LabelGood},
		{65, LabelGood},
		{64.9, LabelFair},
		{50, LabelFair},
		{49.9, LabelPoor},
		{35, LabelPoor},
		{34.9, LabelBad},
		{0, LabelBad},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Label(tt.score), "score=%v", tt.score)
	}
}

func TestRound1(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		// Ties on exact binaries go to even, others follow the stored value.
		{0.25, 0.2},
		{0.75, 0.8},
		{0.35, 0.3},
		{1.15, 1.1},
		{72.55, 72.5},
		{2.5, 2.5},
		{91.66666, 91.7},
		{-0.25, -0.2},
		{100, 100},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, round1(tc.in), "round1(%v)", tc.in)
	}
}
