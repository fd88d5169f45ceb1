package scoring

import "math"

// Neutral scores used when an optional reading is unavailable.
const (
	uvFallback         = 0.7
	visibilityFallback = 0.7
	aqiFallback        = 0.7
	goldenFallback     = 0.5
	swellFallback      = 0.5
)

// Temperature is 1 inside [min, max] and decays as a Gaussian of the
// distance past the nearer bound. Comfort drops sharply within a few
// degrees: 0.5 at about 3.3°C out, 0.1 at about 6°C.
func Temperature(temp, idealMin, idealMax float64) float64 {
	if temp >= idealMin && temp <= idealMax {
		return 1.0
	}
	var d float64
	if temp < idealMin {
		d = idealMin - temp
	} else {
		d = temp - idealMax
	}
	return clamp01(math.Exp(-0.065 * d * d))
}

// Wind is flat up to 40% of the limit, falls linearly to 0.5 at the limit,
// then to 0 at twice the limit. A non-positive limit means wind never matters.
func Wind(speed, maxSpeed float64) float64 {
	if maxSpeed <= 0 {
		return 1.0
	}
	r := speed / maxSpeed
	switch {
	case r <= 0.4:
		return 1.0
	case r <= 1.0:
		return clamp01(1.0 - 0.5*(r-0.4)/0.6)
	default:
		return clamp01(0.5 - 0.5*(r-1.0))
	}
}

// Rain falls linearly from 1 to 0.5 at the tolerated probability, then to 0
// at twice it. No chance of rain is always perfect; otherwise a zero
// tolerance scores 0.
func Rain(prob, maxProb float64) float64 {
	if prob <= 0 {
		return 1.0
	}
	if maxProb <= 0 {
		return 0.0
	}
	r := prob / maxProb
	if r <= 1.0 {
		return clamp01(1.0 - 0.5*r)
	}
	return clamp01(0.5 - 0.5*(r-1.0))
}

// Humidity peaks at 45% relative humidity.
func Humidity(humidity float64) float64 {
	z := (humidity - 45) / 30
	return clamp01(math.Exp(-0.5 * z * z))
}

// UV is 1 up to index 5, 0.55 at 8, and 0 by about 12.6.
func UV(uv *float64) float64 {
	if uv == nil {
		return uvFallback
	}
	v := *uv
	switch {
	case v <= 5:
		return 1.0
	case v <= 8:
		return clamp01(1.0 - 0.15*(v-5))
	default:
		return clamp01(0.55 - 0.12*(v-8))
	}
}

// Visibility takes metres. 10 km or more is perfect, 1–10 km is linear from
// 0.46 to 1, and below 1 km it falls to 0.
func Visibility(metres *float64) float64 {
	if metres == nil {
		return visibilityFallback
	}
	km := *metres / 1000
	switch {
	case km >= 10:
		return 1.0
	case km >= 1:
		return clamp01(0.4 + 0.6*(km/10))
	default:
		return clamp01(0.4 * km)
	}
}

// AirQuality follows the European AQI bands: good ≤20, fair ≤40,
// moderate ≤60, poor ≤80, and worse beyond, reaching 0 at 120.
func AirQuality(aqi *float64) float64 {
	if aqi == nil {
		return aqiFallback
	}
	a := *aqi
	switch {
	case a <= 20:
		return 1.0
	case a <= 40:
		return clamp01(0.85 + 0.15*(1-(a-20)/20))
	case a <= 60:
		return clamp01(0.55 + 0.30*(1-(a-40)/20))
	case a <= 80:
		return clamp01(0.25 + 0.30*(1-(a-60)/20))
	default:
		return clamp01(0.25 * (1 - (a-80)/40))
	}
}

// GoldenHour takes signed minutes to the next golden window. Zero or
// negative means the window is active.
func GoldenHour(minutes *float64) float64 {
	if minutes == nil {
		return goldenFallback
	}
	m := *minutes
	switch {
	case m <= 0:
		return 1.0
	case m <= 60:
		return clamp01(1.0 - (m/60)*0.7)
	default:
		return 0.3
	}
}

// Swell takes metres. 1–2.5 m is ideal, smaller swell scores its height
// (minimum 0.1), and larger swell decays to a 0.2 floor up to 4 m.
func Swell(height *float64) float64 {
	if height == nil {
		return swellFallback
	}
	h := *height
	switch {
	case h >= 1.0 && h <= 2.5:
		return 1.0
	case h < 1.0:
		return clamp01(math.Max(0.1, h))
	case h <= 4.0:
		return clamp01(math.Max(0.2, 1.0-(h-2.5)/3))
	default:
		return 0.1
	}
}

// clamp01 keeps a factor in [0, 1]. NaN becomes 0.
func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
