package forecasts

import (
	"sort"
	"time"
)

// goldenLength is the length of the morning and evening golden windows.
const goldenLength = time.Hour

type goldenWindow struct {
	start, end time.Time
}

// goldenWindows builds the windows for each day that has a parseable sunrise
// or sunset: [sunrise, sunrise+1h] and [sunset-1h, sunset]. The result is
// ordered by start.
func goldenWindows(sunrises, sunsets []time.Time) []goldenWindow {
	out := make([]goldenWindow, 0, len(sunrises)+len(sunsets))
	for _, rise := range sunrises {
		out = append(out, goldenWindow{start: rise, end: rise.Add(goldenLength)})
	}
	for _, set := range sunsets {
		out = append(out, goldenWindow{start: set.Add(-goldenLength), end: set})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start.Before(out[j].start) })
	return out
}

// minutesToGolden returns the signed minutes from t to golden light. Inside
// a window the value is zero or negative (minutes since the window opened).
// Otherwise it is the minutes until the next window opens. It returns nil
// when no window is active or ahead.
func minutesToGolden(t time.Time, windows []goldenWindow) *float64 {
	for _, w := range windows {
		if !t.Before(w.start) && !t.After(w.end) {
			m := 0 - t.Sub(w.start).Minutes()
			return &m
		}
		if w.start.After(t) {
			m := w.start.Sub(t).Minutes()
			return &m
		}
	}
	return nil
}
