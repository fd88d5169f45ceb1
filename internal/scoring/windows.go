package scoring

import (
	"sort"

	"trailcast/internal/types"
)

// DefaultThreshold is the minimum hourly score for an hour to join a window.
const DefaultThreshold = 60.0

// missingHour labels an hour whose sample carries no label.
const missingHour = "??"

// HourScore is a scored hour: its display label and its 0–100 score.
type HourScore struct {
	Hour  string  `json:"hour"`
	Score float64 `json:"score"`
}

// ScoreHours scores each hourly sample against the profile, preserving order.
func ScoreHours(hourly []types.WeatherSample, p types.ActivityProfile) []HourScore {
	out := make([]HourScore, len(hourly))
	for i, s := range hourly {
		hour := s.Hour
		if hour == "" {
			hour = missingHour
		}
		out[i] = HourScore{Hour: hour, Score: ComputeScore(s, p).Score}
	}
	return out
}

// FindBestWindows returns the maximal runs of consecutive hours whose score
// is at least threshold, ordered by peak score descending. Windows with equal
// peaks keep their chronological order.
func FindBestWindows(hourly []types.WeatherSample, p types.ActivityProfile, threshold float64) []types.Window {
	return FindWindowsInScores(ScoreHours(hourly, p), threshold)
}

// FindWindowsInScores segments already-scored hours into windows. See
// FindBestWindows.
func FindWindowsInScores(hours []HourScore, threshold float64) []types.Window {
	windows := []types.Window{}

	var (
		open  bool
		start int
		peak  float64
		sum   float64
	)
	closeRun := func(end int) {
		n := float64(end - start + 1)
		windows = append(windows, types.Window{
			Start: hours[start].Hour,
			End:   hours[end].Hour,
			Peak:  peak,
			Avg:   round1(sum / n),
		})
		open = false
	}

	for i, h := range hours {
		if h.Score >= threshold {
			if !open {
				open, start, peak, sum = true, i, h.Score, 0
			}
			sum += h.Score
			if h.Score > peak {
				peak = h.Score
			}
			continue
		}
		if open {
			closeRun(i - 1)
		}
	}
	if open {
		closeRun(len(hours) - 1)
	}

	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].Peak > windows[j].Peak
	})
	return windows
}

// Best returns the top window of a FindBestWindows result, if any.
func Best(windows []types.Window) (types.Window, bool) {
	if len(windows) == 0 {
		return types.Window{}, false
	}
	return windows[0], true
}
