// Package scoring rates how suitable weather is for an outdoor activity.
//
// Nine factor scorers each map one measurement to [0, 1]. ComputeScore
// combines them as a weighted mean scaled to 0–100 with a label and a
// per-factor breakdown. FindBestWindows scans a day of hourly samples for
// runs of consecutive hours at or above a threshold.
//
// Every function here is pure. Missing optional readings fall back to a
// neutral score instead of failing, so no function returns an error.
package scoring
