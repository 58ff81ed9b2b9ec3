package game

import "math"

// RoundConfig is one scheduled shrink: trigger offset in minutes from session
// start, target radius in percentage space, shrink duration and pre-trigger
// warning window in seconds.
type RoundConfig struct {
	ID              int     `json:"id"`
	TriggerTime     int64   `json:"trigger_time"`
	Radius          float64 `json:"radius"`
	Duration        int     `json:"duration"`
	WarningDuration int     `json:"warning_duration"`
	Label           string  `json:"label"`
}

// roundSpec expresses a round as fractions of the total session length.
type roundSpec struct {
	triggerPct float64
	warningPct float64
	shrinkPct  float64
	radius     float64
	label      string
}

var roundSpecs = []roundSpec{
	{triggerPct: 0.20, warningPct: 0.02, shrinkPct: 0.08, radius: 35, label: "Round 1"},
	{triggerPct: 0.40, warningPct: 0.02, shrinkPct: 0.06, radius: 20, label: "Round 2"},
	{triggerPct: 0.60, warningPct: 0.02, shrinkPct: 0.05, radius: 10, label: "Round 3"},
	{triggerPct: 0.80, warningPct: 0.02, shrinkPct: 0.04, radius: 1, label: "Final Shrink"},
}

// GenerateSchedule produces the round sequence for a session of totalHours,
// strictly increasing by trigger time. Shrink durations floor at 10s and
// warning windows at 30s so short test sessions stay playable; in sessions
// under a few minutes the floored minute triggers would collide, so each
// trigger is pushed at least one minute past its predecessor.
func GenerateSchedule(totalHours float64) []RoundConfig {
	totalMinutes := totalHours * 60
	totalSeconds := totalHours * 3600

	rounds := make([]RoundConfig, 0, len(roundSpecs))
	prevTrigger := int64(-1)
	for i, spec := range roundSpecs {
		duration := int(math.Floor(totalSeconds * spec.shrinkPct))
		if duration < 10 {
			duration = 10
		}
		warning := int(math.Floor(totalSeconds * spec.warningPct))
		if warning < 30 {
			warning = 30
		}
		trigger := int64(math.Floor(totalMinutes * spec.triggerPct))
		if trigger <= prevTrigger {
			trigger = prevTrigger + 1
		}
		prevTrigger = trigger
		rounds = append(rounds, RoundConfig{
			ID:              i + 1,
			TriggerTime:     trigger,
			Radius:          spec.radius,
			Duration:        duration,
			WarningDuration: warning,
			Label:           spec.label,
		})
	}
	return rounds
}
