package game

import "math"

// Advance moves the authoritative state forward by one tick of tickMs
// milliseconds, driving the IDLE/STABLE -> WARNING -> SHRINKING -> STABLE
// cycle against the round schedule.
//
// The radius for the upcoming round is committed on WARNING entry; the shrink
// itself only ever fires out of WARNING, so the warning phase is never
// skipped even when a trigger time has already passed by the time the round
// becomes current.
func Advance(s *State, tickMs int64) {
	s.ElapsedMs += tickMs

	if next, ok := s.NextRound(); ok {
		shrinkStart := next.TriggerTime * 60_000
		warningStart := shrinkStart - int64(next.WarningDuration)*1000

		switch s.Phase {
		case PhaseIdle, PhaseStable:
			if s.ElapsedMs >= warningStart {
				s.Phase = PhaseWarning
				s.TargetZone.R = next.Radius
			}
		case PhaseWarning:
			if s.ElapsedMs >= shrinkStart {
				beginScheduledShrink(s, next)
			}
		}

		if s.ElapsedMs < shrinkStart {
			s.SecondsUntilShrink = int(math.Ceil(float64(shrinkStart-s.ElapsedMs) / 1000))
		} else {
			s.SecondsUntilShrink = 0
		}
	} else {
		s.SecondsUntilShrink = 0
	}

	if s.Phase == PhaseShrinking && s.Progress() >= 1 {
		s.ActiveZone = s.TargetZone
		s.Phase = PhaseStable
		s.NextRoundIndex++
	}
}

func beginScheduledShrink(s *State, round RoundConfig) {
	s.BeginShrink(int64(round.Duration) * 1000)
	// The radius always comes from the schedule, even if warning entry was
	// bypassed.
	if s.TargetZone.R != round.Radius {
		s.TargetZone.R = round.Radius
	}
}

// BeginShrink enters SHRINKING at the current elapsed time with the given
// duration. Also used by the manual shrink action.
func (s *State) BeginShrink(durationMs int64) {
	s.ShrinkStartMs = s.ElapsedMs
	s.ShrinkDurationMs = durationMs
	s.Phase = PhaseShrinking
}
