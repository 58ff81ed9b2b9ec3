package game

import "testing"

const tickMs = 100

// shortSchedule is a compact session for fast tick-by-tick simulation.
func shortSchedule() []RoundConfig {
	return []RoundConfig{
		{ID: 1, TriggerTime: 1, Radius: 35, Duration: 10, WarningDuration: 30, Label: "Round 1"},
		{ID: 2, TriggerTime: 2, Radius: 20, Duration: 10, WarningDuration: 30, Label: "Round 2"},
	}
}

func TestWarningEntryAndShrinkExecution(t *testing.T) {
	s := NewState(2.5, 100)

	// One tick before the warning window for round 1.
	s.ElapsedMs = 1_620_000 - tickMs
	Advance(s, tickMs)
	if s.Phase != PhaseWarning {
		t.Fatalf("phase at warning boundary = %s, want WARNING", s.Phase)
	}
	if s.TargetZone.R != 35 {
		t.Fatalf("target radius after warning entry = %v, want 35", s.TargetZone.R)
	}
	if s.SecondsUntilShrink != 180 {
		t.Fatalf("seconds until shrink = %d, want 180", s.SecondsUntilShrink)
	}

	// Jump to one tick before the trigger.
	s.ElapsedMs = 1_800_000 - tickMs
	Advance(s, tickMs)
	if s.Phase != PhaseShrinking {
		t.Fatalf("phase at trigger = %s, want SHRINKING", s.Phase)
	}
	if s.ShrinkStartMs != 1_800_000 {
		t.Fatalf("shrink start = %d, want 1800000", s.ShrinkStartMs)
	}
	if s.ShrinkDurationMs != 720_000 {
		t.Fatalf("shrink duration = %d, want 720000", s.ShrinkDurationMs)
	}
}

func TestPhaseOrderingThroughFullCycle(t *testing.T) {
	s := NewState(2.5, 100)
	s.Schedule = shortSchedule()

	var transitions []Phase
	last := s.Phase
	// Two minutes of ticks covers round 1 end to end.
	for i := 0; i < 2*60*1000/tickMs; i++ {
		Advance(s, tickMs)
		if s.Phase != last {
			transitions = append(transitions, s.Phase)
			last = s.Phase
		}
	}

	want := []Phase{PhaseWarning, PhaseShrinking, PhaseStable, PhaseWarning, PhaseShrinking}
	if len(transitions) < len(want) {
		t.Fatalf("transitions = %v, want prefix %v", transitions, want)
	}
	for i, p := range want {
		if transitions[i] != p {
			t.Fatalf("transition %d = %s, want %s (full: %v)", i, transitions[i], p, transitions)
		}
	}
}

func TestShrinkCommitAdvancesRoundIndex(t *testing.T) {
	s := NewState(2.5, 100)
	s.Schedule = shortSchedule()
	s.Phase = PhaseShrinking
	s.TargetZone = Zone{X: 40, Y: 60, R: 35}
	s.ShrinkStartMs = 0
	s.ShrinkDurationMs = 1000
	s.ElapsedMs = 1000 - tickMs

	Advance(s, tickMs)
	if s.Phase != PhaseStable {
		t.Fatalf("phase after commit = %s, want STABLE", s.Phase)
	}
	if s.ActiveZone != (Zone{X: 40, Y: 60, R: 35}) {
		t.Fatalf("active zone after commit = %+v, want target copy", s.ActiveZone)
	}
	if s.NextRoundIndex != 1 {
		t.Fatalf("next round index = %d, want 1", s.NextRoundIndex)
	}
}

func TestRoundIndexNeverDecreases(t *testing.T) {
	s := NewState(2.5, 100)
	s.Schedule = shortSchedule()

	lastIndex := s.NextRoundIndex
	for i := 0; i < 3*60*1000/tickMs; i++ {
		Advance(s, tickMs)
		if s.NextRoundIndex < lastIndex {
			t.Fatalf("round index decreased from %d to %d at tick %d", lastIndex, s.NextRoundIndex, i)
		}
		lastIndex = s.NextRoundIndex
	}
	if lastIndex != len(s.Schedule) {
		t.Fatalf("final round index = %d, want %d", lastIndex, len(s.Schedule))
	}
}

func TestExhaustedScheduleStaysStable(t *testing.T) {
	s := NewState(2.5, 100)
	s.Schedule = shortSchedule()
	s.Phase = PhaseStable
	s.NextRoundIndex = len(s.Schedule)
	s.ElapsedMs = 10 * 60 * 1000

	for i := 0; i < 100; i++ {
		Advance(s, tickMs)
	}
	if s.Phase != PhaseStable {
		t.Fatalf("phase with exhausted schedule = %s, want STABLE", s.Phase)
	}
	if s.NextRoundIndex != len(s.Schedule) {
		t.Fatalf("round index moved past schedule end: %d", s.NextRoundIndex)
	}
}

func TestWarningNeverSkippedWhenTriggerAlreadyPassed(t *testing.T) {
	s := NewState(2.5, 100)
	s.Schedule = shortSchedule()
	// Well past round 1's trigger while still STABLE, as happens when a
	// warning window overlaps the previous shrink's completion.
	s.Phase = PhaseStable
	s.ElapsedMs = 90_000

	Advance(s, tickMs)
	if s.Phase != PhaseWarning {
		t.Fatalf("first tick past trigger = %s, want WARNING", s.Phase)
	}
	Advance(s, tickMs)
	if s.Phase != PhaseShrinking {
		t.Fatalf("second tick past trigger = %s, want SHRINKING", s.Phase)
	}
}
