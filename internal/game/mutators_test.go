package game

import "testing"

func TestMovePlayerClampsPerAxis(t *testing.T) {
	s := NewState(2.5, 100)
	s.PlayerPos = Point{X: 0, Y: 5}

	s.MovePlayer(-1, 1)
	if s.PlayerPos != (Point{X: 0, Y: 6}) {
		t.Fatalf("player = %+v, want x clamped, y moved", s.PlayerPos)
	}

	s.PlayerPos = Point{X: GridCols - 1, Y: GridRows - 1}
	s.MovePlayer(1, 1)
	if s.PlayerPos != (Point{X: GridCols - 1, Y: GridRows - 1}) {
		t.Fatalf("player = %+v, want clamp at far corner", s.PlayerPos)
	}
}

func TestSetNextZoneCenterForcesScheduledRadius(t *testing.T) {
	s := NewState(2.5, 100)

	if !s.SetNextZoneCenter(25, 75) {
		t.Fatal("valid center rejected")
	}
	if s.TargetZone != (Zone{X: 25, Y: 75, R: 35}) {
		t.Fatalf("target = %+v, want radius from round 1", s.TargetZone)
	}
}

func TestSetNextZoneCenterRejectedWhileShrinking(t *testing.T) {
	s := NewState(2.5, 100)
	s.Phase = PhaseShrinking
	before := s.TargetZone

	if s.SetNextZoneCenter(25, 75) {
		t.Fatal("center accepted during shrink")
	}
	if s.TargetZone != before {
		t.Fatalf("target changed during shrink: %+v", s.TargetZone)
	}
}

func TestSetNextZoneCenterBounds(t *testing.T) {
	s := NewState(2.5, 100)
	for _, p := range []struct{ x, y float64 }{{-1, 50}, {50, -1}, {101, 50}, {50, 101}} {
		if s.SetNextZoneCenter(p.x, p.y) {
			t.Errorf("out-of-bounds center (%v, %v) accepted", p.x, p.y)
		}
	}
}

func TestSetNextZoneCenterWithExhaustedSchedule(t *testing.T) {
	s := NewState(2.5, 100)
	s.NextRoundIndex = len(s.Schedule)
	s.TargetZone.R = 12

	if !s.SetNextZoneCenter(40, 40) {
		t.Fatal("center rejected with exhausted schedule")
	}
	if s.TargetZone.R != 12 {
		t.Fatalf("radius changed to %v, want kept at 12", s.TargetZone.R)
	}
}

func TestSetTotalTimeKeepsProgress(t *testing.T) {
	s := NewState(2.5, 100)
	s.NextRoundIndex = 2
	s.Phase = PhaseWarning

	if !s.SetTotalTime(4) {
		t.Fatal("valid duration rejected")
	}
	if s.TotalHours != 4 {
		t.Fatalf("total hours = %v, want 4", s.TotalHours)
	}
	if s.Schedule[0].TriggerTime != 48 {
		t.Fatalf("regenerated round 1 trigger = %d, want 48", s.Schedule[0].TriggerTime)
	}
	if s.NextRoundIndex != 2 || s.Phase != PhaseWarning {
		t.Fatalf("round index/phase disturbed: %d %s", s.NextRoundIndex, s.Phase)
	}

	if s.SetTotalTime(0) {
		t.Fatal("zero duration accepted")
	}
}

func TestChestPlacementRules(t *testing.T) {
	s := NewState(2.5, 100)

	id, ok := s.PlaceChest(5, 5, "Healing Cache")
	if !ok || id == "" {
		t.Fatal("valid placement rejected")
	}

	if _, ok := s.PlaceChest(-1, 5, "Off Grid"); ok {
		t.Error("placement outside grid accepted")
	}
	if _, ok := s.PlaceChest(5, GridRows, "Off Grid"); ok {
		t.Error("placement outside grid accepted")
	}
	if _, ok := s.PlaceChest(6, 5, "Too Close"); ok {
		t.Error("placement within minimum spacing accepted")
	}
	if _, ok := s.PlaceChest(5, 5, "Same Cell"); ok {
		t.Error("placement on occupied cell accepted")
	}
	if _, ok := s.PlaceChest(7, 5, "Far Enough"); !ok {
		t.Error("placement at exactly minimum spacing rejected")
	}
	if _, ok := s.PlaceChest(10, 10, "   "); ok {
		t.Error("blank name accepted")
	}
}

func TestChestRenameAndRemove(t *testing.T) {
	s := NewState(2.5, 100)
	id, _ := s.PlaceChest(3, 3, "Old Name")

	if !s.RenameChest(id, "New Name") {
		t.Fatal("rename failed")
	}
	if s.Chests[0].Name != "New Name" {
		t.Fatalf("name = %q, want New Name", s.Chests[0].Name)
	}
	if s.RenameChest(id, "") {
		t.Error("blank rename accepted")
	}
	if s.RenameChest("missing", "X") {
		t.Error("rename of unknown chest reported success")
	}

	if !s.RemoveChest(id) {
		t.Fatal("remove failed")
	}
	if len(s.Chests) != 0 {
		t.Fatalf("chest list = %v, want empty", s.Chests)
	}
	if s.RemoveChest(id) {
		t.Error("double remove reported success")
	}
}
