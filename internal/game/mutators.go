package game

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// MovePlayer shifts the player marker by (dx, dy), clamping each axis to the
// grid independently so sliding along an edge still works.
func (s *State) MovePlayer(dx, dy int) {
	if nx := s.PlayerPos.X + dx; nx >= 0 && nx < GridCols {
		s.PlayerPos.X = nx
	}
	if ny := s.PlayerPos.Y + dy; ny >= 0 && ny < GridRows {
		s.PlayerPos.Y = ny
	}
}

// SetNextZoneCenter pre-stages the target zone center for the upcoming
// round. The radius is never operator-controlled: it is taken from the next
// scheduled round, or left untouched once the schedule is exhausted. Rejected
// while a shrink is in progress.
func (s *State) SetNextZoneCenter(x, y float64) bool {
	if s.Phase == PhaseShrinking {
		return false
	}
	if x < 0 || x > 100 || y < 0 || y > 100 {
		return false
	}
	r := s.TargetZone.R
	if next, ok := s.NextRound(); ok {
		r = next.Radius
	}
	s.TargetZone = Zone{X: x, Y: y, R: r}
	return true
}

// SetTotalTime regenerates the round schedule for a new session length. The
// round index, phase and in-progress zone state are deliberately left alone;
// changing the duration mid-session is the operator's risk.
func (s *State) SetTotalTime(hours float64) bool {
	if hours <= 0 {
		return false
	}
	s.TotalHours = hours
	s.Schedule = GenerateSchedule(hours)
	return true
}

// PlaceChest adds a named chest at a grid cell. Placement is rejected
// outside the grid or within MinChestSpacing of an existing chest. Returns
// the new chest's id.
func (s *State) PlaceChest(x, y int, name string) (string, bool) {
	if x < 0 || x >= GridCols || y < 0 || y >= GridRows {
		return "", false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	for _, c := range s.Chests {
		if math.Hypot(float64(c.X-x), float64(c.Y-y)) < MinChestSpacing {
			return "", false
		}
	}
	id := uuid.NewString()
	s.Chests = append(s.Chests, Chest{ID: id, X: x, Y: y, Name: name})
	return id, true
}

// RenameChest updates a chest's display name.
func (s *State) RenameChest(id, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for i := range s.Chests {
		if s.Chests[i].ID == id {
			s.Chests[i].Name = name
			return true
		}
	}
	return false
}

// RemoveChest deletes a chest by id.
func (s *State) RemoveChest(id string) bool {
	for i := range s.Chests {
		if s.Chests[i].ID == id {
			s.Chests = append(s.Chests[:i], s.Chests[i+1:]...)
			return true
		}
	}
	return false
}
