package game

import (
	"math"
	"time"
)

// Grid extent for player movement and chest placement.
const (
	GridCols = 20
	GridRows = 20
)

// MinChestSpacing is the minimum distance, in grid units, between two chests.
const MinChestSpacing = 2.0

// Phase is the current stage of the shrink cycle.
type Phase string

const (
	PhaseIdle      Phase = "IDLE"
	PhaseStable    Phase = "STABLE"
	PhaseWarning   Phase = "WARNING"
	PhaseShrinking Phase = "SHRINKING"
)

// QualityTier controls how many discrete steps the rendered zone moves
// through during a shrink. It only affects derived rendering, never the
// authoritative zones.
type QualityTier string

const (
	QualityLow    QualityTier = "low"
	QualityMedium QualityTier = "medium"
	QualityHigh   QualityTier = "high"
)

// Steps returns the number of interpolation steps for the tier, or 0 for
// continuous interpolation.
func (q QualityTier) Steps() int {
	switch q {
	case QualityLow:
		return 30
	case QualityMedium:
		return 60
	default:
		return 0
	}
}

// Valid reports whether q is a known tier.
func (q QualityTier) Valid() bool {
	return q == QualityLow || q == QualityMedium || q == QualityHigh
}

// Point is a position on the battle grid.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Zone is a circular boundary in 0-100 percentage space.
type Zone struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// Chest is a named point of interest on the grid.
type Chest struct {
	ID   string `json:"id"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Name string `json:"name"`
}

// FeedEvent is one entry in the recent-events feed, newest first.
type FeedEvent struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Visuals holds presentation settings mirrored to the presenter.
type Visuals struct {
	MapImage    string      `json:"map_image"`
	ThemeColor  string      `json:"theme_color"`
	StormTheme  string      `json:"storm_theme"`
	Quality     QualityTier `json:"quality"`
	CurtainDown bool        `json:"curtain_down"`
}

// State is the full authoritative session record. The authority mutates it
// from a single goroutine; replicas replace their copy wholesale on every
// received snapshot.
type State struct {
	ElapsedMs          int64         `json:"elapsed_ms"`
	Running            bool          `json:"running"`
	Phase              Phase         `json:"phase"`
	ShrinkStartMs      int64         `json:"shrink_start_ms"`
	ShrinkDurationMs   int64         `json:"shrink_duration_ms"`
	TotalHours         float64       `json:"total_hours"`
	SecondsUntilShrink int           `json:"seconds_until_shrink"`
	Schedule           []RoundConfig `json:"schedule"`
	NextRoundIndex     int           `json:"next_round_index"`
	ActiveZone         Zone          `json:"active_zone"`
	TargetZone         Zone          `json:"target_zone"`
	PlayerPos          Point         `json:"player_pos"`
	Chests             []Chest       `json:"chests"`
	RemainingCombatants int          `json:"remaining_combatants"`
	Feed               []FeedEvent   `json:"feed"`
	Visuals            Visuals       `json:"visuals"`
}

// Default presentation values applied at session start and on reset.
const (
	DefaultThemeColor = "#4f8fd0"
	DefaultStormTheme = "classic"
)

// NewState builds a fresh session with documented defaults and a schedule
// generated for totalHours.
func NewState(totalHours float64, initialCombatants int) *State {
	return &State{
		Phase:               PhaseIdle,
		ShrinkDurationMs:    30_000,
		TotalHours:          totalHours,
		Schedule:            GenerateSchedule(totalHours),
		ActiveZone:          Zone{X: 50, Y: 50, R: 50},
		TargetZone:          Zone{X: 50, Y: 50, R: 50},
		PlayerPos:           Point{X: 1, Y: 1},
		RemainingCombatants: initialCombatants,
		Visuals: Visuals{
			ThemeColor: DefaultThemeColor,
			StormTheme: DefaultStormTheme,
			Quality:    QualityMedium,
		},
	}
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s *State) Clone() State {
	out := *s
	out.Schedule = append([]RoundConfig(nil), s.Schedule...)
	out.Chests = append([]Chest(nil), s.Chests...)
	out.Feed = append([]FeedEvent(nil), s.Feed...)
	return out
}

// NextRound returns the upcoming round, or ok=false once the schedule is
// exhausted.
func (s *State) NextRound() (RoundConfig, bool) {
	if s.NextRoundIndex < 0 || s.NextRoundIndex >= len(s.Schedule) {
		return RoundConfig{}, false
	}
	return s.Schedule[s.NextRoundIndex], true
}

// Progress is the shrink completion fraction, unclamped. Zero outside the
// SHRINKING phase.
func (s *State) Progress() float64 {
	if s.Phase != PhaseShrinking || s.ShrinkDurationMs <= 0 {
		return 0
	}
	return float64(s.ElapsedMs-s.ShrinkStartMs) / float64(s.ShrinkDurationMs)
}

// RenderedZone derives the zone to draw. While shrinking it interpolates
// between the active and target zones, quantized by the quality tier; the
// authoritative zones are never touched.
func (s *State) RenderedZone() Zone {
	if s.Phase != PhaseShrinking || s.ShrinkDurationMs <= 0 {
		return s.ActiveZone
	}
	p := s.Progress()
	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	if steps := s.Visuals.Quality.Steps(); steps > 0 {
		p = math.Round(p*float64(steps)) / float64(steps)
	}
	return Zone{
		X: s.ActiveZone.X + (s.TargetZone.X-s.ActiveZone.X)*p,
		Y: s.ActiveZone.Y + (s.TargetZone.Y-s.ActiveZone.Y)*p,
		R: s.ActiveZone.R + (s.TargetZone.R-s.ActiveZone.R)*p,
	}
}

// DistanceOutside is how far, in percentage-space units, the player marker
// sits beyond the rendered zone boundary. Zero when inside.
func (s *State) DistanceOutside() float64 {
	z := s.RenderedZone()
	px := (float64(s.PlayerPos.X) + 0.5) / GridCols * 100
	py := (float64(s.PlayerPos.Y) + 0.5) / GridRows * 100
	d := math.Hypot(px-z.X, py-z.Y) - z.R
	if d < 0 {
		return 0
	}
	return d
}
