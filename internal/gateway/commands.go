package gateway

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/tabletop-royale/stormengine/internal/game"
)

// ActionSink is the slice of the engine's action surface reachable from the
// DM console. The engine itself enforces authority-only semantics; the sink
// on a presenter is simply nil.
type ActionSink interface {
	ToggleTimer()
	MovePlayer(dx, dy int)
	SetNextZoneCenter(x, y float64)
	StartShrink(durationSeconds int)
	SetTotalTime(hours float64)
	AddChest(x, y int, name string)
	RenameChest(id, name string)
	DeleteChest(id string)
	SetMapImage(url string)
	SetThemeColor(color string)
	SetStormTheme(id string)
	SetQualityTier(tier game.QualityTier)
	ToggleCurtain()
	ResetGame()
}

// command is the wire form of an operator action from the console.
type command struct {
	Action   string  `json:"action"`
	DX       int     `json:"dx,omitempty"`
	DY       int     `json:"dy,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	GridX    int     `json:"grid_x,omitempty"`
	GridY    int     `json:"grid_y,omitempty"`
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name,omitempty"`
	URL      string  `json:"url,omitempty"`
	Color    string  `json:"color,omitempty"`
	Theme    string  `json:"theme,omitempty"`
	Quality  string  `json:"quality,omitempty"`
	Hours    float64 `json:"hours,omitempty"`
	Duration int     `json:"duration,omitempty"`
}

func (h *Hub) handleCommand(c *client, raw []byte) {
	if h.actions == nil {
		return
	}

	var cmd command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		log.Warn().Err(err).Str("client_id", c.id).Msg("ignoring malformed command")
		return
	}

	switch cmd.Action {
	case "toggle_timer":
		h.actions.ToggleTimer()
	case "move_player":
		h.actions.MovePlayer(cmd.DX, cmd.DY)
	case "set_zone_center":
		h.actions.SetNextZoneCenter(cmd.X, cmd.Y)
	case "start_shrink":
		h.actions.StartShrink(cmd.Duration)
	case "set_total_time":
		h.actions.SetTotalTime(cmd.Hours)
	case "add_chest":
		h.actions.AddChest(cmd.GridX, cmd.GridY, cmd.Name)
	case "rename_chest":
		h.actions.RenameChest(cmd.ID, cmd.Name)
	case "delete_chest":
		h.actions.DeleteChest(cmd.ID)
	case "set_map_image":
		h.actions.SetMapImage(cmd.URL)
	case "set_theme_color":
		h.actions.SetThemeColor(cmd.Color)
	case "set_storm_theme":
		h.actions.SetStormTheme(cmd.Theme)
	case "set_quality":
		h.actions.SetQualityTier(game.QualityTier(cmd.Quality))
	case "toggle_curtain":
		h.actions.ToggleCurtain()
	case "reset_game":
		h.actions.ResetGame()
	default:
		log.Warn().Str("action", cmd.Action).Str("client_id", c.id).Msg("unknown command")
	}
}
