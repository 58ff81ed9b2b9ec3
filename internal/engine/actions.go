package engine

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tabletop-royale/stormengine/internal/game"
)

// The action surface. Every method here is authority-only: called on a
// replica it returns without effect. Invalid arguments are rejected in place
// with no state change and no error surfaced; callers are expected to
// pre-validate against the same bounds.

// ToggleTimer flips the running flag and starts or stops the clock source.
func (e *Engine) ToggleTimer() {
	e.do(func(ctx context.Context) {
		e.state.Running = !e.state.Running
		if e.ticker == nil {
			if e.state.Running {
				log.Warn().Msg("no clock source; timer will not advance")
			}
			return
		}
		if e.state.Running {
			e.ticker.Start()
		} else {
			e.ticker.Stop()
		}
	})
}

// MovePlayer shifts the player marker, clamped to the grid.
func (e *Engine) MovePlayer(dx, dy int) {
	e.do(func(context.Context) {
		e.state.MovePlayer(dx, dy)
	})
}

// SetNextZoneCenter pre-stages the next shrink's center. The radius always
// comes from the schedule, never the caller.
func (e *Engine) SetNextZoneCenter(x, y float64) {
	e.do(func(context.Context) {
		if !e.state.SetNextZoneCenter(x, y) {
			log.Debug().Float64("x", x).Float64("y", y).Msg("zone center rejected")
		}
	})
}

// StartShrink manually begins a shrink of the given duration. Works even in
// manual-only mode.
func (e *Engine) StartShrink(durationSeconds int) {
	if durationSeconds <= 0 {
		return
	}
	e.do(func(context.Context) {
		e.state.BeginShrink(int64(durationSeconds) * 1000)
	})
}

// SetTotalTime regenerates the schedule for a new session length.
func (e *Engine) SetTotalTime(hours float64) {
	e.do(func(context.Context) {
		e.state.SetTotalTime(hours)
	})
}

// AddChest places a named chest on the grid.
func (e *Engine) AddChest(x, y int, name string) {
	e.do(func(context.Context) {
		if _, ok := e.state.PlaceChest(x, y, name); !ok {
			log.Debug().Int("x", x).Int("y", y).Msg("chest placement rejected")
		}
	})
}

// RenameChest updates a chest's display name.
func (e *Engine) RenameChest(id, name string) {
	e.do(func(context.Context) {
		e.state.RenameChest(id, name)
	})
}

// DeleteChest removes a chest.
func (e *Engine) DeleteChest(id string) {
	e.do(func(context.Context) {
		e.state.RemoveChest(id)
	})
}

// SetMapImage swaps the map image and kicks off asynchronous theme-color
// sampling; the sampled color (or the fallback on failure) lands as its own
// follow-up mutation.
func (e *Engine) SetMapImage(url string) {
	e.do(func(ctx context.Context) {
		e.state.Visuals.MapImage = url
		if e.sampler == nil || url == "" {
			return
		}
		go e.sampleThemeColor(ctx, url)
	})
}

func (e *Engine) sampleThemeColor(ctx context.Context, url string) {
	color, err := e.sampler(ctx, url)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("color sampling failed; using fallback")
		color = e.fallbackColor
	}
	e.SetThemeColor(color)
}

// SetThemeColor sets the presentation accent color.
func (e *Engine) SetThemeColor(color string) {
	if strings.TrimSpace(color) == "" {
		return
	}
	e.do(func(context.Context) {
		e.state.Visuals.ThemeColor = color
	})
}

// SetStormTheme selects the storm visual theme.
func (e *Engine) SetStormTheme(id string) {
	if strings.TrimSpace(id) == "" {
		return
	}
	e.do(func(context.Context) {
		e.state.Visuals.StormTheme = id
	})
}

// SetQualityTier changes the rendering quality tier.
func (e *Engine) SetQualityTier(tier game.QualityTier) {
	if !tier.Valid() {
		return
	}
	e.do(func(context.Context) {
		e.state.Visuals.Quality = tier
	})
}

// ToggleCurtain flips the presenter curtain.
func (e *Engine) ToggleCurtain() {
	e.do(func(context.Context) {
		e.state.Visuals.CurtainDown = !e.state.Visuals.CurtainDown
	})
}

// ResetGame stops the clock, wipes persisted state and returns every field
// to its default, without a process restart. Unlike other actions it does
// not re-persist afterwards: the cleared slot stays empty until the next
// mutation.
func (e *Engine) ResetGame() {
	if e.role != RoleAuthority {
		return
	}
	e.cmds <- func(ctx context.Context) {
		if e.ticker != nil {
			e.ticker.Stop()
		}
		e.state = game.NewState(e.totalHours, e.simCfg.InitialCombatants)
		e.sim.Reset()
		e.lastSavedSec = -1
		if e.store != nil {
			if err := e.store.Clear(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to clear persisted session")
			}
		}
		e.broadcast(ctx)
	}
}
