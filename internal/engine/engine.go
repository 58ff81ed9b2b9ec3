// Package engine runs the authoritative session loop: it consumes clock
// ticks, applies operator actions, and keeps replicas and durable storage in
// step with every mutation. A replica engine runs the same loop but only ever
// applies snapshots received from the authority.
package engine

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/tabletop-royale/stormengine/internal/bus"
	"github.com/tabletop-royale/stormengine/internal/game"
	"github.com/tabletop-royale/stormengine/internal/store"
)

// Role decides whether this instance owns the state or mirrors it.
type Role string

const (
	RoleAuthority Role = "authority"
	RoleReplica   Role = "replica"
)

// Sampler extracts a dominant theme color from a map image. It is an
// external collaborator invoked asynchronously after a map change.
type Sampler func(ctx context.Context, imageURL string) (string, error)

// DefaultTotalHours is the session length used before the operator sets one.
const DefaultTotalHours = 2.5

const snapshotBuffer = 16
const commandBuffer = 64

// Config wires an Engine. Bus is required; Store, Sampler and Clock are
// optional (Clock defaults to the real clock, a missing Store disables
// persistence, a missing Sampler disables color sampling).
type Config struct {
	Role          Role
	Clock         clockwork.Clock
	Bus           bus.Broadcaster
	Store         store.Store
	TickPeriod    time.Duration
	TotalHours    float64
	Sim           game.SimulatorConfig
	Sampler       Sampler
	FallbackColor string
	Seed          int64
}

// Engine owns the game state for its role. All state access happens on the
// single Run goroutine; actions and reads cross into it over a command
// channel, so the state needs no locking.
type Engine struct {
	role          Role
	clock         clockwork.Clock
	bus           bus.Broadcaster
	store         store.Store
	sampler       Sampler
	fallbackColor string
	tickPeriod    time.Duration
	totalHours    float64
	simCfg        game.SimulatorConfig
	instanceID    string

	ticker *Ticker
	sim    *game.Simulator
	state  *game.State

	cmds         chan func(context.Context)
	snapshots    chan game.State
	lastSavedSec int64
}

// New builds an engine for the given role. A clock-source failure is not
// fatal: the engine logs it and degrades to manual-only operation, where
// scheduled shrinks never fire but every operator action still works.
func New(cfg Config) (*Engine, error) {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.TickPeriod <= 0 {
		cfg.TickPeriod = TickPeriod
	}
	if cfg.TotalHours <= 0 {
		cfg.TotalHours = DefaultTotalHours
	}
	if cfg.FallbackColor == "" {
		cfg.FallbackColor = game.DefaultThemeColor
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = cfg.Clock.Now().UnixNano()
	}

	e := &Engine{
		role:          cfg.Role,
		clock:         cfg.Clock,
		bus:           cfg.Bus,
		store:         cfg.Store,
		sampler:       cfg.Sampler,
		fallbackColor: cfg.FallbackColor,
		tickPeriod:    cfg.TickPeriod,
		totalHours:    cfg.TotalHours,
		simCfg:        cfg.Sim,
		instanceID:    uuid.NewString()[:8],
		state:         game.NewState(cfg.TotalHours, cfg.Sim.InitialCombatants),
		cmds:          make(chan func(context.Context), commandBuffer),
		snapshots:     make(chan game.State, snapshotBuffer),
		lastSavedSec:  -1,
	}

	if cfg.Role == RoleAuthority {
		e.sim = game.NewSimulator(cfg.Sim, rand.New(rand.NewSource(seed)))
		ticker, err := NewTicker(cfg.Clock, cfg.TickPeriod)
		if err != nil {
			log.Error().Err(err).Msg("clock source unavailable; running in manual-only mode")
		} else {
			e.ticker = ticker
		}
	}

	return e, nil
}

// Run drives the engine until ctx is cancelled. It is the only goroutine
// allowed to touch the state.
func (e *Engine) Run(ctx context.Context) error {
	log.Info().
		Str("role", string(e.role)).
		Str("instance", e.instanceID).
		Msg("engine started")

	if e.role == RoleAuthority {
		e.restore(ctx)
		e.broadcast(ctx)
	} else if err := e.bus.Publish(ctx, bus.ResyncRequest()); err != nil {
		log.Warn().Err(err).Msg("resync request failed; waiting for next snapshot")
	}

	var ticks <-chan time.Time
	if e.ticker != nil {
		ticks = e.ticker.Ticks()
		defer e.ticker.Stop()
	}
	msgs := e.bus.Messages()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("instance", e.instanceID).Msg("engine shutting down")
			return nil
		case now := <-ticks:
			e.handleTick(ctx, now)
		case fn := <-e.cmds:
			fn(ctx)
		case env, ok := <-msgs:
			if !ok {
				msgs = nil
				continue
			}
			e.handleEnvelope(ctx, env)
		}
	}
}

// Snapshots exposes the local fan-out of committed states, one per mutation,
// for same-process consumers such as the display gateway. Slow consumers
// miss intermediate snapshots, never see stale ones.
func (e *Engine) Snapshots() <-chan game.State { return e.snapshots }

// View returns a copy of the current state, read safely through the run loop.
func (e *Engine) View(ctx context.Context) (game.State, error) {
	reply := make(chan game.State, 1)
	select {
	case e.cmds <- func(context.Context) { reply <- e.state.Clone() }:
	case <-ctx.Done():
		return game.State{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return game.State{}, ctx.Err()
	}
}

func (e *Engine) handleTick(ctx context.Context, now time.Time) {
	if !e.state.Running {
		return
	}
	game.Advance(e.state, e.tickPeriod.Milliseconds())
	e.sim.Advance(e.state, now)
	e.broadcast(ctx)
	e.saveThrottled(ctx)
}

func (e *Engine) handleEnvelope(ctx context.Context, env bus.Envelope) {
	switch e.role {
	case RoleAuthority:
		// The authority reacts to resync requests and nothing else; its
		// own snapshots echo back on the shared subject.
		if env.Type == bus.TypeResyncRequest {
			log.Info().Str("instance", e.instanceID).Msg("replica requested resync")
			e.broadcast(ctx)
		}
	case RoleReplica:
		if env.Type != bus.TypeStateSnapshot {
			return
		}
		var st game.State
		if err := json.Unmarshal(env.Data, &st); err != nil {
			log.Warn().Err(err).Msg("ignoring malformed snapshot")
			return
		}
		e.state = &st
		e.notifySnapshot()
	}
}

// do runs a mutation on the loop goroutine, then broadcasts and persists.
// On a replica every action is a silent no-op.
func (e *Engine) do(fn func(context.Context)) {
	if e.role != RoleAuthority {
		return
	}
	e.cmds <- func(ctx context.Context) {
		fn(ctx)
		e.broadcast(ctx)
		e.save(ctx)
	}
}

func (e *Engine) broadcast(ctx context.Context) {
	env, err := bus.Snapshot(e.state)
	if err != nil {
		log.Error().Err(err).Msg("snapshot encode failed")
		return
	}
	if err := e.bus.Publish(ctx, env); err != nil {
		log.Warn().Err(err).Msg("snapshot broadcast failed")
	}
	e.notifySnapshot()
}

func (e *Engine) notifySnapshot() {
	select {
	case e.snapshots <- e.state.Clone():
	default:
		// Make room by dropping the stalest snapshot.
		select {
		case <-e.snapshots:
		default:
		}
		select {
		case e.snapshots <- e.state.Clone():
		default:
		}
	}
}

func (e *Engine) restore(ctx context.Context) {
	if e.store == nil {
		return
	}
	sess, ok, err := e.store.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("saved session unreadable; starting fresh")
		return
	}
	if !ok {
		log.Debug().Msg("no saved session")
		return
	}
	st := sess.State
	// Resuming must never silently restart the countdown.
	st.Running = false
	e.state = &st
	e.sim.Restore(sess.KillsTriggered, sess.Eliminated)
	log.Info().
		Int64("elapsed_ms", st.ElapsedMs).
		Int("next_round", st.NextRoundIndex).
		Msg("session restored")
}

func (e *Engine) save(ctx context.Context) {
	if e.store == nil {
		return
	}
	sess := store.Session{
		State:          e.state.Clone(),
		KillsTriggered: e.sim.KillsTriggered(),
		Eliminated:     e.sim.Eliminated(),
		SavedAt:        e.clock.Now(),
	}
	if err := e.store.Save(ctx, sess); err != nil {
		log.Warn().Err(err).Msg("session save failed")
	}
	e.lastSavedSec = e.state.ElapsedMs / 1000
}

// saveThrottled persists at most once per elapsed-second boundary, so the
// 100ms tick stream does not translate into a write per tick.
func (e *Engine) saveThrottled(ctx context.Context) {
	if sec := e.state.ElapsedMs / 1000; sec != e.lastSavedSec {
		e.save(ctx)
	}
}
