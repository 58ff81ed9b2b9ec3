package game

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SimulatorConfig tunes the kill-pacing simulator. Name pools and message
// templates come from configuration so tests can run with small fixed pools.
type SimulatorConfig struct {
	InitialCombatants int
	FinalSurvivors    int
	Names             []string
	Templates         []string
	FeedLimit         int
}

// Templates substitute {attacker} and {victim} tokens.
const (
	attackerToken = "{attacker}"
	victimToken   = "{victim}"
)

const victimResampleLimit = 8

// Simulator drips narrative elimination events so the combatant count lands
// on the survivor floor by roughly session end, independent of zone
// mechanics. At most one elimination fires per tick, which bounds the feed
// update rate even when the session clock jumps.
type Simulator struct {
	cfg            SimulatorConfig
	rng            *rand.Rand
	killsTriggered int
	eliminated     map[string]bool
}

// NewSimulator builds a simulator with the given tuning and random source.
func NewSimulator(cfg SimulatorConfig, rng *rand.Rand) *Simulator {
	return &Simulator{
		cfg:        cfg,
		rng:        rng,
		eliminated: make(map[string]bool),
	}
}

// Advance checks whether an elimination is due at the state's elapsed time
// and, if so, triggers exactly one.
func (m *Simulator) Advance(s *State, now time.Time) {
	if s.RemainingCombatants <= m.cfg.FinalSurvivors {
		return
	}
	deathsNeeded := m.cfg.InitialCombatants - m.cfg.FinalSurvivors
	if deathsNeeded <= 0 || len(m.cfg.Names) == 0 {
		return
	}
	totalMs := s.TotalHours * 3_600_000
	if totalMs <= 0 {
		return
	}
	msPerDeath := totalMs / float64(deathsNeeded)
	if m.killsTriggered >= int(float64(s.ElapsedMs)/msPerDeath) {
		return
	}

	victim, ok := m.pickVictim()
	if !ok {
		return
	}
	attacker := m.cfg.Names[m.rng.Intn(len(m.cfg.Names))]
	for i := 0; i < victimResampleLimit && attacker == victim; i++ {
		if len(m.aliveNames()) <= 1 {
			break
		}
		victim, _ = m.pickVictim()
	}

	msg := m.renderMessage(attacker, victim)
	s.Feed = append([]FeedEvent{{
		ID:        uuid.NewString(),
		Message:   msg,
		Timestamp: now.UTC(),
	}}, s.Feed...)
	if limit := m.cfg.FeedLimit; limit > 0 && len(s.Feed) > limit {
		s.Feed = s.Feed[:limit]
	}

	s.RemainingCombatants--
	m.killsTriggered++
	m.eliminated[victim] = true
}

func (m *Simulator) aliveNames() []string {
	alive := make([]string, 0, len(m.cfg.Names))
	for _, n := range m.cfg.Names {
		if !m.eliminated[n] {
			alive = append(alive, n)
		}
	}
	return alive
}

func (m *Simulator) pickVictim() (string, bool) {
	alive := m.aliveNames()
	if len(alive) == 0 {
		return "", false
	}
	return alive[m.rng.Intn(len(alive))], true
}

func (m *Simulator) renderMessage(attacker, victim string) string {
	tmpl := "{attacker} eliminated {victim}"
	if len(m.cfg.Templates) > 0 {
		tmpl = m.cfg.Templates[m.rng.Intn(len(m.cfg.Templates))]
	}
	msg := strings.ReplaceAll(tmpl, attackerToken, attacker)
	return strings.ReplaceAll(msg, victimToken, victim)
}

// KillsTriggered is the number of eliminations fired so far.
func (m *Simulator) KillsTriggered() int { return m.killsTriggered }

// Eliminated returns the victims removed from the pool, for persistence.
func (m *Simulator) Eliminated() []string {
	out := make([]string, 0, len(m.eliminated))
	for _, n := range m.cfg.Names {
		if m.eliminated[n] {
			out = append(out, n)
		}
	}
	return out
}

// Restore reloads the simulator's private bookkeeping from a saved session.
func (m *Simulator) Restore(killsTriggered int, eliminated []string) {
	m.killsTriggered = killsTriggered
	m.eliminated = make(map[string]bool, len(eliminated))
	for _, n := range eliminated {
		m.eliminated[n] = true
	}
}

// Reset clears all bookkeeping, for the reset action.
func (m *Simulator) Reset() {
	m.killsTriggered = 0
	m.eliminated = make(map[string]bool)
}
