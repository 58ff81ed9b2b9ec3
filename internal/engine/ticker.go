package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// TickPeriod is the nominal gap between clock-source emissions.
const TickPeriod = 100 * time.Millisecond

const tickBuffer = 64

// Ticker is the clock source: a drift-correcting emitter running in its own
// goroutine, talking to the engine only through its tick channel. If a fire
// lags the expected schedule, the expectation is advanced by the lag and the
// next fire is scheduled sooner, so sustained load produces catch-up ticks
// instead of permanent drift.
type Ticker struct {
	clock  clockwork.Clock
	period time.Duration
	ticks  chan time.Time

	mu      sync.Mutex
	stop    chan struct{}
	running bool
}

// NewTicker builds a stopped ticker. Call Start to begin emitting.
func NewTicker(clock clockwork.Clock, period time.Duration) (*Ticker, error) {
	if clock == nil {
		return nil, fmt.Errorf("ticker requires a clock")
	}
	if period <= 0 {
		return nil, fmt.Errorf("ticker period must be positive, got %v", period)
	}
	return &Ticker{
		clock:  clock,
		period: period,
		ticks:  make(chan time.Time, tickBuffer),
	}, nil
}

// Ticks is the emission channel. A stalled consumer accumulates a backlog up
// to the buffer size; further ticks are dropped with a warning.
func (t *Ticker) Ticks() <-chan time.Time { return t.ticks }

// Start begins emission. Starting a running ticker is a no-op.
func (t *Ticker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}
	t.stop = make(chan struct{})
	t.running = true
	go t.run(t.stop)
}

// Stop halts emission. Stopping a stopped ticker is a no-op.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	close(t.stop)
	t.running = false
}

func (t *Ticker) run(stop chan struct{}) {
	expected := t.clock.Now().Add(t.period)
	timer := t.clock.NewTimer(t.period)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-timer.Chan():
			select {
			case t.ticks <- now:
			default:
				log.Warn().Msg("tick backlog full, dropping tick")
			}

			var wait time.Duration
			expected, wait = nextFire(now, expected, t.period)
			timer.Reset(wait)
		}
	}
}

// nextFire advances the expected-fire schedule past a fire observed at now.
// Any lag behind the expectation is absorbed into the expectation and
// subtracted from the next wait, producing catch-up ticks under load.
func nextFire(now, expected time.Time, period time.Duration) (time.Time, time.Duration) {
	lag := now.Sub(expected)
	if lag < 0 {
		lag = 0
	}
	wait := period - lag
	if wait < 0 {
		wait = 0
	}
	return expected.Add(lag + period), wait
}
