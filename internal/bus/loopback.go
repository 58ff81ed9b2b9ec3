package bus

import (
	"context"
	"sync"
)

// Loopback is an in-process Broadcaster hub for tests and single-process
// setups. Like the NATS bus, publishers receive their own messages.
type Loopback struct {
	mu        sync.Mutex
	endpoints []*LoopbackEndpoint
}

// NewLoopback creates an empty hub.
func NewLoopback() *Loopback {
	return &Loopback{}
}

// Endpoint attaches a new participant to the hub.
func (l *Loopback) Endpoint() *LoopbackEndpoint {
	l.mu.Lock()
	defer l.mu.Unlock()
	ep := &LoopbackEndpoint{
		hub:  l,
		msgs: make(chan Envelope, inboundBuffer),
	}
	l.endpoints = append(l.endpoints, ep)
	return ep
}

func (l *Loopback) broadcast(env Envelope) {
	l.mu.Lock()
	eps := append([]*LoopbackEndpoint(nil), l.endpoints...)
	l.mu.Unlock()
	for _, ep := range eps {
		if ep.closed() {
			continue
		}
		select {
		case ep.msgs <- env:
		default:
		}
	}
}

// LoopbackEndpoint is one participant's view of the hub.
type LoopbackEndpoint struct {
	hub    *Loopback
	msgs   chan Envelope
	mu     sync.Mutex
	isShut bool
}

// Publish delivers env to every endpoint on the hub, including this one.
func (e *LoopbackEndpoint) Publish(ctx context.Context, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.hub.broadcast(env)
	return nil
}

// Messages returns the endpoint's inbound stream.
func (e *LoopbackEndpoint) Messages() <-chan Envelope { return e.msgs }

// Close detaches the endpoint from the hub.
func (e *LoopbackEndpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.isShut = true
	return nil
}

func (e *LoopbackEndpoint) closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isShut
}
