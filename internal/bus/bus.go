// Package bus carries replication traffic between the authority and its
// replicas over a single shared broadcast channel. Delivery is fire and
// forget: no acks, no retries, and every snapshot is a complete state, so a
// dropped or late message is corrected by the next one.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
)

// MessageType tags a replication envelope.
type MessageType string

const (
	// TypeResyncRequest is sent once by a replica at startup to ask the
	// authority for an immediate snapshot.
	TypeResyncRequest MessageType = "RESYNC_REQUEST"
	// TypeStateSnapshot carries the full, self-contained game state.
	TypeStateSnapshot MessageType = "STATE_SNAPSHOT"
)

// Envelope is the wire form of every replication message.
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Broadcaster is the capability the engine needs from the channel. Publish
// must never block on slow receivers; Messages delivers inbound traffic in
// send order per publisher.
type Broadcaster interface {
	Publish(ctx context.Context, env Envelope) error
	Messages() <-chan Envelope
	Close() error
}

// Snapshot wraps a marshalled state into a snapshot envelope.
func Snapshot(payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal snapshot: %w", err)
	}
	return Envelope{Type: TypeStateSnapshot, Data: data}, nil
}

// ResyncRequest builds the replica startup handshake message.
func ResyncRequest() Envelope {
	return Envelope{Type: TypeResyncRequest}
}
