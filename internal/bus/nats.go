package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// DefaultSubject is the well-known channel name shared by every instance on
// the device.
const DefaultSubject = "stormengine.sync"

const inboundBuffer = 64

// NATSBus is a Broadcaster backed by core NATS pub/sub on one fixed subject.
// Core NATS (not JetStream) is a deliberate fit: at-most-once delivery with
// per-publisher ordering is exactly the consistency contract the replication
// protocol assumes.
type NATSBus struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
	msgs    chan Envelope
}

// ConnectNATS dials the local NATS server and subscribes to subject.
func ConnectNATS(url, subject string) (*NATSBus, error) {
	if subject == "" {
		subject = DefaultSubject
	}

	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("sync bus disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("sync bus reconnected")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}

	b := &NATSBus{
		nc:      nc,
		subject: subject,
		msgs:    make(chan Envelope, inboundBuffer),
	}

	sub, err := nc.Subscribe(subject, b.handleInbound)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", subject, err)
	}
	b.sub = sub

	log.Info().Str("subject", subject).Msg("sync bus connected")
	return b, nil
}

func (b *NATSBus) handleInbound(m *nats.Msg) {
	var env Envelope
	if err := json.Unmarshal(m.Data, &env); err != nil {
		// Malformed traffic on the shared subject is ignored; the last
		// good snapshot stands.
		log.Warn().Err(err).Msg("ignoring malformed sync message")
		return
	}
	select {
	case b.msgs <- env:
	default:
		log.Warn().Str("type", string(env.Type)).Msg("sync inbox full, dropping message")
	}
}

// Publish sends an envelope to every listener on the subject.
func (b *NATSBus) Publish(ctx context.Context, env Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal sync envelope: %w", err)
	}
	if err := b.nc.Publish(b.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", b.subject, err)
	}
	return nil
}

// Messages returns the inbound envelope stream.
func (b *NATSBus) Messages() <-chan Envelope { return b.msgs }

// Close drains the subscription and closes the connection.
func (b *NATSBus) Close() error {
	if b.sub != nil {
		_ = b.sub.Unsubscribe()
	}
	b.nc.Close()
	return nil
}
