// Package events announces machine lifecycle changes on NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/edvin/machines/internal/model"
)

// SubjectPrefix is prepended to the event type to form the subject.
const SubjectPrefix = "machines."

// Conn is the part of a NATS connection the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher sends each event as JSON on machines.<type>. Delivery is fire
// and forget: failures are logged, never returned.
type Publisher struct {
	conn   Conn
	logger zerolog.Logger
}

func NewPublisher(conn Conn, logger zerolog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// Connect dials the NATS server with reconnects enabled.
func Connect(url, name string, logger zerolog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}

func (p *Publisher) Publish(_ context.Context, e model.MachineEvent) {
	data, err := json.Marshal(e)
	if err != nil {
		p.logger.Error().Err(err).Str("type", e.Type).Msg("failed to encode event")
		return
	}
	if err := p.conn.Publish(SubjectPrefix+e.Type, data); err != nil {
		p.logger.Warn().Err(err).Str("type", e.Type).Str("machine", e.MachineID).Msg("failed to publish event")
	}
}

// Noop discards events.
type Noop struct{}

func (Noop) Publish(context.Context, model.MachineEvent) {}
