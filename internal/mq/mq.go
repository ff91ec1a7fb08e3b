package mq

import (
	"context"
	"fmt"

	"github.com/seaportal/apiserver/config"
)

// AttrContentType is the attribute carrying the payload media type.
const AttrContentType = "content-type"

// Backend publishes event payloads to a broker. The event name doubles as
// the routing key or topic suffix.
type Backend interface {
	Publish(ctx context.Context, event string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// MQ wraps a backend with a stable API.
type MQ struct {
	backend Backend
}

// New constructs an MQ wrapper for the provided backend.
func New(backend Backend) *MQ {
	return &MQ{backend: backend}
}

// Publish sends data for the named event and returns the broker message id.
func (m *MQ) Publish(ctx context.Context, event string, data []byte, attrs map[string]string) (string, error) {
	return m.backend.Publish(ctx, event, data, attrs)
}

// Close closes the underlying backend.
func (m *MQ) Close() error {
	return m.backend.Close()
}

// NewFromConfig connects the backend selected by cfg. It returns nil when
// no backend is configured.
func NewFromConfig(ctx context.Context, cfg config.MQConfig) (*MQ, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case config.MQBackendRabbitMQ:
		client, err := NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		return New(client), nil
	case config.MQBackendPubSub:
		client, err := NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, fmt.Errorf("connect pubsub: %w", err)
		}
		return New(client), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
}
