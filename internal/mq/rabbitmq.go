package mq

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/seaportal/apiserver/config"
)

// RabbitMQClient publishes events to a topic exchange, routed by event name.
type RabbitMQClient struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	durable  bool

	// amqp channels are not safe for concurrent publishing.
	mu sync.Mutex
}

// NewRabbitMQClient dials the broker and declares the events exchange.
func NewRabbitMQClient(cfg config.RabbitMQConfig) (*RabbitMQClient, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}
	if strings.TrimSpace(cfg.Exchange) == "" {
		return nil, errors.New("rabbitmq exchange is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, cfg.Durable, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &RabbitMQClient{
		conn:     conn,
		channel:  ch,
		exchange: cfg.Exchange,
		durable:  cfg.Durable,
	}, nil
}

// Publish sends an event with the event name as routing key. Durable
// exchanges get persistent deliveries.
func (r *RabbitMQClient) Publish(ctx context.Context, event string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(event) == "" {
		return "", errors.New("rabbitmq routing key is required")
	}

	msg := r.publishing(data, attrs)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.channel.PublishWithContext(ctx, r.exchange, event, false, false, msg); err != nil {
		return "", err
	}
	return msg.MessageId, nil
}

// Close closes the underlying channel and connection.
func (r *RabbitMQClient) Close() error {
	if r.channel != nil {
		_ = r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

func (r *RabbitMQClient) publishing(data []byte, attrs map[string]string) amqp.Publishing {
	headers := amqp.Table{}
	for key, value := range attrs {
		headers[key] = value
	}

	contentType := attrs[AttrContentType]
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	mode := amqp.Transient
	if r.durable {
		mode = amqp.Persistent
	}

	return amqp.Publishing{
		ContentType:  contentType,
		DeliveryMode: mode,
		Timestamp:    time.Now(),
		MessageId:    uuid.NewString(),
		Headers:      headers,
		Body:         data,
	}
}
