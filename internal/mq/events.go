package mq

import (
	"context"
	"encoding/json"
	"time"
)

const (
	EventUserMigrated       = "user.migrated"
	EventCredentialRepaired = "user.credential_repaired"
	attrEventName           = "event"
	contentTypeJSON         = "application/json"
)

// UserMigrated is published after a legacy identity is copied locally.
type UserMigrated struct {
	UserID        string    `json:"userId"`
	Email         string    `json:"email"`
	LegacyUserID  string    `json:"legacyUserId"`
	MigrationDate time.Time `json:"migrationDate"`
}

// CredentialRepaired is published after a local password hash is rewritten
// from a legacy-verified password.
type CredentialRepaired struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// EventPublisher publishes JSON events, one channel per event name.
type EventPublisher struct {
	mq *MQ
}

func NewEventPublisher(m *MQ) *EventPublisher {
	return &EventPublisher{mq: m}
}

// Publish encodes payload as JSON and sends it on the event's channel.
func (p *EventPublisher) Publish(ctx context.Context, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = p.mq.Publish(ctx, event, data, map[string]string{
		attrEventName:   event,
		AttrContentType: contentTypeJSON,
	})
	return err
}
