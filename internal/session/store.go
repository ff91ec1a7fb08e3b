// Package session stores login sessions in Redis and hands them out as signed
// tokens.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seaportal/apiserver/types"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

const keyPrefix = "session:"

// Session is the data kept for one logged-in user.
type Session struct {
	ID          string            `json:"-"`
	User        types.SessionUser `json:"user"`
	IsLocalUser bool              `json:"isLocalUser"`
	Migrated    bool              `json:"migrated"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// Store keeps sessions as JSON values under session:<id>.
type Store struct {
	redis *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{redis: client}
}

func (s *Store) Save(ctx context.Context, sess Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, key(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	data, err := s.redis.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	sess.ID = id
	return sess, nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

func key(id string) string {
	return keyPrefix + id
}
