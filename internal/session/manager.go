package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/seaportal/apiserver/internal/services"
)

const DefaultTTL = 24 * time.Hour

// Manager issues, resolves and revokes sessions.
type Manager struct {
	store  *Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store *Store, secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue stores a new session for a successful login and returns its token.
func (m *Manager) Issue(ctx context.Context, result services.LoginResult) (string, Session, error) {
	now := m.now()
	sess := Session{
		ID:          uuid.NewString(),
		User:        result.User,
		IsLocalUser: result.IsLocalUser,
		Migrated:    result.Migrated,
		CreatedAt:   now.UTC(),
	}
	if err := m.store.Save(ctx, sess, m.ttl); err != nil {
		return "", Session{}, err
	}

	token, err := issueToken(sess.User.ID, sess.ID, m.secret, now, m.ttl)
	if err != nil {
		_ = m.store.Delete(ctx, sess.ID)
		return "", Session{}, err
	}
	return token, sess, nil
}

// Resolve returns the live session a token refers to.
func (m *Manager) Resolve(ctx context.Context, token string) (Session, error) {
	subject, sessionID, err := parseToken(token, m.secret)
	if err != nil {
		return Session{}, err
	}

	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if sess.User.ID != subject {
		return Session{}, ErrInvalidToken
	}
	return sess, nil
}

// Revoke deletes the session behind token. Tokens that no longer resolve are
// ignored.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	_, sessionID, err := parseToken(token, m.secret)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil
		}
		return err
	}
	return m.store.Delete(ctx, sessionID)
}
