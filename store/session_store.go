package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaliph/qrrapido/controller"
	"github.com/jaliph/qrrapido/utils"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Session is one browser session and the generator state it owns.
type Session struct {
	Token      string
	Controller *controller.Controller
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Factory builds the controller for a new session.
type Factory func() *controller.Controller

// SessionStore manages per-browser generator sessions
type SessionStore struct {
	sessions map[string]*Session // token -> session
	mu       sync.RWMutex
	factory  Factory
	expiry   time.Duration
	now      func() time.Time
}

// NewSessionStore creates a new session store. Sessions expire after expiry
// without use.
func NewSessionStore(factory Factory, expiry time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		factory:  factory,
		expiry:   expiry,
		now:      time.Now,
	}
}

// Create starts a new session with a fresh controller.
func (ss *SessionStore) Create() *Session {
	now := ss.now()
	session := &Session{
		Token:      uuid.NewString(),
		Controller: ss.factory(),
		CreatedAt:  now,
		ExpiresAt:  now.Add(ss.expiry),
	}

	ss.mu.Lock()
	ss.sessions[session.Token] = session
	ss.mu.Unlock()

	utils.L().Debug("Created session", "token", session.Token)
	return session
}

// Get returns the session for token and extends its expiry.
func (ss *SessionStore) Get(token string) (*Session, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	session, exists := ss.sessions[token]
	if !exists {
		return nil, ErrSessionNotFound
	}

	now := ss.now()
	if now.After(session.ExpiresAt) {
		delete(ss.sessions, token)
		utils.L().Debug("Session expired", "token", token)
		return nil, ErrSessionExpired
	}

	session.ExpiresAt = now.Add(ss.expiry)
	return session, nil
}

// GetOrCreate returns the live session for token, or a new one when token is
// empty, unknown or expired. created reports which happened.
func (ss *SessionStore) GetOrCreate(token string) (session *Session, created bool) {
	if token != "" {
		if s, err := ss.Get(token); err == nil {
			return s, false
		}
	}
	return ss.Create(), true
}

// Delete removes a session.
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

// Len returns the number of stored sessions, expired ones included until cleanup.
func (ss *SessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// CleanupExpired removes expired sessions and returns how many were removed.
func (ss *SessionStore) CleanupExpired() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	now := ss.now()
	removed := 0
	for token, session := range ss.sessions {
		if now.After(session.ExpiresAt) {
			delete(ss.sessions, token)
			removed++
		}
	}
	if removed > 0 {
		utils.L().Info("Cleaned up expired sessions", "removed", removed, "remaining", len(ss.sessions))
	}
	return removed
}

// StartCleanup runs CleanupExpired every interval until ctx is done.
func (ss *SessionStore) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ss.CleanupExpired()
			}
		}
	}()
}

// CloseAll drops every session.
func (ss *SessionStore) CloseAll() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions = make(map[string]*Session)
}
