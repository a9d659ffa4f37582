package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"pillbox/internal/prefs"
)

// PrefKey is the preference-store key the session record is persisted under.
const PrefKey = "auth"

// Store keeps the in-memory session and reconciles it with the persisted
// record. Unlike the theme resolver, persistence failures on Login and
// Logout are returned to the caller: a caller must know when a login did not
// durably succeed.
type Store struct {
	store prefs.Store
	log   *zap.Logger

	mu      sync.RWMutex
	session *Session
}

// NewStore creates a session store over the given preference store. log may
// be nil.
func NewStore(store prefs.Store, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{store: store, log: log}
}

// Restore reads the persisted record once at process start. A corrupt record
// (bad JSON, missing user or token) restores as no session and is deleted so
// the failure does not repeat every launch. A transient read failure also
// restores as no session but leaves the record untouched; the purge is only
// for confirmed corruption.
func (s *Store) Restore(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := s.store.Get(ctx, PrefKey)
	if err != nil {
		if !errors.Is(err, prefs.ErrNotFound) {
			s.log.Warn("session read failed, starting unauthenticated", zap.Error(err))
		}
		return nil, nil
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		s.purgeCorrupt(ctx, err)
		return nil, nil
	}
	if !sess.Valid() {
		s.purgeCorrupt(ctx, errors.New("record missing user or token"))
		return nil, nil
	}

	s.mu.Lock()
	s.session = &sess
	s.mu.Unlock()

	return &sess, nil
}

func (s *Store) purgeCorrupt(ctx context.Context, cause error) {
	s.log.Warn("purging corrupt session record", zap.Error(cause))
	if err := s.store.Delete(ctx, PrefKey); err != nil {
		s.log.Warn("corrupt session purge failed", zap.Error(err))
	}
}

// Login sets the in-memory session immediately, then persists it. The
// persistence error, if any, is returned.
func (s *Store) Login(ctx context.Context, sess Session) error {
	if !sess.Valid() {
		return fmt.Errorf("refusing to store incomplete session")
	}

	s.mu.Lock()
	s.session = &sess
	s.mu.Unlock()

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.store.Set(ctx, PrefKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// Logout clears the in-memory session, then removes the persisted record.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()

	if err := s.store.Delete(ctx, PrefKey); err != nil {
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}
	return nil
}

// Current returns the in-memory session, or nil.
func (s *Store) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// IsAuthenticated reports whether a session is present.
func (s *Store) IsAuthenticated() bool {
	return s.Current() != nil
}
