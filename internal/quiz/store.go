package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ErrSessionNotFound is returned for unknown or discarded session ids.
var ErrSessionNotFound = errors.New("session not found")

const defaultSessionTTL = 30 * 24 * time.Hour

// SessionStore keeps one self-contained JSON document per session in Redis.
type SessionStore struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{
		redis:  client,
		ttl:    ttl,
		logger: logger.With().Str("component", "session_store").Logger(),
	}
}

func (s *SessionStore) key(id string) string {
	return "quiz:session:" + id
}

// Put writes the full session document.
func (s *SessionStore) Put(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.redis.Set(ctx, s.key(session.ID), data, s.ttl).Err()
}

// Get reads a session. A corrupt record is deleted and reported as not
// found instead of failing the process.
func (s *SessionStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		s.logger.Error().Err(err).Str("session_id", id).Msg("discarding corrupt session record")
		if delErr := s.redis.Del(ctx, s.key(id)).Err(); delErr != nil {
			s.logger.Warn().Err(delErr).Str("session_id", id).Msg("failed to delete corrupt session")
		}
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// Delete removes a session document.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.redis.Del(ctx, s.key(id)).Err()
}
