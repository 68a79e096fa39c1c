package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"collegease.app/server/internal/modules/auth/dto"
	"github.com/redis/go-redis/v9"
)

const SessionEventSignedOut = "signed_out"

// SessionChannel is the redis pub/sub channel carrying session-change events
// for one account.
func SessionChannel(userID string) string {
	return fmt.Sprintf("session_events:%s", userID)
}

// SessionStore keeps the set of live sessions in redis so sign-out revokes
// tokens server-side, and publishes session-change events for websocket
// fan-out. A nil redis client degrades to stateless JWT sessions: tokens
// stay valid until expiry and no events are delivered.
type SessionStore struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewSessionStore(redisClient *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{redisClient: redisClient, ttl: ttl}
}

func (s *SessionStore) sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func (s *SessionStore) Create(ctx context.Context, sessionID, userID string) error {
	if s.redisClient == nil {
		return nil
	}
	return s.redisClient.Set(ctx, s.sessionKey(sessionID), userID, s.ttl).Err()
}

// IsActive reports whether the session has not been revoked. Without redis
// there is no revocation list, so every unexpired token counts as active.
func (s *SessionStore) IsActive(ctx context.Context, sessionID string) bool {
	if s.redisClient == nil {
		return true
	}

	exists, err := s.redisClient.Exists(ctx, s.sessionKey(sessionID)).Result()
	if err != nil {
		// Redis being down must not lock every user out.
		return true
	}
	return exists > 0
}

func (s *SessionStore) Revoke(ctx context.Context, sessionID string) error {
	if s.redisClient == nil {
		return nil
	}
	return s.redisClient.Del(ctx, s.sessionKey(sessionID)).Err()
}

func (s *SessionStore) PublishEvent(ctx context.Context, userID string, event dto.SessionEvent) {
	if s.redisClient == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.redisClient.Publish(ctx, SessionChannel(userID), payload)
}
