package authinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/auth"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
	"github.com/redis/go-redis/v9"
)

// RedisSessionRepository implementación en Redis del SessionRepository
type RedisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionRepository crea un nuevo repositorio de sesiones con Redis
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) auth.SessionRepository {
	return &RedisSessionRepository{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func userSessionsKey(userID kernel.UserID) string {
	return fmt.Sprintf("user_sessions:%s", userID.String())
}

// Store almacena una sesión con TTL y la indexa por usuario
func (r *RedisSessionRepository) Store(ctx context.Context, session auth.Session) error {
	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID), jsonData, r.ttl)
	pipe.SAdd(ctx, userSessionsKey(session.UserID), session.ID)
	pipe.Expire(ctx, userSessionsKey(session.UserID), r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session in Redis: %w", err)
	}

	return nil
}

// Find busca una sesión por id
func (r *RedisSessionRepository) Find(ctx context.Context, sessionID string) (*auth.Session, error) {
	jsonData, err := r.client.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, auth.ErrSessionNotFound().WithDetail("session_id", sessionID)
		}
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var session auth.Session
	if err := json.Unmarshal([]byte(jsonData), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// Delete elimina una sesión
func (r *RedisSessionRepository) Delete(ctx context.Context, sessionID string) error {
	session, err := r.Find(ctx, sessionID)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(sessionID))
	pipe.SRem(ctx, userSessionsKey(session.UserID), sessionID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session from Redis: %w", err)
	}

	return nil
}

// DeleteByUser elimina todas las sesiones de un usuario
func (r *RedisSessionRepository) DeleteByUser(ctx context.Context, userID kernel.UserID) error {
	sessionIDs, err := r.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list user sessions from Redis: %w", err)
	}

	pipe := r.client.TxPipeline()
	for _, id := range sessionIDs {
		pipe.Del(ctx, sessionKey(id))
	}
	pipe.Del(ctx, userSessionsKey(userID))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete user sessions from Redis: %w", err)
	}

	return nil
}
