package auth

import (
	"context"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
)

// Session es una sesión activa asociada a un token emitido
type Session struct {
	ID        string        `json:"id"`
	UserID    kernel.UserID `json:"user_id"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// IsExpired reporta si la sesión ya venció
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// SessionRepository define el contrato para el almacenamiento de sesiones
type SessionRepository interface {
	Store(ctx context.Context, session Session) error
	Find(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteByUser(ctx context.Context, userID kernel.UserID) error
}
