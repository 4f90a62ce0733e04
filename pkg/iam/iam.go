package iam

import (
	"net/http"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/roles"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
)

// ============================================================================
// AuthContext
// ============================================================================

// AuthContext is the authenticated identity a handler passes into the core.
// The engines never read ambient session state; the viewer always arrives
// explicitly through this value.
type AuthContext struct {
	UserID kernel.UserID `json:"user_id"`
	Role   roles.Role    `json:"role"`
	Email  string        `json:"email"`
	Name   string        `json:"name"`
}

// IsValid reports whether the context identifies a real viewer
func (a *AuthContext) IsValid() bool {
	return a != nil && !a.UserID.IsZero() && a.Role.Valid()
}

// Can is a convenience passthrough to the permission table
func (a *AuthContext) Can(capability roles.Capability) bool {
	return roles.CheckPermission(a.Role, capability)
}

// ============================================================================
// Error Registry - shared IAM errors
// ============================================================================

var ErrRegistry = errx.NewRegistry("IAM")

var (
	CodeUnauthorized = ErrRegistry.Register("UNAUTHORIZED", errx.TypeAuthentication, http.StatusUnauthorized, "Authentication required")
)

func ErrUnauthorized() *errx.Error {
	return ErrRegistry.New(CodeUnauthorized)
}
