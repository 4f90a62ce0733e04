package user

import (
	"context"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/roles"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
)

// UserRepository define el contrato para la persistencia de usuarios
type UserRepository interface {
	FindByID(ctx context.Context, id kernel.UserID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	FindByRole(ctx context.Context, role roles.Role) ([]*User, error)
	Save(ctx context.Context, u User) error
	Delete(ctx context.Context, id kernel.UserID) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// PasswordService define el contrato para el manejo de contraseñas
type PasswordService interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hashedPassword, password string) bool
}
