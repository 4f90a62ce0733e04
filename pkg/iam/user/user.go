package user

import (
	"net/http"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/roles"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/ptrx"
)

// ============================================================================
// User Entity
// ============================================================================

// UserStatus define los posibles estados de un usuario
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusInactive  UserStatus = "INACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User es la entidad que representa a un miembro del portal
// User entity
type User struct {
	ID           kernel.UserID `db:"id" json:"id"`
	Email        string        `db:"email" json:"email"`
	Name         string        `db:"name" json:"name"`
	Role         roles.Role    `db:"role" json:"role"`
	PasswordHash string        `db:"password_hash" json:"-"`
	Picture      *string       `db:"picture" json:"picture,omitempty"`
	Title        *string       `db:"title" json:"title,omitempty"`

	Status      UserStatus `db:"status" json:"status"`
	LastLoginAt *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// IsActive verifica si el usuario está activo
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// CanLogin verifica si el usuario puede iniciar sesión
func (u *User) CanLogin() bool {
	return u.IsActive() && u.Role.Valid()
}

// Suspend suspende un usuario activo
func (u *User) Suspend() error {
	if !u.IsActive() {
		return ErrInvalidStatus().WithDetail("current_status", u.Status)
	}
	u.Status = UserStatusSuspended
	u.UpdatedAt = time.Now()
	return nil
}

// UpdateLastLogin actualiza la fecha del último login
func (u *User) UpdateLastLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// UpdateProfile actualiza la información del perfil
func (u *User) UpdateProfile(name, picture, title string) {
	if name != "" {
		u.Name = name
	}
	if picture != "" {
		u.Picture = ptrx.String(picture)
	}
	if title != "" {
		u.Title = ptrx.String(title)
	}
	u.UpdatedAt = time.Now()
}

// Permissions resuelve la fila de la tabla de permisos para el rol del usuario
func (u *User) Permissions() roles.PermissionSet {
	p, _ := roles.Permissions(u.Role)
	return p
}

// Can verifica una capacidad contra la tabla de permisos
func (u *User) Can(capability roles.Capability) bool {
	return roles.CheckPermission(u.Role, capability)
}

// ============================================================================
// DTOs
// ============================================================================

// UserDetailsDTO contiene información básica de un usuario para otros módulos
type UserDetailsDTO struct {
	ID       kernel.UserID `json:"id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Role     roles.Role    `json:"role"`
	Picture  *string       `json:"picture,omitempty"`
	Title    *string       `json:"title,omitempty"`
	IsActive bool          `json:"is_active"`
}

// ToDTO convierte la entidad User a UserDetailsDTO
func (u *User) ToDTO() UserDetailsDTO {
	return UserDetailsDTO{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role,
		Picture:  u.Picture,
		Title:    u.Title,
		IsActive: u.IsActive(),
	}
}

// CreateUserRequest representa la petición para crear un usuario
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2"`
	Role     string `json:"role" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Title    string `json:"title,omitempty"`
}

// UpdateUserRequest representa la petición para actualizar un usuario
type UpdateUserRequest struct {
	Name   *string     `json:"name,omitempty" validate:"omitempty,min=2"`
	Role   *string     `json:"role,omitempty"`
	Status *UserStatus `json:"status,omitempty"`
	Title  *string     `json:"title,omitempty"`
}

// UserListResponse para listas de usuarios
type UserListResponse struct {
	Users []UserDetailsDTO `json:"users"`
	Total int              `json:"total"`
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("USER")

var (
	CodeUserNotFound      = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Usuario no encontrado")
	CodeUserAlreadyExists = ErrRegistry.Register("ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "El usuario ya existe")
	CodeUserSuspended     = ErrRegistry.Register("SUSPENDED", errx.TypeBusiness, http.StatusForbidden, "Usuario suspendido")
	CodeInvalidStatus     = ErrRegistry.Register("INVALID_STATUS", errx.TypeBusiness, http.StatusBadRequest, "Estado de usuario inválido para esta operación")
)

func ErrUserNotFound() *errx.Error {
	return ErrRegistry.New(CodeUserNotFound)
}

func ErrUserAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeUserAlreadyExists)
}

func ErrUserSuspended() *errx.Error {
	return ErrRegistry.New(CodeUserSuspended)
}

func ErrInvalidStatus() *errx.Error {
	return ErrRegistry.New(CodeInvalidStatus)
}
