package usersrv

import (
	"context"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/roles"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/user"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/ptrx"
	"github.com/google/uuid"
)

// UserService proporciona operaciones de negocio para usuarios
type UserService struct {
	userRepo    user.UserRepository
	passwordSvc user.PasswordService
}

// NewUserService crea una nueva instancia del servicio de usuarios
func NewUserService(
	userRepo user.UserRepository,
	passwordSvc user.PasswordService,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
	}
}

// CreateUser crea un nuevo usuario. Solo roles con gestión de usuarios.
func (s *UserService) CreateUser(ctx context.Context, viewer *iam.AuthContext, req user.CreateUserRequest) (*user.User, error) {
	if err := roles.Require(viewer.Role, roles.CapManageUsers); err != nil {
		return nil, err
	}

	role, err := roles.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, errx.Wrap(err, "failed to check email existence", errx.TypeInternal)
	}
	if exists {
		return nil, user.ErrUserAlreadyExists().WithDetail("email", req.Email)
	}

	hash, err := s.passwordSvc.HashPassword(req.Password)
	if err != nil {
		return nil, errx.Wrap(err, "failed to hash password", errx.TypeInternal)
	}

	now := time.Now()
	newUser := &user.User{
		ID:           kernel.NewUserID(uuid.NewString()),
		Email:        req.Email,
		Name:         req.Name,
		Role:         role,
		PasswordHash: hash,
		Status:       user.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.Title != "" {
		newUser.Title = ptrx.String(req.Title)
	}

	if err := s.userRepo.Save(ctx, *newUser); err != nil {
		return nil, err
	}

	return newUser, nil
}

// GetUserByID obtiene un usuario por ID
func (s *UserService) GetUserByID(ctx context.Context, userID kernel.UserID) (*user.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// ListUsers obtiene todos los usuarios del portal
func (s *UserService) ListUsers(ctx context.Context) (*user.UserListResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	dtos := make([]user.UserDetailsDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, u.ToDTO())
	}

	return &user.UserListResponse{
		Users: dtos,
		Total: len(dtos),
	}, nil
}

// UpdateUser actualiza un usuario. Solo roles con gestión de usuarios.
func (s *UserService) UpdateUser(ctx context.Context, viewer *iam.AuthContext, userID kernel.UserID, req user.UpdateUserRequest) (*user.User, error) {
	if err := roles.Require(viewer.Role, roles.CapManageUsers); err != nil {
		return nil, err
	}

	userEntity, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		userEntity.Name = *req.Name
	}
	if req.Role != nil {
		role, err := roles.ParseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		userEntity.Role = role
	}
	if req.Status != nil {
		userEntity.Status = *req.Status
	}
	if req.Title != nil {
		userEntity.Title = req.Title
	}
	userEntity.UpdatedAt = time.Now()

	if err := s.userRepo.Save(ctx, *userEntity); err != nil {
		return nil, err
	}

	return userEntity, nil
}

// DeleteUser elimina un usuario. Solo roles con gestión de usuarios.
func (s *UserService) DeleteUser(ctx context.Context, viewer *iam.AuthContext, userID kernel.UserID) error {
	if err := roles.Require(viewer.Role, roles.CapManageUsers); err != nil {
		return err
	}

	return s.userRepo.Delete(ctx, userID)
}
