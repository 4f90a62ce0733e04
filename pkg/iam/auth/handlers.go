package auth

import (
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/config"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/user"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AuthHandlers maneja las rutas de autenticación con Fiber
type AuthHandlers struct {
	tokenService    TokenService
	userRepo        user.UserRepository
	passwordService user.PasswordService
	sessionRepo     SessionRepository
	config          *config.Config
}

// NewAuthHandlers crea un nuevo handler de autenticación
func NewAuthHandlers(
	tokenService TokenService,
	userRepo user.UserRepository,
	passwordService user.PasswordService,
	sessionRepo SessionRepository,
	config *config.Config,
) *AuthHandlers {
	return &AuthHandlers{
		tokenService:    tokenService,
		userRepo:        userRepo,
		passwordService: passwordService,
		sessionRepo:     sessionRepo,
		config:          config,
	}
}

// LoginRequest estructura para login con credenciales
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse respuesta con el token de autenticación
type TokenResponse struct {
	AccessToken string              `json:"access_token"`
	TokenType   string              `json:"token_type"`
	ExpiresIn   int                 `json:"expires_in"`
	User        user.UserDetailsDTO `json:"user"`
}

// RegisterRoutes registers the auth routes on Fiber
func (ah *AuthHandlers) RegisterRoutes(router fiber.Router, middleware *AuthMiddleware) {
	authGroup := router.Group("/auth")

	authGroup.Post("/login", ah.Login)
	authGroup.Post("/logout", middleware.Authenticate(), ah.Logout)
	authGroup.Get("/me", middleware.Authenticate(), ah.GetCurrentUser)
}

// Login autentica con email y contraseña
func (ah *AuthHandlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	u, err := ah.userRepo.FindByEmail(c.Context(), req.Email)
	if err != nil {
		// No distinguir entre usuario inexistente y contraseña incorrecta
		return ah.unauthorized(c)
	}

	if !ah.passwordService.VerifyPassword(u.PasswordHash, req.Password) {
		return ah.unauthorized(c)
	}

	if !u.CanLogin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": ErrUserInactive().Error(),
		})
	}

	token, err := ah.tokenService.GenerateAccessToken(u.ID, u.Role, u.Email, u.Name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	now := time.Now()
	session := Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(ah.config.Auth.Session.ExpirationTime),
	}
	if err := ah.sessionRepo.Store(c.Context(), session); err != nil {
		logx.Errorf("failed to store session for user %s: %v", u.ID.String(), err)
	}

	u.UpdateLastLogin()
	if err := ah.userRepo.Save(c.Context(), *u); err != nil {
		logx.Warnf("failed to record last login for user %s: %v", u.ID.String(), err)
	}

	ah.setTokenCookie(c, token)

	return c.JSON(TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(ah.config.Auth.JWT.AccessTokenTTL.Seconds()),
		User:        u.ToDTO(),
	})
}

// Logout cierra todas las sesiones del usuario actual
func (ah *AuthHandlers) Logout(c *fiber.Ctx) error {
	authContext, ok := GetAuthContext(c)
	if ok {
		if err := ah.sessionRepo.DeleteByUser(c.Context(), authContext.UserID); err != nil {
			logx.Warnf("failed to delete sessions for user %s: %v", authContext.UserID.String(), err)
		}
	}

	ah.clearTokenCookie(c)

	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser devuelve el perfil del usuario autenticado
func (ah *AuthHandlers) GetCurrentUser(c *fiber.Ctx) error {
	authContext, ok := GetAuthContext(c)
	if !ok {
		return ah.unauthorized(c)
	}

	u, err := ah.userRepo.FindByID(c.Context(), authContext.UserID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(u.ToDTO())
}

func (ah *AuthHandlers) unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": ErrInvalidCredentials().Error(),
	})
}

func (ah *AuthHandlers) setTokenCookie(c *fiber.Ctx, token string) {
	cookieCfg := ah.config.Auth.Cookie
	c.Cookie(&fiber.Cookie{
		Name:     cookieCfg.AccessTokenName,
		Value:    token,
		Domain:   cookieCfg.Domain,
		Path:     cookieCfg.Path,
		Secure:   cookieCfg.Secure,
		HTTPOnly: cookieCfg.HTTPOnly,
		SameSite: cookieCfg.SameSite,
		Expires:  time.Now().Add(ah.config.Auth.JWT.AccessTokenTTL),
	})
}

func (ah *AuthHandlers) clearTokenCookie(c *fiber.Ctx) {
	cookieCfg := ah.config.Auth.Cookie
	c.Cookie(&fiber.Cookie{
		Name:     cookieCfg.AccessTokenName,
		Value:    "",
		Domain:   cookieCfg.Domain,
		Path:     cookieCfg.Path,
		Secure:   cookieCfg.Secure,
		HTTPOnly: cookieCfg.HTTPOnly,
		SameSite: cookieCfg.SameSite,
		Expires:  time.Now().Add(-time.Hour),
	})
}
