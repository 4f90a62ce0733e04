package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/config"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/errx"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/roles"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims son los claims decodificados de un token de acceso
type TokenClaims struct {
	UserID    kernel.UserID
	Role      roles.Role
	Email     string
	Name      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService define el contrato para la emisión y validación de tokens
type TokenService interface {
	GenerateAccessToken(userID kernel.UserID, role roles.Role, email, name string) (string, error)
	ValidateAccessToken(tokenString string) (*TokenClaims, error)
}

// JWTService implementación del TokenService usando JWT
type JWTService struct {
	secretKey      []byte
	accessTokenTTL time.Duration
	issuer         string
	audience       []string
}

// NewJWTServiceFromConfig crea una nueva instancia del servicio JWT
func NewJWTServiceFromConfig(cfg *config.JWTConfig) *JWTService {
	return &JWTService{
		secretKey:      []byte(cfg.SecretKey),
		accessTokenTTL: cfg.AccessTokenTTL,
		issuer:         cfg.Issuer,
		audience:       cfg.Audience,
	}
}

// JWTClaims personalizados para JWT
type JWTClaims struct {
	UserID kernel.UserID `json:"user_id"`
	Role   string        `json:"role"`
	Email  string        `json:"email"`
	Name   string        `json:"name"`
	jwt.RegisteredClaims
}

// GenerateAccessToken genera un token de acceso JWT
func (j *JWTService) GenerateAccessToken(userID kernel.UserID, role roles.Role, email, name string) (string, error) {
	now := time.Now()

	jwtClaims := JWTClaims{
		UserID: userID,
		Role:   role.String(),
		Email:  email,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   userID.String(),
			Audience:  j.audience,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTokenTTL)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims)

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", ErrTokenGenerationFailed().WithDetail("error", err.Error())
	}

	return tokenString, nil
}

// ValidateAccessToken valida y decodifica un token de acceso
func (j *JWTService) ValidateAccessToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})

	if err != nil {
		return nil, ErrTokenValidationFailed().WithDetail("error", err.Error())
	}

	if !token.Valid {
		return nil, ErrTokenValidationFailed().WithDetail("error", "token is invalid")
	}

	jwtClaims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return nil, ErrTokenValidationFailed().WithDetail("error", "invalid claims type")
	}

	// El rol viaja como string en el token; un rol desconocido invalida el
	// token completo en lugar de degradar a un rol por defecto.
	role, err := roles.ParseRole(jwtClaims.Role)
	if err != nil {
		return nil, ErrTokenValidationFailed().WithDetail("error", "unknown role in token")
	}

	return &TokenClaims{
		UserID:    jwtClaims.UserID,
		Role:      role,
		Email:     jwtClaims.Email,
		Name:      jwtClaims.Name,
		IssuedAt:  jwtClaims.IssuedAt.Time,
		ExpiresAt: jwtClaims.ExpiresAt.Time,
	}, nil
}

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("AUTH")

var (
	CodeInvalidCredentials    = ErrRegistry.Register("INVALID_CREDENTIALS", errx.TypeAuthentication, http.StatusUnauthorized, "Invalid email or password")
	CodeTokenGenerationFailed = ErrRegistry.Register("TOKEN_GENERATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to generate access token")
	CodeTokenValidationFailed = ErrRegistry.Register("TOKEN_VALIDATION_FAILED", errx.TypeAuthentication, http.StatusUnauthorized, "Invalid or expired token")
	CodeSessionNotFound       = ErrRegistry.Register("SESSION_NOT_FOUND", errx.TypeAuthentication, http.StatusUnauthorized, "Session not found or expired")
	CodeUserInactive          = ErrRegistry.Register("USER_INACTIVE", errx.TypeAuthorization, http.StatusForbidden, "User account is not active")
)

func ErrInvalidCredentials() *errx.Error {
	return ErrRegistry.New(CodeInvalidCredentials)
}

func ErrTokenGenerationFailed() *errx.Error {
	return ErrRegistry.New(CodeTokenGenerationFailed)
}

func ErrTokenValidationFailed() *errx.Error {
	return ErrRegistry.New(CodeTokenValidationFailed)
}

func ErrSessionNotFound() *errx.Error {
	return ErrRegistry.New(CodeSessionNotFound)
}

func ErrUserInactive() *errx.Error {
	return ErrRegistry.New(CodeUserInactive)
}
