package auth

import (
	"strings"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/roles"
	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware autentica las peticiones via JWT (header Bearer o cookie)
type AuthMiddleware struct {
	tokenService TokenService
	cookieName   string
}

// NewAuthMiddleware crea un nuevo middleware de autenticación
func NewAuthMiddleware(tokenService TokenService, cookieName string) *AuthMiddleware {
	if cookieName == "" {
		cookieName = "access_token"
	}
	return &AuthMiddleware{
		tokenService: tokenService,
		cookieName:   cookieName,
	}
}

// Authenticate valida el token y deja el AuthContext en los locals
func (am *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c, am.cookieName)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": iam.ErrUnauthorized().Error(),
			})
		}

		claims, err := am.tokenService.ValidateAccessToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		authContext := &iam.AuthContext{
			UserID: claims.UserID,
			Role:   claims.Role,
			Email:  claims.Email,
			Name:   claims.Name,
		}

		c.Locals("auth", authContext)
		return c.Next()
	}
}

// RequireCapability corta la petición cuando el rol del viewer no tiene la
// capacidad pedida. Los services vuelven a validar por su cuenta: este
// middleware solo ahorra trabajo, nunca es la única barrera.
func (am *AuthMiddleware) RequireCapability(capability roles.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authContext, ok := GetAuthContext(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": iam.ErrUnauthorized().Error(),
			})
		}

		if err := roles.Require(authContext.Role, capability); err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.Next()
	}
}

func extractToken(c *fiber.Ctx, cookieName string) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
			return parts[1]
		}
	}
	return c.Cookies(cookieName)
}

// GetAuthContext obtiene el AuthContext de los locals de Fiber
func GetAuthContext(c *fiber.Ctx) (*iam.AuthContext, bool) {
	authContext, ok := c.Locals("auth").(*iam.AuthContext)
	if !ok || !authContext.IsValid() {
		return nil, false
	}
	return authContext, true
}
