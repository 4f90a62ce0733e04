package userapi

import (
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/auth"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/user"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/user/usersrv"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

type UserHandlers struct {
	service *usersrv.UserService
}

func NewUserHandlers(service *usersrv.UserService) *UserHandlers {
	return &UserHandlers{service: service}
}

func (h *UserHandlers) RegisterRoutes(router fiber.Router, authMiddleware *auth.AuthMiddleware) {
	users := router.Group("/users", authMiddleware.Authenticate())

	users.Post("/", h.CreateUser)
	users.Get("/", h.ListUsers)
	users.Get("/:id", h.GetUser)
	users.Put("/:id", h.UpdateUser)
	users.Delete("/:id", h.DeleteUser)
}

func (h *UserHandlers) CreateUser(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req user.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := h.service.CreateUser(c.Context(), authContext, req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created.ToDTO())
}

func (h *UserHandlers) ListUsers(c *fiber.Ctx) error {
	if _, ok := auth.GetAuthContext(c); !ok {
		return iam.ErrUnauthorized()
	}

	response, err := h.service.ListUsers(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(response)
}

func (h *UserHandlers) GetUser(c *fiber.Ctx) error {
	if _, ok := auth.GetAuthContext(c); !ok {
		return iam.ErrUnauthorized()
	}

	id := kernel.NewUserID(c.Params("id"))
	found, err := h.service.GetUserByID(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(found.ToDTO())
}

func (h *UserHandlers) UpdateUser(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req user.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	id := kernel.NewUserID(c.Params("id"))
	updated, err := h.service.UpdateUser(c.Context(), authContext, id, req)
	if err != nil {
		return err
	}

	return c.JSON(updated.ToDTO())
}

func (h *UserHandlers) DeleteUser(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	id := kernel.NewUserID(c.Params("id"))
	if err := h.service.DeleteUser(c.Context(), authContext, id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
