package evaluationapi

import (
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/evaluation"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/evaluation/evaluationsrv"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/auth"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

type EvaluationHandlers struct {
	service *evaluationsrv.EvaluationService
}

func NewEvaluationHandlers(service *evaluationsrv.EvaluationService) *EvaluationHandlers {
	return &EvaluationHandlers{service: service}
}

func (h *EvaluationHandlers) RegisterRoutes(router fiber.Router, authMiddleware *auth.AuthMiddleware) {
	evaluations := router.Group("/evaluations", authMiddleware.Authenticate())

	evaluations.Get("/", h.ListEvaluations)
	evaluations.Post("/", h.CreateEvaluation)
	evaluations.Get("/:id", h.GetEvaluation)
	evaluations.Post("/:id/complete", h.CompleteEvaluation)
	evaluations.Delete("/:id", h.DeleteEvaluation)
}

// ListEvaluations returns the viewer's scoped view: records, visible users
// and metrics, all filtered and sanitized per the viewer's role.
func (h *EvaluationHandlers) ListEvaluations(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	view, err := h.service.ListForViewer(c.Context(), authContext)
	if err != nil {
		return err
	}

	return c.JSON(view)
}

func (h *EvaluationHandlers) CreateEvaluation(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req evaluation.CreateEvaluationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := h.service.CreateEvaluation(c.Context(), authContext, req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *EvaluationHandlers) GetEvaluation(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	id := kernel.NewEvaluationID(c.Params("id"))
	record, err := h.service.GetForViewer(c.Context(), authContext, id)
	if err != nil {
		return err
	}

	return c.JSON(record)
}

func (h *EvaluationHandlers) CompleteEvaluation(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req evaluation.CompleteEvaluationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	id := kernel.NewEvaluationID(c.Params("id"))
	completed, err := h.service.CompleteEvaluation(c.Context(), authContext, id, req)
	if err != nil {
		return err
	}

	return c.JSON(completed)
}

func (h *EvaluationHandlers) DeleteEvaluation(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	id := kernel.NewEvaluationID(c.Params("id"))
	if err := h.service.DeleteEvaluation(c.Context(), authContext, id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Evaluation deleted successfully"})
}
