package candidateapi

import (
	"io"

	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/iam/auth"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/kernel"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/recruitment/candidate"
	"github.com/Katapentakill/Metrics-Hub-V2-MVP-sub004/pkg/recruitment/candidate/candidatesrv"
	"github.com/gofiber/fiber/v2"
)

type CandidateHandlers struct {
	service *candidatesrv.CandidateService
}

func NewCandidateHandlers(service *candidatesrv.CandidateService) *CandidateHandlers {
	return &CandidateHandlers{service: service}
}

func (h *CandidateHandlers) RegisterRoutes(router fiber.Router, authMiddleware *auth.AuthMiddleware) {
	candidates := router.Group("/candidates", authMiddleware.Authenticate())

	candidates.Post("/", h.AddCandidate)
	candidates.Get("/", h.ListCandidates)
	candidates.Get("/board", h.GetBoard)
	candidates.Get("/:id", h.GetCandidate)
	candidates.Post("/:id/move", h.MoveCandidate)
	candidates.Patch("/:id/field", h.UpdateField)
	candidates.Delete("/:id", h.DeleteCandidate)
	candidates.Post("/:id/documents/:kind", h.UploadDocument)
	candidates.Post("/:id/documents/:kind/signed", h.MarkDocumentSigned)
}

func (h *CandidateHandlers) AddCandidate(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req candidate.CreateCandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	created, err := h.service.AddCandidate(c.Context(), authContext, req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *CandidateHandlers) ListCandidates(c *fiber.Ctx) error {
	if _, ok := auth.GetAuthContext(c); !ok {
		return iam.ErrUnauthorized()
	}

	response, err := h.service.ListCandidates(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(response)
}

func (h *CandidateHandlers) GetBoard(c *fiber.Ctx) error {
	if _, ok := auth.GetAuthContext(c); !ok {
		return iam.ErrUnauthorized()
	}

	board, err := h.service.GetBoard(c.Context())
	if err != nil {
		return err
	}

	return c.JSON(board)
}

func (h *CandidateHandlers) GetCandidate(c *fiber.Ctx) error {
	if _, ok := auth.GetAuthContext(c); !ok {
		return iam.ErrUnauthorized()
	}

	id := kernel.NewCandidateID(c.Params("id"))
	found, err := h.service.GetCandidate(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(found)
}

func (h *CandidateHandlers) MoveCandidate(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req candidate.MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	id := kernel.NewCandidateID(c.Params("id"))
	moved, err := h.service.MoveCandidate(c.Context(), authContext, id, req)
	if err != nil {
		return err
	}

	return c.JSON(moved)
}

func (h *CandidateHandlers) UpdateField(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	var req candidate.UpdateFieldRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	id := kernel.NewCandidateID(c.Params("id"))
	updated, err := h.service.UpdateCandidateField(c.Context(), authContext, id, req)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

func (h *CandidateHandlers) DeleteCandidate(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	id := kernel.NewCandidateID(c.Params("id"))
	if err := h.service.DeleteCandidate(c.Context(), authContext, id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Candidate deleted successfully"})
}

func (h *CandidateHandlers) UploadDocument(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	id := kernel.NewCandidateID(c.Params("id"))
	kind := candidate.DocumentKind(c.Params("kind"))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing file upload"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Could not read file upload"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Could not read file upload"})
	}

	updated, err := h.service.UploadDocument(c.Context(), authContext, id, kind, fileHeader.Filename, data)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

func (h *CandidateHandlers) MarkDocumentSigned(c *fiber.Ctx) error {
	authContext, ok := auth.GetAuthContext(c)
	if !ok {
		return iam.ErrUnauthorized()
	}

	id := kernel.NewCandidateID(c.Params("id"))
	kind := candidate.DocumentKind(c.Params("kind"))

	updated, err := h.service.MarkDocumentSigned(c.Context(), authContext, id, kind)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}
