package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/services"
)

type ClientHandler struct {
	service clientApplicationService
}

type clientApplicationService interface {
	ListClients(ctx context.Context, coachID int64, status string, page, limit int) ([]models.ClientListItem, int, error)
	InviteClient(ctx context.Context, coachID int64, input services.InviteClientInput) (*models.Invitation, error)
	UpdateClientStatus(ctx context.Context, coachID, clientID int64, status string) (*models.ClientRelationship, error)
	AcceptInvitation(ctx context.Context, clientID int64, token string) (*models.ClientRelationship, error)
}

func NewClientHandler(service *services.ClientService) *ClientHandler {
	return &ClientHandler{service: service}
}

type inviteClientRequest struct {
	Email   string  `json:"email" validate:"required,email"`
	Name    string  `json:"name" validate:"required,max=120"`
	Message *string `json:"message" validate:"omitempty,max=2000"`
	CoachID *int64  `json:"coachId"`
}

type updateClientStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

func (h *ClientHandler) ListClients(c *fiber.Ctx) error {
	coachID, err := requireActor(c, models.RoleCoach)
	if err != nil {
		return mapServiceError(c, err, "Client")
	}
	page, limit, ok := parsePagination(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "page and limit must be positive integers"})
	}

	clients, total, err := h.service.ListClients(c.UserContext(), coachID, strings.TrimSpace(c.Query("status")), page, limit)
	if err != nil {
		return mapServiceError(c, err, "Client")
	}
	return c.JSON(fiber.Map{
		"clients":    clients,
		"pagination": buildPaginationMeta(page, limit, total),
	})
}

func (h *ClientHandler) InviteClient(c *fiber.Ctx) error {
	coachID, err := requireActor(c, models.RoleCoach)
	if err != nil {
		return mapServiceError(c, err, "Client")
	}

	var req inviteClientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateRequest(&req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}
	if req.CoachID != nil && *req.CoachID != coachID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	invitation, err := h.service.InviteClient(c.UserContext(), coachID, services.InviteClientInput{
		Email:   req.Email,
		Name:    req.Name,
		Message: req.Message,
	})
	if err != nil {
		return mapServiceError(c, err, "Client")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Invitation sent successfully",
		"relationship": fiber.Map{
			"id":          invitation.Relationship.ID,
			"clientEmail": invitation.Client.Email,
			"clientName":  invitation.Client.Name,
			"status":      invitation.Relationship.Status,
		},
	})
}

func (h *ClientHandler) UpdateClientStatus(c *fiber.Ctx) error {
	coachID, err := requireActor(c, models.RoleCoach)
	if err != nil {
		return mapServiceError(c, err, "Client")
	}
	clientID, ok := parseIDParam(c, "clientId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid client id"})
	}

	var req updateClientStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateRequest(&req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	rel, err := h.service.UpdateClientStatus(c.UserContext(), coachID, clientID, req.Status)
	if err != nil {
		return mapServiceError(c, err, "Client")
	}
	return c.JSON(fiber.Map{"relationship": rel})
}

func (h *ClientHandler) AcceptInvitation(c *fiber.Ctx) error {
	clientID, err := requireActor(c, models.RoleClient)
	if err != nil {
		return mapServiceError(c, err, "Invitation")
	}

	rel, err := h.service.AcceptInvitation(c.UserContext(), clientID, strings.TrimSpace(c.Params("token")))
	if err != nil {
		return mapServiceError(c, err, "Invitation")
	}
	return c.JSON(fiber.Map{
		"message":      "Invitation accepted",
		"relationship": rel,
	})
}
