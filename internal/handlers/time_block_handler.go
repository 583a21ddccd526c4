package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/services"
)

type TimeBlockHandler struct {
	service timeBlockApplicationService
}

type timeBlockApplicationService interface {
	ListTimeBlocks(ctx context.Context, coachID int64, query services.TimeBlockQuery) ([]models.TimeBlock, error)
	GetTimeBlock(ctx context.Context, coachID, id int64) (*models.TimeBlock, error)
	CreateTimeBlock(ctx context.Context, coachID int64, input services.CreateTimeBlockInput) (*models.TimeBlock, error)
	UpdateTimeBlock(ctx context.Context, coachID, id int64, input services.UpdateTimeBlockInput) (*models.TimeBlock, error)
	DeleteTimeBlock(ctx context.Context, coachID, id int64) error
}

func NewTimeBlockHandler(service *services.TimeBlockService) *TimeBlockHandler {
	return &TimeBlockHandler{service: service}
}

type createTimeBlockRequest struct {
	Date        string  `json:"date" validate:"required,isodate"`
	StartTime   string  `json:"startTime" validate:"required,clock"`
	EndTime     string  `json:"endTime" validate:"required,clock"`
	Type        string  `json:"type" validate:"required,oneof=AVAILABLE UNAVAILABLE BREAK"`
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description"`
}

type updateTimeBlockRequest struct {
	Date        *string        `json:"date" validate:"omitempty,isodate"`
	StartTime   *string        `json:"startTime" validate:"omitempty,clock"`
	EndTime     *string        `json:"endTime" validate:"omitempty,clock"`
	Type        *string        `json:"type" validate:"omitempty,oneof=AVAILABLE UNAVAILABLE BREAK"`
	Title       *string        `json:"title" validate:"omitempty,min=1,max=200"`
	Description nullableString `json:"description"`
}

func (h *TimeBlockHandler) ListTimeBlocks(c *fiber.Ctx) error {
	coachID, err := requireActor(c, models.RoleCoach)
	if err != nil {
		return mapServiceError(c, err, "Time block")
	}

	blocks, err := h.service.ListTimeBlocks(c.UserContext(), coachID, services.TimeBlockQuery{
		Date: strings.TrimSpace(c.Query("date")),
		From: strings.TrimSpace(c.Query("from")),
		To:   strings.TrimSpace(c.Query("to")),
		Type: strings.TrimSpace(c.Query("type")),
	})
	if err != nil {
		return mapServiceError(c, err, "Time block")
	}
	return c.JSON(fiber.Map{"timeBlocks": blocks})
}

func (h *TimeBlockHandler) GetTimeBlock(c *fiber.Ctx) error {
	coachID, err := requireActor(c, models.RoleCoach)
	if err != nil {
		return mapServiceError(c, err, "Time block")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid time block id"})
	}

	block, err := h.service.GetTimeBlock(c.UserContext(), coachID, id)
	if err != nil {
		return mapServiceError(c, err, "Time block")
	}
	return c.JSON(fiber.Map{"timeBlock": block})
}

func (h *TimeBlockHandler) CreateTimeBlock(c *fiber.Ctx) error {
	coachID, err := requireActor(c, models.RoleCoach)
	if err != nil {
		return mapServiceError(c, err, "Time block")
	}

	var req createTimeBlockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateRequest(&req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	block, err := h.service.CreateTimeBlock(c.UserContext(), coachID, services.CreateTimeBlockInput{
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return mapServiceError(c, err, "Time block")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"timeBlock": block})
}

func (h *TimeBlockHandler) UpdateTimeBlock(c *fiber.Ctx) error {
	coachID, err := requireActor(c, models.RoleCoach)
	if err != nil {
		return mapServiceError(c, err, "Time block")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid time block id"})
	}

	var req updateTimeBlockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateRequest(&req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	block, err := h.service.UpdateTimeBlock(c.UserContext(), coachID, id, services.UpdateTimeBlockInput{
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Type:           req.Type,
		Title:          req.Title,
		Description:    req.Description.Value,
		DescriptionSet: req.Description.Set,
	})
	if err != nil {
		return mapServiceError(c, err, "Time block")
	}
	return c.JSON(fiber.Map{"timeBlock": block})
}

func (h *TimeBlockHandler) DeleteTimeBlock(c *fiber.Ctx) error {
	coachID, err := requireActor(c, models.RoleCoach)
	if err != nil {
		return mapServiceError(c, err, "Time block")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid time block id"})
	}

	if err := h.service.DeleteTimeBlock(c.UserContext(), coachID, id); err != nil {
		return mapServiceError(c, err, "Time block")
	}
	return c.JSON(fiber.Map{"message": "Time block deleted successfully"})
}
