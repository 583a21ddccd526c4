package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/services"
)

type AppointmentHandler struct {
	service appointmentApplicationService
}

type appointmentApplicationService interface {
	ListAppointments(ctx context.Context, coachID int64, query services.AppointmentQuery) ([]models.Appointment, error)
	ListClientAppointments(ctx context.Context, clientID int64, query services.AppointmentQuery) ([]models.Appointment, error)
	GetAppointment(ctx context.Context, coachID, id int64) (*models.Appointment, error)
	CreateAppointment(ctx context.Context, coachID int64, input services.CreateAppointmentInput) (*models.Appointment, error)
	UpdateAppointment(ctx context.Context, coachID, id int64, input services.UpdateAppointmentInput) (*models.Appointment, error)
	DeleteAppointment(ctx context.Context, coachID, id int64) error
}

func NewAppointmentHandler(service *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

type createAppointmentRequest struct {
	ClientID  int64   `json:"clientId" validate:"required,gt=0"`
	Date      string  `json:"date" validate:"required,isodate"`
	StartTime string  `json:"startTime" validate:"required,clock"`
	EndTime   string  `json:"endTime" validate:"required,clock"`
	Duration  int     `json:"duration" validate:"gte=0"`
	Type      string  `json:"type" validate:"required"`
	Status    string  `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
	Notes     *string `json:"notes"`
}

type updateAppointmentRequest struct {
	Date      *string        `json:"date" validate:"omitempty,isodate"`
	StartTime *string        `json:"startTime" validate:"omitempty,clock"`
	EndTime   *string        `json:"endTime" validate:"omitempty,clock"`
	Duration  *int           `json:"duration" validate:"omitempty,gt=0"`
	Type      *string        `json:"type" validate:"omitempty,min=1"`
	Status    *string        `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED CANCELLED COMPLETED"`
	Notes     nullableString `json:"notes"`
}

func appointmentQuery(c *fiber.Ctx) services.AppointmentQuery {
	return services.AppointmentQuery{
		Date:   strings.TrimSpace(c.Query("date")),
		From:   strings.TrimSpace(c.Query("from")),
		To:     strings.TrimSpace(c.Query("to")),
		Status: strings.TrimSpace(c.Query("status")),
	}
}

func (h *AppointmentHandler) ListAppointments(c *fiber.Ctx) error {
	coachID, err := requireActor(c, models.RoleCoach)
	if err != nil {
		return mapServiceError(c, err, "Appointment")
	}

	appointments, err := h.service.ListAppointments(c.UserContext(), coachID, appointmentQuery(c))
	if err != nil {
		return mapServiceError(c, err, "Appointment")
	}
	return c.JSON(fiber.Map{"appointments": appointments})
}

func (h *AppointmentHandler) ListClientAppointments(c *fiber.Ctx) error {
	clientID, err := requireActor(c, models.RoleClient)
	if err != nil {
		return mapServiceError(c, err, "Appointment")
	}

	appointments, err := h.service.ListClientAppointments(c.UserContext(), clientID, appointmentQuery(c))
	if err != nil {
		return mapServiceError(c, err, "Appointment")
	}
	return c.JSON(fiber.Map{"appointments": appointments})
}

func (h *AppointmentHandler) GetAppointment(c *fiber.Ctx) error {
	coachID, err := requireActor(c, models.RoleCoach)
	if err != nil {
		return mapServiceError(c, err, "Appointment")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	appointment, err := h.service.GetAppointment(c.UserContext(), coachID, id)
	if err != nil {
		return mapServiceError(c, err, "Appointment")
	}
	return c.JSON(fiber.Map{"appointment": appointment})
}

func (h *AppointmentHandler) CreateAppointment(c *fiber.Ctx) error {
	coachID, err := requireActor(c, models.RoleCoach)
	if err != nil {
		return mapServiceError(c, err, "Appointment")
	}

	var req createAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateRequest(&req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	appointment, err := h.service.CreateAppointment(c.UserContext(), coachID, services.CreateAppointmentInput{
		ClientID:  req.ClientID,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Duration:  req.Duration,
		Type:      req.Type,
		Status:    req.Status,
		Notes:     req.Notes,
	})
	if err != nil {
		return mapServiceError(c, err, "Appointment")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"appointment": appointment})
}

func (h *AppointmentHandler) UpdateAppointment(c *fiber.Ctx) error {
	coachID, err := requireActor(c, models.RoleCoach)
	if err != nil {
		return mapServiceError(c, err, "Appointment")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	var req updateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateRequest(&req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	appointment, err := h.service.UpdateAppointment(c.UserContext(), coachID, id, services.UpdateAppointmentInput{
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Duration:  req.Duration,
		Type:      req.Type,
		Status:    req.Status,
		Notes:     req.Notes.Value,
		NotesSet:  req.Notes.Set,
	})
	if err != nil {
		return mapServiceError(c, err, "Appointment")
	}
	return c.JSON(fiber.Map{"appointment": appointment})
}

func (h *AppointmentHandler) DeleteAppointment(c *fiber.Ctx) error {
	coachID, err := requireActor(c, models.RoleCoach)
	if err != nil {
		return mapServiceError(c, err, "Appointment")
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid appointment id"})
	}

	if err := h.service.DeleteAppointment(c.UserContext(), coachID, id); err != nil {
		return mapServiceError(c, err, "Appointment")
	}
	return c.JSON(fiber.Map{"message": "Appointment deleted successfully"})
}
