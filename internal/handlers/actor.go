package handlers

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/middleware"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/services"
)

var errUnauthorized = errors.New("unauthorized")

// parseUserID returns the caller id AuthRequired left on the request.
func parseUserID(c *fiber.Ctx) (int64, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return 0, errUnauthorized
	}
	return userID, nil
}

// requireActor returns the caller's id when it carries the given role.
func requireActor(c *fiber.Ctx, role string) (int64, error) {
	userID, err := parseUserID(c)
	if err != nil {
		return 0, err
	}
	actual := middleware.Role(c)
	if actual == "" {
		return 0, errUnauthorized
	}
	if actual != role {
		return 0, services.ErrForbidden
	}
	return userID, nil
}

func parseIDParam(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// mapServiceError turns service errors into responses. resource names the
// thing being handled ("Appointment", "Time block") for 404 and 500 bodies.
func mapServiceError(c *fiber.Ctx, err error, resource string) error {
	var conflict *services.ConflictError
	switch {
	case errors.Is(err, errUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":         conflict.Error(),
			"conflictsWith": conflict.Kind,
		})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Request conflicts with the current state"})
	case errors.Is(err, services.ErrAlreadyInvited):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Client is already connected to your coaching practice"})
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrInvalidRole):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidStateTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrClientNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found or not related to coach"})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": resource + " not found"})
	default:
		slog.ErrorContext(c.UserContext(), "request_failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process " + strings.ToLower(resource) + " request"})
	}
}

