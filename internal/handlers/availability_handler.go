package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/scheduling"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/services"
)

type AvailabilityHandler struct {
	service availabilityService
}

type availabilityService interface {
	CheckAvailability(ctx context.Context, coachID int64, query services.AvailabilityQuery) (*services.AvailabilityResult, error)
	DayAvailability(ctx context.Context, coachID int64, date string, window scheduling.Interval) (*services.DaySchedule, error)
}

func NewAvailabilityHandler(service *services.ScheduleService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

type freeWindow struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Minutes   int    `json:"minutes"`
}

// CheckAvailability answers whether a range is free without writing anything.
func (h *AvailabilityHandler) CheckAvailability(c *fiber.Ctx) error {
	coachID, err := requireActor(c, models.RoleCoach)
	if err != nil {
		return mapServiceError(c, err, "Availability")
	}

	exclude, ok := exclusionFromQuery(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Provide at most one valid excludeAppointmentId or excludeTimeBlockId"})
	}

	result, err := h.service.CheckAvailability(c.UserContext(), coachID, services.AvailabilityQuery{
		Date:      strings.TrimSpace(c.Query("date")),
		StartTime: strings.TrimSpace(c.Query("startTime")),
		EndTime:   strings.TrimSpace(c.Query("endTime")),
		Exclude:   exclude,
	})
	if err != nil {
		return mapServiceError(c, err, "Availability")
	}

	var conflict any
	if result.Conflict != nil {
		conflict = result.Conflict.Kind
	}
	return c.JSON(fiber.Map{
		"available": result.Available,
		"conflict":  conflict,
	})
}

func (h *AvailabilityHandler) DayAvailability(c *fiber.Ctx) error {
	coachID, err := requireActor(c, models.RoleCoach)
	if err != nil {
		return mapServiceError(c, err, "Availability")
	}

	window := scheduling.WholeDay()
	from, to := strings.TrimSpace(c.Query("from")), strings.TrimSpace(c.Query("to"))
	if from != "" || to != "" {
		if from == "" || to == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "from and to must be sent together"})
		}
		window, err = scheduling.ParseInterval(from, to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	day, err := h.service.DayAvailability(c.UserContext(), coachID, strings.TrimSpace(c.Query("date")), window)
	if err != nil {
		return mapServiceError(c, err, "Availability")
	}

	free := make([]freeWindow, 0, len(day.Free))
	for _, interval := range day.Free {
		free = append(free, freeWindow{
			StartTime: interval.StartClock(),
			EndTime:   interval.EndClock(),
			Minutes:   interval.Minutes(),
		})
	}
	return c.JSON(fiber.Map{
		"date":         day.Date,
		"free":         free,
		"appointments": day.Appointments,
		"timeBlocks":   day.TimeBlocks,
	})
}

func exclusionFromQuery(c *fiber.Ctx) (scheduling.Exclusion, bool) {
	appointmentID := strings.TrimSpace(c.Query("excludeAppointmentId"))
	timeBlockID := strings.TrimSpace(c.Query("excludeTimeBlockId"))
	switch {
	case appointmentID != "" && timeBlockID != "":
		return scheduling.Exclusion{}, false
	case appointmentID != "":
		id, err := strconv.ParseInt(appointmentID, 10, 64)
		if err != nil || id <= 0 {
			return scheduling.Exclusion{}, false
		}
		return scheduling.Exclusion{Kind: scheduling.SlotAppointment, ID: id}, true
	case timeBlockID != "":
		id, err := strconv.ParseInt(timeBlockID, 10, 64)
		if err != nil || id <= 0 {
			return scheduling.Exclusion{}, false
		}
		return scheduling.Exclusion{Kind: scheduling.SlotTimeBlock, ID: id}, true
	}
	return scheduling.Exclusion{}, true
}
