package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 50
)

// parsePagination reads page and limit query params. Limits above the
// maximum are clamped.
func parsePagination(c *fiber.Ctx) (int, int, bool) {
	page := 1
	limit := defaultPageLimit

	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return 0, 0, false
		}
		page = parsed
	}
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return 0, 0, false
		}
		limit = min(parsed, maxPageLimit)
	}
	return page, limit, true
}

func buildPaginationMeta(page, limit, total int) models.PaginationMeta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return models.PaginationMeta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
