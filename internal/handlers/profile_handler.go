package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/repository"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/services"
)

const maxAvatarSizeBytes = 5 * 1024 * 1024

var avatarContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

type ProfileHandler struct {
	profileService profileApplicationService
	storageService services.StorageService
}

type profileApplicationService interface {
	UpdateProfile(ctx context.Context, userID int64, input repository.UpdateProfileInput) (*models.User, error)
	ReplaceImage(ctx context.Context, userID int64, imageURL string) (*models.User, string, error)
}

func NewProfileHandler(profileService *services.ProfileService, storageService services.StorageService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		storageService: storageService,
	}
}

type updateProfileRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=120"`
	Bio         *string `json:"bio" validate:"omitempty,max=2000"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=32"`
	TimeZone    *string `json:"timeZone" validate:"omitempty,max=64"`
}

func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if msg := validateRequest(&req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	user, err := h.profileService.UpdateProfile(c.UserContext(), userID, repository.UpdateProfileInput{
		Name:        req.Name,
		Bio:         req.Bio,
		PhoneNumber: req.PhoneNumber,
		TimeZone:    req.TimeZone,
	})
	if err != nil {
		return mapServiceError(c, err, "Profile")
	}
	return c.JSON(fiber.Map{"user": user})
}

func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	if h.storageService == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Storage service is not configured"})
	}

	userID, err := parseUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
	}
	if fileHeader.Size <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is empty"})
	}
	if fileHeader.Size > maxAvatarSizeBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file exceeds 5MB limit"})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	contentType, ok := avatarContentTypes[ext]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar must be a jpg, jpeg, png, or webp file"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open avatar file"})
	}
	defer file.Close()

	key := fmt.Sprintf("avatars/%d-%d%s", userID, time.Now().UnixNano(), ext)
	avatarURL, err := h.storageService.UploadFile(c.UserContext(), file, key, contentType)
	if err != nil {
		slog.ErrorContext(c.UserContext(), "avatar_upload_failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload avatar"})
	}

	user, previous, err := h.profileService.ReplaceImage(c.UserContext(), userID, avatarURL)
	if err != nil {
		return mapServiceError(c, err, "Profile")
	}
	if previous != "" {
		if err := h.storageService.DeleteFile(c.UserContext(), previous); err != nil {
			slog.WarnContext(c.UserContext(), "old_avatar_delete_failed", "user_id", userID, "error", err)
		}
	}

	return c.JSON(fiber.Map{
		"image": avatarURL,
		"user":  user,
	})
}
