package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/repository"
)

type UserProfileStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, input repository.UpdateProfileInput) (*models.User, error)
	UpdateImage(ctx context.Context, id int64, imageURL string) (*models.User, error)
}

type ProfileService struct {
	users UserProfileStore
}

func NewProfileService(users UserProfileStore) *ProfileService {
	return &ProfileService{users: users}
}

func (s *ProfileService) UpdateProfile(
	ctx context.Context,
	userID int64,
	input repository.UpdateProfileInput,
) (*models.User, error) {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, invalidInput("name must not be empty")
		}
		input.Name = &name
	}
	if input.TimeZone != nil {
		zone := strings.TrimSpace(*input.TimeZone)
		if zone == "" {
			return nil, invalidInput("timeZone must not be empty")
		}
		if _, err := time.LoadLocation(zone); err != nil {
			return nil, invalidInput("unknown timeZone %q", zone)
		}
		input.TimeZone = &zone
	}

	user, err := s.users.UpdateProfile(ctx, userID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// ReplaceImage stores the new avatar URL and returns the updated user along
// with the URL it replaced, if any.
func (s *ProfileService) ReplaceImage(
	ctx context.Context,
	userID int64,
	imageURL string,
) (*models.User, string, error) {
	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", err
	}
	previous := ""
	if current.Image != nil && *current.Image != imageURL {
		previous = *current.Image
	}

	user, err := s.users.UpdateImage(ctx, userID, imageURL)
	if err != nil {
		return nil, "", err
	}
	return user, previous, nil
}
