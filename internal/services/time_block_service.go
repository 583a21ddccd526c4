package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/events"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/metrics"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/repository"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/scheduling"
)

type TimeBlockService struct {
	db        *pgxpool.Pool
	repo      *repository.TimeBlockRepository
	checker   ConflictChecker
	publisher events.Publisher
}

func NewTimeBlockService(
	db *pgxpool.Pool,
	repo *repository.TimeBlockRepository,
	publisher events.Publisher,
) *TimeBlockService {
	return &TimeBlockService{
		db:        db,
		repo:      repo,
		publisher: publisher,
	}
}

type CreateTimeBlockInput struct {
	Date        string
	StartTime   string
	EndTime     string
	Type        string
	Title       string
	Description *string
}

type UpdateTimeBlockInput struct {
	Date           *string
	StartTime      *string
	EndTime        *string
	Type           *string
	Title          *string
	Description    *string
	DescriptionSet bool
}

type TimeBlockQuery struct {
	Date string
	From string
	To   string
	Type string
}

func (s *TimeBlockService) ListTimeBlocks(
	ctx context.Context,
	coachID int64,
	query TimeBlockQuery,
) ([]models.TimeBlock, error) {
	filter := repository.TimeBlockListFilter{CoachID: coachID, Type: strings.TrimSpace(query.Type)}
	var err error
	if filter.Date, err = optionalDate("date", query.Date); err != nil {
		return nil, err
	}
	if filter.From, err = optionalDate("from", query.From); err != nil {
		return nil, err
	}
	if filter.To, err = optionalDate("to", query.To); err != nil {
		return nil, err
	}
	if filter.Type != "" && !models.ValidTimeBlockType(filter.Type) {
		return nil, invalidInput("unknown type filter %q", filter.Type)
	}
	return s.repo.List(ctx, filter)
}

func (s *TimeBlockService) GetTimeBlock(ctx context.Context, coachID, id int64) (*models.TimeBlock, error) {
	block, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if block.CoachID != coachID {
		return nil, ErrNotFound
	}
	return block, nil
}

func (s *TimeBlockService) CreateTimeBlock(
	ctx context.Context,
	coachID int64,
	input CreateTimeBlockInput,
) (*models.TimeBlock, error) {
	record := repository.TimeBlockInput{
		CoachID:     coachID,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Type:        input.Type,
		Title:       input.Title,
		Description: input.Description,
	}
	interval, err := normalizeTimeBlock(&record)
	if err != nil {
		return nil, err
	}

	var created *models.TimeBlock
	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := lockCoachSchedule(ctx, tx, coachID); err != nil {
			return err
		}
		conflict, err := s.checker.Check(ctx, tx, CheckInput{
			CoachID:  coachID,
			Date:     record.Date,
			Interval: interval,
		})
		if err != nil {
			return err
		}
		if conflict != nil {
			recordConflict(scheduling.SlotTimeBlock, conflict)
			return conflict
		}

		created, err = repository.NewTimeBlockRepository(tx).Create(ctx, record)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.ScheduleWritesTotal.WithLabelValues(string(scheduling.SlotTimeBlock), "create").Inc()
	events.Emit(ctx, s.publisher, events.NewTimeBlockEvent(events.TimeBlockCreated, created))
	return created, nil
}

func (s *TimeBlockService) UpdateTimeBlock(
	ctx context.Context,
	coachID int64,
	id int64,
	input UpdateTimeBlockInput,
) (*models.TimeBlock, error) {
	var updated *models.TimeBlock
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := lockCoachSchedule(ctx, tx, coachID); err != nil {
			return err
		}

		txRepo := repository.NewTimeBlockRepository(tx)
		existing, err := txRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if existing.CoachID != coachID {
			return ErrNotFound
		}

		record := mergeTimeBlock(existing, input)
		interval, err := normalizeTimeBlock(&record)
		if err != nil {
			return err
		}

		conflict, err := s.checker.Check(ctx, tx, CheckInput{
			CoachID:  coachID,
			Date:     record.Date,
			Interval: interval,
			Exclude:  scheduling.Exclusion{Kind: scheduling.SlotTimeBlock, ID: id},
		})
		if err != nil {
			return err
		}
		if conflict != nil {
			recordConflict(scheduling.SlotTimeBlock, conflict)
			return conflict
		}

		updated, err = txRepo.Update(ctx, id, record)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.ScheduleWritesTotal.WithLabelValues(string(scheduling.SlotTimeBlock), "update").Inc()
	events.Emit(ctx, s.publisher, events.NewTimeBlockEvent(events.TimeBlockUpdated, updated))
	return updated, nil
}

func (s *TimeBlockService) DeleteTimeBlock(ctx context.Context, coachID, id int64) error {
	block, err := s.GetTimeBlock(ctx, coachID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, coachID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	metrics.ScheduleWritesTotal.WithLabelValues(string(scheduling.SlotTimeBlock), "delete").Inc()
	events.Emit(ctx, s.publisher, events.NewTimeBlockEvent(events.TimeBlockDeleted, block))
	return nil
}

func mergeTimeBlock(existing *models.TimeBlock, input UpdateTimeBlockInput) repository.TimeBlockInput {
	record := repository.TimeBlockInput{
		CoachID:     existing.CoachID,
		Date:        existing.Date,
		StartTime:   existing.StartTime,
		EndTime:     existing.EndTime,
		Type:        existing.Type,
		Title:       existing.Title,
		Description: existing.Description,
	}
	if input.Date != nil {
		record.Date = *input.Date
	}
	if input.StartTime != nil {
		record.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		record.EndTime = *input.EndTime
	}
	if input.Type != nil {
		record.Type = *input.Type
	}
	if input.Title != nil {
		record.Title = *input.Title
	}
	if input.DescriptionSet {
		record.Description = input.Description
	}
	return record
}

func normalizeTimeBlock(record *repository.TimeBlockInput) (scheduling.Interval, error) {
	date, err := scheduling.ParseDate(record.Date)
	if err != nil {
		return scheduling.Interval{}, invalidInput("%v", err)
	}
	record.Date = date

	interval, err := scheduling.ParseInterval(record.StartTime, record.EndTime)
	if err != nil {
		return scheduling.Interval{}, invalidInput("%v", err)
	}
	record.StartTime = interval.StartClock()
	record.EndTime = interval.EndClock()

	if !models.ValidTimeBlockType(record.Type) {
		return scheduling.Interval{}, invalidInput("type must be one of AVAILABLE, UNAVAILABLE, BREAK")
	}
	record.Title = strings.TrimSpace(record.Title)
	if record.Title == "" {
		return scheduling.Interval{}, invalidInput("title is required")
	}
	if record.Description != nil && strings.TrimSpace(*record.Description) == "" {
		record.Description = nil
	}
	return interval, nil
}

func optionalDate(name, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	date, err := scheduling.ParseDate(value)
	if err != nil {
		return "", invalidInput("%s: %v", name, err)
	}
	return date, nil
}
