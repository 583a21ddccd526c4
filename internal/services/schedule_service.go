package services

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/repository"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/scheduling"
)

type ScheduleService struct {
	db           *pgxpool.Pool
	appointments *repository.AppointmentRepository
	timeBlocks   *repository.TimeBlockRepository
	checker      ConflictChecker
}

func NewScheduleService(
	db *pgxpool.Pool,
	appointments *repository.AppointmentRepository,
	timeBlocks *repository.TimeBlockRepository,
) *ScheduleService {
	return &ScheduleService{
		db:           db,
		appointments: appointments,
		timeBlocks:   timeBlocks,
	}
}

type AvailabilityQuery struct {
	Date      string
	StartTime string
	EndTime   string
	Exclude   scheduling.Exclusion
}

type AvailabilityResult struct {
	Available bool
	Conflict  *ConflictError
}

// CheckAvailability runs the same check the write paths run, without a lock.
func (s *ScheduleService) CheckAvailability(
	ctx context.Context,
	coachID int64,
	query AvailabilityQuery,
) (*AvailabilityResult, error) {
	date, err := scheduling.ParseDate(query.Date)
	if err != nil {
		return nil, invalidInput("%v", err)
	}
	interval, err := scheduling.ParseInterval(query.StartTime, query.EndTime)
	if err != nil {
		return nil, invalidInput("%v", err)
	}

	conflict, err := s.checker.Check(ctx, s.db, CheckInput{
		CoachID:  coachID,
		Date:     date,
		Interval: interval,
		Exclude:  query.Exclude,
	})
	if err != nil {
		return nil, err
	}
	return &AvailabilityResult{Available: conflict == nil, Conflict: conflict}, nil
}

type DaySchedule struct {
	Date         string
	Appointments []models.Appointment
	TimeBlocks   []models.TimeBlock
	Free         []scheduling.Interval
}

// DayAvailability loads one date of a coach's calendar and lists the gaps
// inside window that no appointment or time block covers.
func (s *ScheduleService) DayAvailability(
	ctx context.Context,
	coachID int64,
	date string,
	window scheduling.Interval,
) (*DaySchedule, error) {
	date, err := scheduling.ParseDate(date)
	if err != nil {
		return nil, invalidInput("%v", err)
	}

	appointments, err := s.appointments.List(ctx, repository.AppointmentListFilter{CoachID: coachID, Date: date})
	if err != nil {
		return nil, err
	}
	blocks, err := s.timeBlocks.List(ctx, repository.TimeBlockListFilter{CoachID: coachID, Date: date})
	if err != nil {
		return nil, err
	}

	slots, err := occupiedSlots(appointments, blocks)
	if err != nil {
		return nil, err
	}
	return &DaySchedule{
		Date:         date,
		Appointments: appointments,
		TimeBlocks:   blocks,
		Free:         scheduling.FreeIntervals(window, slots),
	}, nil
}
