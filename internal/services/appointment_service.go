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

type AppointmentService struct {
	db        *pgxpool.Pool
	repo      *repository.AppointmentRepository
	checker   ConflictChecker
	publisher events.Publisher
}

func NewAppointmentService(
	db *pgxpool.Pool,
	repo *repository.AppointmentRepository,
	publisher events.Publisher,
) *AppointmentService {
	return &AppointmentService{
		db:        db,
		repo:      repo,
		publisher: publisher,
	}
}

type CreateAppointmentInput struct {
	ClientID  int64
	Date      string
	StartTime string
	EndTime   string
	Duration  int
	Type      string
	Status    string
	Notes     *string
}

// UpdateAppointmentInput carries a partial update. Nil fields keep the
// stored value; Notes is applied only when NotesSet is true so that an
// explicit null clears it.
type UpdateAppointmentInput struct {
	Date      *string
	StartTime *string
	EndTime   *string
	Duration  *int
	Type      *string
	Status    *string
	Notes     *string
	NotesSet  bool
}

type AppointmentQuery struct {
	Date   string
	From   string
	To     string
	Status string
}

func (s *AppointmentService) ListAppointments(
	ctx context.Context,
	coachID int64,
	query AppointmentQuery,
) ([]models.Appointment, error) {
	filter, err := appointmentFilter(query)
	if err != nil {
		return nil, err
	}
	filter.CoachID = coachID
	return s.repo.List(ctx, filter)
}

func (s *AppointmentService) ListClientAppointments(
	ctx context.Context,
	clientID int64,
	query AppointmentQuery,
) ([]models.Appointment, error) {
	filter, err := appointmentFilter(query)
	if err != nil {
		return nil, err
	}
	filter.ClientID = clientID
	return s.repo.List(ctx, filter)
}

func (s *AppointmentService) GetAppointment(ctx context.Context, coachID, id int64) (*models.Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if appointment.CoachID != coachID {
		return nil, ErrNotFound
	}
	return appointment, nil
}

func (s *AppointmentService) CreateAppointment(
	ctx context.Context,
	coachID int64,
	input CreateAppointmentInput,
) (*models.Appointment, error) {
	if input.ClientID <= 0 {
		return nil, invalidInput("clientId is required")
	}
	record := repository.AppointmentInput{
		CoachID:   coachID,
		ClientID:  input.ClientID,
		Date:      input.Date,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Duration:  input.Duration,
		Type:      input.Type,
		Status:    input.Status,
		Notes:     input.Notes,
	}
	if record.Status == "" {
		record.Status = models.AppointmentPending
	}
	interval, err := normalizeAppointment(&record)
	if err != nil {
		return nil, err
	}

	var created *models.Appointment
	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := lockCoachSchedule(ctx, tx, coachID); err != nil {
			return err
		}

		rel, err := repository.NewClientRelationshipRepository(tx).GetByCoachAndClient(ctx, coachID, input.ClientID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrClientNotFound
			}
			return err
		}
		if rel.Status == models.RelationshipInactive {
			return ErrClientNotFound
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
			recordConflict(scheduling.SlotAppointment, conflict)
			return conflict
		}

		created, err = repository.NewAppointmentRepository(tx).Create(ctx, record)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.ScheduleWritesTotal.WithLabelValues(string(scheduling.SlotAppointment), "create").Inc()
	events.Emit(ctx, s.publisher, events.NewAppointmentEvent(events.AppointmentCreated, created))
	return created, nil
}

func (s *AppointmentService) UpdateAppointment(
	ctx context.Context,
	coachID int64,
	id int64,
	input UpdateAppointmentInput,
) (*models.Appointment, error) {
	var updated *models.Appointment
	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := lockCoachSchedule(ctx, tx, coachID); err != nil {
			return err
		}

		txRepo := repository.NewAppointmentRepository(tx)
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

		record := mergeAppointment(existing, input)
		interval, err := normalizeAppointment(&record)
		if err != nil {
			return err
		}

		conflict, err := s.checker.Check(ctx, tx, CheckInput{
			CoachID:  coachID,
			Date:     record.Date,
			Interval: interval,
			Exclude:  scheduling.Exclusion{Kind: scheduling.SlotAppointment, ID: id},
		})
		if err != nil {
			return err
		}
		if conflict != nil {
			recordConflict(scheduling.SlotAppointment, conflict)
			return conflict
		}

		updated, err = txRepo.Update(ctx, id, record)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.ScheduleWritesTotal.WithLabelValues(string(scheduling.SlotAppointment), "update").Inc()
	events.Emit(ctx, s.publisher, events.NewAppointmentEvent(events.AppointmentUpdated, updated))
	return updated, nil
}

func (s *AppointmentService) DeleteAppointment(ctx context.Context, coachID, id int64) error {
	appointment, err := s.GetAppointment(ctx, coachID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, coachID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	metrics.ScheduleWritesTotal.WithLabelValues(string(scheduling.SlotAppointment), "delete").Inc()
	events.Emit(ctx, s.publisher, events.NewAppointmentEvent(events.AppointmentDeleted, appointment))
	return nil
}

func mergeAppointment(existing *models.Appointment, input UpdateAppointmentInput) repository.AppointmentInput {
	record := repository.AppointmentInput{
		CoachID:   existing.CoachID,
		ClientID:  existing.ClientID,
		Date:      existing.Date,
		StartTime: existing.StartTime,
		EndTime:   existing.EndTime,
		Duration:  existing.Duration,
		Type:      existing.Type,
		Status:    existing.Status,
		Notes:     existing.Notes,
	}
	timesChanged := false
	if input.Date != nil {
		record.Date = *input.Date
	}
	if input.StartTime != nil {
		record.StartTime = *input.StartTime
		timesChanged = true
	}
	if input.EndTime != nil {
		record.EndTime = *input.EndTime
		timesChanged = true
	}
	if input.Duration != nil {
		record.Duration = *input.Duration
	} else if timesChanged {
		record.Duration = 0
	}
	if input.Type != nil {
		record.Type = *input.Type
	}
	if input.Status != nil {
		record.Status = *input.Status
	}
	if input.NotesSet {
		record.Notes = input.Notes
	}
	return record
}

// normalizeAppointment validates record in place and returns its interval.
// A zero duration is derived from the time range.
func normalizeAppointment(record *repository.AppointmentInput) (scheduling.Interval, error) {
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

	if record.Duration == 0 {
		record.Duration = interval.Minutes()
	}
	if record.Duration != interval.Minutes() {
		return scheduling.Interval{}, invalidInput("duration must equal the minutes between startTime and endTime")
	}

	record.Type = strings.TrimSpace(record.Type)
	if record.Type == "" {
		return scheduling.Interval{}, invalidInput("type is required")
	}
	if !models.ValidAppointmentStatus(record.Status) {
		return scheduling.Interval{}, invalidInput("status must be one of PENDING, CONFIRMED, CANCELLED, COMPLETED")
	}
	if record.Notes != nil && strings.TrimSpace(*record.Notes) == "" {
		record.Notes = nil
	}
	return interval, nil
}

func appointmentFilter(query AppointmentQuery) (repository.AppointmentListFilter, error) {
	filter := repository.AppointmentListFilter{Status: strings.TrimSpace(query.Status)}
	var err error
	if filter.Date, err = optionalDate("date", query.Date); err != nil {
		return filter, err
	}
	if filter.From, err = optionalDate("from", query.From); err != nil {
		return filter, err
	}
	if filter.To, err = optionalDate("to", query.To); err != nil {
		return filter, err
	}
	if filter.Status != "" && !models.ValidAppointmentStatus(filter.Status) {
		return filter, invalidInput("unknown status filter %q", filter.Status)
	}
	return filter, nil
}
