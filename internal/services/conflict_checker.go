package services

import (
	"context"

	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/metrics"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/repository"
	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/scheduling"
)

type CheckInput struct {
	CoachID  int64
	Date     string
	Interval scheduling.Interval
	Exclude  scheduling.Exclusion
}

// ConflictChecker loads every appointment and time block the coach has on
// the date and asks scheduling.FindConflict whether the candidate
// [start, end) range intersects one of them. Appointments are reported
// before time blocks.
type ConflictChecker struct{}

func (ConflictChecker) Check(ctx context.Context, db repository.DBTX, input CheckInput) (*ConflictError, error) {
	slots, err := loadDaySlots(ctx, db, input.CoachID, input.Date)
	if err != nil {
		return nil, err
	}

	slot, found := scheduling.FindConflict(input.Interval, slots, input.Exclude)
	if !found {
		return nil, nil
	}
	return &ConflictError{Kind: slot.Kind, ID: slot.ID}, nil
}

func loadDaySlots(ctx context.Context, db repository.DBTX, coachID int64, date string) ([]scheduling.Slot, error) {
	appointments, err := repository.NewAppointmentRepository(db).
		List(ctx, repository.AppointmentListFilter{CoachID: coachID, Date: date})
	if err != nil {
		return nil, err
	}
	blocks, err := repository.NewTimeBlockRepository(db).
		List(ctx, repository.TimeBlockListFilter{CoachID: coachID, Date: date})
	if err != nil {
		return nil, err
	}
	return occupiedSlots(appointments, blocks)
}

// occupiedSlots turns stored records into slots, appointments first. Every
// stored appointment occupies its range whatever its status.
func occupiedSlots(appointments []models.Appointment, blocks []models.TimeBlock) ([]scheduling.Slot, error) {
	slots := make([]scheduling.Slot, 0, len(appointments)+len(blocks))
	for _, a := range appointments {
		interval, err := scheduling.ParseInterval(a.StartTime, a.EndTime)
		if err != nil {
			return nil, err
		}
		slots = append(slots, scheduling.Slot{ID: a.ID, Kind: scheduling.SlotAppointment, Interval: interval})
	}
	for _, b := range blocks {
		interval, err := scheduling.ParseInterval(b.StartTime, b.EndTime)
		if err != nil {
			return nil, err
		}
		slots = append(slots, scheduling.Slot{ID: b.ID, Kind: scheduling.SlotTimeBlock, Interval: interval})
	}
	return slots, nil
}

func recordConflict(resource scheduling.SlotKind, conflict *ConflictError) {
	metrics.ScheduleConflictsTotal.WithLabelValues(string(resource), string(conflict.Kind)).Inc()
}
