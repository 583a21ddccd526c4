package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/models"
)

const (
	AppointmentCreated = "appointment.created"
	AppointmentUpdated = "appointment.updated"
	AppointmentDeleted = "appointment.deleted"
	TimeBlockCreated   = "timeblock.created"
	TimeBlockUpdated   = "timeblock.updated"
	TimeBlockDeleted   = "timeblock.deleted"
	ClientInvited      = "client.invited"
	ClientStatusChange = "client.status_changed"
)

type ScheduleEvent struct {
	Type         string                     `json:"type"`
	CoachID      int64                      `json:"coachId"`
	ClientID     int64                      `json:"clientId,omitempty"`
	Appointment  *models.Appointment        `json:"appointment,omitempty"`
	TimeBlock    *models.TimeBlock          `json:"timeBlock,omitempty"`
	Relationship *models.ClientRelationship `json:"relationship,omitempty"`
	OccurredAt   time.Time                  `json:"occurredAt"`
}

// Recipients lists the user ids that should see the event live.
func (e ScheduleEvent) Recipients() []int64 {
	ids := []int64{e.CoachID}
	if e.ClientID != 0 && e.ClientID != e.CoachID {
		ids = append(ids, e.ClientID)
	}
	return ids
}

type Publisher interface {
	Publish(ctx context.Context, event ScheduleEvent) error
}

func NewAppointmentEvent(eventType string, appointment *models.Appointment) ScheduleEvent {
	return ScheduleEvent{
		Type:        eventType,
		CoachID:     appointment.CoachID,
		ClientID:    appointment.ClientID,
		Appointment: appointment,
		OccurredAt:  time.Now().UTC(),
	}
}

func NewTimeBlockEvent(eventType string, block *models.TimeBlock) ScheduleEvent {
	return ScheduleEvent{
		Type:       eventType,
		CoachID:    block.CoachID,
		TimeBlock:  block,
		OccurredAt: time.Now().UTC(),
	}
}

func NewRelationshipEvent(eventType string, rel *models.ClientRelationship) ScheduleEvent {
	return ScheduleEvent{
		Type:         eventType,
		CoachID:      rel.CoachID,
		ClientID:     rel.ClientID,
		Relationship: rel,
		OccurredAt:   time.Now().UTC(),
	}
}

// Fanout delivers every event to all sinks and joins their errors.
type Fanout struct {
	sinks []Publisher
}

func NewFanout(sinks ...Publisher) *Fanout {
	active := make([]Publisher, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			active = append(active, sink)
		}
	}
	return &Fanout{sinks: active}
}

func (f *Fanout) Publish(ctx context.Context, event ScheduleEvent) error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit publishes after a committed write. Delivery problems are logged only.
func Emit(ctx context.Context, publisher Publisher, event ScheduleEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "schedule_event_publish_failed", "type", event.Type, "coach_id", event.CoachID, "error", err)
	}
}
