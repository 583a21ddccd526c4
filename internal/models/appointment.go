package models

import "time"

const (
	AppointmentPending   = "PENDING"
	AppointmentConfirmed = "CONFIRMED"
	AppointmentCancelled = "CANCELLED"
	AppointmentCompleted = "COMPLETED"
)

type Appointment struct {
	ID        int64        `json:"id"`
	CoachID   int64        `json:"coachId"`
	ClientID  int64        `json:"clientId"`
	Date      string       `json:"date"`
	StartTime string       `json:"startTime"`
	EndTime   string       `json:"endTime"`
	Duration  int          `json:"duration"`
	Type      string       `json:"type"`
	Status    string       `json:"status"`
	Notes     *string      `json:"notes"`
	Client    *UserSummary `json:"client,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func ValidAppointmentStatus(status string) bool {
	switch status {
	case AppointmentPending, AppointmentConfirmed, AppointmentCancelled, AppointmentCompleted:
		return true
	}
	return false
}
