package models

import "time"

const (
	TimeBlockAvailable   = "AVAILABLE"
	TimeBlockUnavailable = "UNAVAILABLE"
	TimeBlockBreak       = "BREAK"
)

type TimeBlock struct {
	ID          int64     `json:"id"`
	CoachID     int64     `json:"coachId"`
	Date        string    `json:"date"`
	StartTime   string    `json:"startTime"`
	EndTime     string    `json:"endTime"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func ValidTimeBlockType(blockType string) bool {
	switch blockType {
	case TimeBlockAvailable, TimeBlockUnavailable, TimeBlockBreak:
		return true
	}
	return false
}
