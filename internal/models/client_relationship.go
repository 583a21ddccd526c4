package models

import "time"

const (
	RelationshipActive   = "active"
	RelationshipPending  = "pending"
	RelationshipInactive = "inactive"
)

type ClientRelationship struct {
	ID          int64     `json:"id"`
	CoachID     int64     `json:"coachId"`
	ClientID    int64     `json:"clientId"`
	Status      string    `json:"status"`
	InviteToken string    `json:"-"`
	Message     *string   `json:"message,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ClientListItem struct {
	UserSummary
	RelationshipID     int64  `json:"relationshipId"`
	RelationshipStatus string `json:"relationshipStatus"`
}

type Invitation struct {
	Relationship ClientRelationship
	Client       User
	Link         string
}

func ValidRelationshipStatus(status string) bool {
	switch status {
	case RelationshipActive, RelationshipPending, RelationshipInactive:
		return true
	}
	return false
}
