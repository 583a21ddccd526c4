package models

import "time"

const (
	RoleCoach  = "COACH"
	RoleClient = "CLIENT"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash *string   `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Bio          *string   `json:"bio"`
	PhoneNumber  *string   `json:"phoneNumber"`
	TimeZone     string    `json:"timeZone"`
	Image        *string   `json:"image"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the public shape embedded in schedule and client payloads.
type UserSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func ValidRole(role string) bool {
	return role == RoleCoach || role == RoleClient
}
