package services

import (
	"errors"
	"fmt"

	"github.com/liangzixuan/ai-assisted-coding-kahunas/internal/scheduling"
)

var (
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrClientNotFound         = errors.New("client not found or not related to coach")
	ErrAlreadyInvited         = errors.New("client is already connected to your coaching practice")
	ErrInvalidRole            = errors.New("invalid role")
)

// ConflictError names the record a proposed range collides with.
type ConflictError struct {
	Kind scheduling.SlotKind
	ID   int64
}

func (e *ConflictError) Error() string {
	switch e.Kind {
	case scheduling.SlotTimeBlock:
		return "Time slot conflicts with existing time block"
	default:
		return "Time slot conflicts with existing appointment"
	}
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
