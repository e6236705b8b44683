package booking

import (
	"errors"

	"github.com/example/hotel-booking/internal/internaltypes"
)

var (
	ErrNotFound            = internaltypes.ErrNotFound
	ErrRoomNotFound        = internaltypes.ErrRoomNotFound
	ErrClientNotFound      = internaltypes.ErrClientNotFound
	ErrReservationNotFound = internaltypes.ErrReservationNotFound
	ErrValidation          = internaltypes.ErrValidation
	ErrInvalidRange        = errors.New("invalid date range")
	ErrRoomUnavailable     = errors.New("room not available for the selected period")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindInvalidRange      Kind = "INVALID_RANGE"
	KindRoomUnavailable   Kind = "ROOM_UNAVAILABLE"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindValidationFailed  Kind = "VALIDATION_FAILED"
	KindInternal          Kind = "INTERNAL"
)

// KindOf classifies an error returned by the engine.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidRange):
		return KindInvalidRange
	case errors.Is(err, ErrRoomUnavailable):
		return KindRoomUnavailable
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrValidation):
		return KindValidationFailed
	}
	return KindInternal
}
