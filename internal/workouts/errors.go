package workouts

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated  = errors.New("login required")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrWorkoutNotFound  = errors.New("workout not found")
	ErrActivityNotFound = errors.New("activity not found")
	ErrUnknownField     = errors.New("unknown field")
	ErrInvalidInput     = errors.New("invalid input")

	ErrForbiddenView         = fmt.Errorf("%w: cannot view workout", ErrUnauthorized)
	ErrForbiddenWorkoutEdit  = fmt.Errorf("%w: cannot edit workout", ErrUnauthorized)
	ErrForbiddenActivityEdit = fmt.Errorf("%w: cannot edit activity", ErrUnauthorized)
)

// User facing messages.
const (
	MsgAccessUnauthorized = "Access unauthorized."
	MsgCannotEditWorkout  = "You do not have permission to edit this workout"
	MsgCannotEditActivity = "You do not have permission to edit this activity"
	MsgCannotViewWorkout  = "You do not have permission to view this workout"
)

// DenialMessage returns the user facing message for an access error,
// or "" if err is not one.
func DenialMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return MsgAccessUnauthorized
	case errors.Is(err, ErrForbiddenWorkoutEdit):
		return MsgCannotEditWorkout
	case errors.Is(err, ErrForbiddenActivityEdit):
		return MsgCannotEditActivity
	case errors.Is(err, ErrForbiddenView):
		return MsgCannotViewWorkout
	case errors.Is(err, ErrUnauthorized):
		return MsgAccessUnauthorized
	}
	return ""
}
