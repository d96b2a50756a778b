package workouts

import "github.com/2beens/workoutcompanion/internal/auth"

// CanView reports whether viewer (nil when anonymous) may see w.
func CanView(viewer *auth.Identity, w Workout) bool {
	if !w.IsPrivate {
		return true
	}
	return viewer != nil && viewer.UserID == w.Creator
}

func CheckView(viewer *auth.Identity, w Workout) error {
	if CanView(viewer, w) {
		return nil
	}
	if viewer == nil {
		return ErrUnauthenticated
	}
	return ErrForbiddenView
}

func CheckWorkoutOwner(viewer *auth.Identity, w Workout) error {
	if viewer == nil {
		return ErrUnauthenticated
	}
	if viewer.UserID != w.Creator {
		return ErrForbiddenWorkoutEdit
	}
	return nil
}

func CheckActivityOwner(viewer *auth.Identity, a Activity) error {
	if viewer == nil {
		return ErrUnauthenticated
	}
	if viewer.UserID != a.PerformedBy {
		return ErrForbiddenActivityEdit
	}
	return nil
}

// IncludePrivate reports whether a listing of ownerID's workouts shown to
// viewer should contain private ones.
func IncludePrivate(viewer *auth.Identity, ownerID int) bool {
	return viewer != nil && viewer.UserID == ownerID
}
