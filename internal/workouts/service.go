package workouts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/workoutcompanion/internal/auth"
	"github.com/2beens/workoutcompanion/internal/exercises"
	"github.com/2beens/workoutcompanion/internal/telemetry/metrics"
	"github.com/2beens/workoutcompanion/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=workouts_mocks_test.go -package=workouts_test

const RecentPublicLimit = 12

type workoutsRepo interface {
	CreateWorkout(ctx context.Context, w Workout) (*Workout, error)
	GetWorkout(ctx context.Context, id int) (*Workout, error)
	UpdateWorkout(ctx context.Context, w Workout) (*Workout, error)
	DeleteWorkout(ctx context.Context, id int) error
	ListWorkouts(ctx context.Context, params ListParams) ([]Workout, error)
	WorkoutActivities(ctx context.Context, workoutID int) ([]Activity, error)
	GetActivity(ctx context.Context, id int) (*Activity, error)
	AddActivity(ctx context.Context, workoutID int, a Activity) (*Activity, error)
	UpdateActivity(ctx context.Context, a Activity) (*Activity, error)
	DeleteActivity(ctx context.Context, id int) error
	CopyWorkout(ctx context.Context, sourceID int, target Workout, performedBy *int) (*Workout, error)
}

type exerciseFinder interface {
	GetByName(ctx context.Context, name string) (*exercises.Exercise, error)
}

// Service applies the access rules to every workout and activity operation.
// The viewer is nil for anonymous requests.
type Service struct {
	repo           workoutsRepo
	exercises      exerciseFinder
	metricsManager *metrics.Manager
}

func NewService(repo workoutsRepo, exercises exerciseFinder, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		exercises:      exercises,
		metricsManager: metricsManager,
	}
}

func (s *Service) CreateWorkout(ctx context.Context, viewer *auth.Identity) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if viewer == nil {
		return nil, ErrUnauthenticated
	}

	w, err := s.repo.CreateWorkout(ctx, Workout{
		Creator:   viewer.UserID,
		Name:      DefaultWorkoutName,
		IsPrivate: true,
		IsLogged:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("create workout: %w", err)
	}

	s.metricsManager.WorkoutOp("create")
	return w, nil
}

// GetWorkout returns a viewable workout with its activities, newest first.
func (s *Service) GetWorkout(ctx context.Context, viewer *auth.Identity, id int) (_ *Workout, _ []Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", id))

	w, err := s.repo.GetWorkout(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := CheckView(viewer, *w); err != nil {
		return nil, nil, err
	}

	activities, err := s.repo.WorkoutActivities(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("workout activities: %w", err)
	}
	return w, activities, nil
}

func (s *Service) GetEditableWorkout(ctx context.Context, viewer *auth.Identity, id int) (*Workout, error) {
	return s.ownedWorkout(ctx, viewer, id)
}

func (s *Service) ownedWorkout(ctx context.Context, viewer *auth.Identity, id int) (*Workout, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	w, err := s.repo.GetWorkout(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckWorkoutOwner(viewer, *w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) RenameWorkout(ctx context.Context, viewer *auth.Identity, id int, name string) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.rename")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	w, err := s.ownedWorkout(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}
	w.Name = name
	return s.repo.UpdateWorkout(ctx, *w)
}

func (s *Service) TogglePrivacy(ctx context.Context, viewer *auth.Identity, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.toggleprivacy")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	w, err := s.ownedWorkout(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	w.IsPrivate = !w.IsPrivate
	return s.repo.UpdateWorkout(ctx, *w)
}

func (s *Service) ToggleLogged(ctx context.Context, viewer *auth.Identity, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.togglelogged")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	w, err := s.ownedWorkout(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	w.IsLogged = !w.IsLogged
	return s.repo.UpdateWorkout(ctx, *w)
}

// DeleteWorkout returns the deleted workout. Its activities are kept.
func (s *Service) DeleteWorkout(ctx context.Context, viewer *auth.Identity, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	w, err := s.ownedWorkout(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteWorkout(ctx, id); err != nil {
		return nil, err
	}

	s.metricsManager.WorkoutOp("delete")
	return w, nil
}

// WorkoutActivities lists activities of a workout for a logged-in viewer.
func (s *Service) WorkoutActivities(ctx context.Context, viewer *auth.Identity, id int) (_ []Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.activities")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	_, activities, err := s.GetWorkout(ctx, viewer, id)
	return activities, err
}

// AuthorizeWorkoutEdit reports whether viewer may add activities to the workout.
func (s *Service) AuthorizeWorkoutEdit(ctx context.Context, viewer *auth.Identity, workoutID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.authorize")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = s.ownedWorkout(ctx, viewer, workoutID)
	return err
}

// AuthorizeActivityEdit reports whether viewer may change the activity.
func (s *Service) AuthorizeActivityEdit(ctx context.Context, viewer *auth.Identity, activityID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.activities.authorize")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	_, err = s.ownedActivity(ctx, viewer, activityID)
	return err
}

func (s *Service) AddActivity(ctx context.Context, viewer *auth.Identity, workoutID int, patch ActivityPatch) (_ *Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.activities.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := s.ownedWorkout(ctx, viewer, workoutID); err != nil {
		return nil, err
	}
	if patch.Exercise == nil {
		return nil, fmt.Errorf("%w: exercise is required", ErrInvalidInput)
	}

	exercise, err := s.exercises.GetByName(ctx, *patch.Exercise)
	if err != nil {
		return nil, err
	}

	a := Activity{
		PerformedBy:  viewer.UserID,
		ExerciseID:   exercise.ID,
		ExerciseName: exercise.Name,
	}
	patch.Apply(&a)

	added, err := s.repo.AddActivity(ctx, workoutID, a)
	if err != nil {
		return nil, fmt.Errorf("add activity: %w", err)
	}
	added.ExerciseName = exercise.Name

	s.metricsManager.ActivityOp("add")
	return added, nil
}

func (s *Service) ownedActivity(ctx context.Context, viewer *auth.Identity, id int) (*Activity, error) {
	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	a, err := s.repo.GetActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckActivityOwner(viewer, *a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateActivity applies the whitelisted patch fields. A supplied exercise is
// resolved by name.
func (s *Service) UpdateActivity(ctx context.Context, viewer *auth.Identity, activityID int, patch ActivityPatch) (_ *Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.activities.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.StringSlice("fields", patch.Fields))

	a, err := s.ownedActivity(ctx, viewer, activityID)
	if err != nil {
		return nil, err
	}

	if patch.Exercise != nil {
		exercise, err := s.exercises.GetByName(ctx, *patch.Exercise)
		if err != nil {
			return nil, err
		}
		a.ExerciseID = exercise.ID
		a.ExerciseName = exercise.Name
	}
	patch.Apply(a)

	updated, err := s.repo.UpdateActivity(ctx, *a)
	if err != nil {
		return nil, fmt.Errorf("update activity: %w", err)
	}

	s.metricsManager.ActivityOp("update")
	return updated, nil
}

func (s *Service) DeleteActivity(ctx context.Context, viewer *auth.Identity, activityID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.activities.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := s.ownedActivity(ctx, viewer, activityID); err != nil {
		return err
	}
	if err := s.repo.DeleteActivity(ctx, activityID); err != nil {
		return err
	}

	s.metricsManager.ActivityOp("delete")
	return nil
}

// CloneWorkout copies any workout, visible or not, into a new private and
// logged workout of the viewer. The copied activities belong to the viewer.
func (s *Service) CloneWorkout(ctx context.Context, viewer *auth.Identity, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.clone")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if viewer == nil {
		return nil, ErrUnauthenticated
	}
	source, err := s.repo.GetWorkout(ctx, id)
	if err != nil {
		return nil, err
	}

	cloned, err := s.repo.CopyWorkout(ctx, source.ID, Workout{
		Creator:   viewer.UserID,
		Name:      source.Name,
		IsPrivate: true,
		IsLogged:  true,
	}, &viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("clone workout %d: %w", id, err)
	}

	s.metricsManager.WorkoutOp("clone")
	return cloned, nil
}

// ShareWorkout duplicates an owned workout as a public, unlogged one.
// The copied activities keep their performers.
func (s *Service) ShareWorkout(ctx context.Context, viewer *auth.Identity, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.workouts.share")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	source, err := s.ownedWorkout(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	shared, err := s.repo.CopyWorkout(ctx, source.ID, Workout{
		Creator:   source.Creator,
		Name:      source.Name,
		IsPrivate: false,
		IsLogged:  false,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("share workout %d: %w", id, err)
	}

	s.metricsManager.WorkoutOp("share")
	return shared, nil
}

func (s *Service) RecentPublicWorkouts(ctx context.Context) ([]Workout, error) {
	return s.repo.ListWorkouts(ctx, ListParams{
		IncludePrivate: false,
		Limit:          RecentPublicLimit,
	})
}

// UserWorkouts lists a user's workouts, private ones only for the owner.
func (s *Service) UserWorkouts(ctx context.Context, viewer *auth.Identity, userID int) ([]Workout, error) {
	return s.repo.ListWorkouts(ctx, ListParams{
		Creator:        &userID,
		IncludePrivate: IncludePrivate(viewer, userID),
	})
}

// IsNotFound reports errors that should end up as a 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkoutNotFound) ||
		errors.Is(err, ErrActivityNotFound) ||
		errors.Is(err, exercises.ErrExerciseNotFound)
}
