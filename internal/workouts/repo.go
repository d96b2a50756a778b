package workouts

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/workoutcompanion/internal/telemetry/tracing"
	"github.com/2beens/workoutcompanion/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const (
	workoutColumns  = `id, creator, name, created_at, is_private, is_logged`
	activityColumns = `a.id, a.performed_by, a.exercise_id, e.name,
		a.weight, a.weight_units, a.reps, a.sets, a.duration, a.duration_units,
		a.distance, a.distance_units, a.created_at`

	// postgres default name for workout_activities.workout_id REFERENCES workouts
	workoutLinkFKConstraint = "workout_activities_workout_id_fkey"
)

type ListParams struct {
	// Creator limits the list to one user's workouts when set.
	Creator        *int
	IncludePrivate bool
	Limit          int
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func scanWorkout(row pgx.Row) (*Workout, error) {
	w := &Workout{}
	if err := row.Scan(&w.ID, &w.Creator, &w.Name, &w.CreatedAt, &w.IsPrivate, &w.IsLogged); err != nil {
		return nil, err
	}
	return w, nil
}

func scanActivity(row pgx.Row) (*Activity, error) {
	a := &Activity{}
	err := row.Scan(
		&a.ID, &a.PerformedBy, &a.ExerciseID, &a.ExerciseName,
		&a.Weight, &a.WeightUnits, &a.Reps, &a.Sets, &a.Duration, &a.DurationUnits,
		&a.Distance, &a.DistanceUnits, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *Repo) CreateWorkout(ctx context.Context, w Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return scanWorkout(r.db.QueryRow(ctx, `
		INSERT INTO workouts (creator, name, is_private, is_logged)
		VALUES ($1, $2, $3, $4)
		RETURNING `+workoutColumns,
		w.Creator, w.Name, w.IsPrivate, w.IsLogged,
	))
}

func (r *Repo) GetWorkout(ctx context.Context, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", id))

	w, err := scanWorkout(r.db.QueryRow(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	return w, err
}

// UpdateWorkout stores name and flags. The creator never changes.
func (r *Repo) UpdateWorkout(ctx context.Context, w Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", w.ID))

	updated, err := scanWorkout(r.db.QueryRow(ctx, `
		UPDATE workouts SET name = $2, is_private = $3, is_logged = $4
		WHERE id = $1
		RETURNING `+workoutColumns,
		w.ID, w.Name, w.IsPrivate, w.IsLogged,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	return updated, err
}

// DeleteWorkout removes the workout and its link rows, the activities stay.
func (r *Repo) DeleteWorkout(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func (r *Repo) ListWorkouts(ctx context.Context, params ListParams) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	if params.Creator != nil {
		span.SetAttributes(attribute.Int("creator", *params.Creator))
	}
	span.SetAttributes(attribute.Bool("include-private", params.IncludePrivate))

	var limit *int
	if params.Limit > 0 {
		limit = &params.Limit
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+workoutColumns+`
		FROM workouts
		WHERE ($1::int IS NULL OR creator = $1)
		  AND ($2::boolean OR is_private = FALSE)
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, params.Creator, params.IncludePrivate, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]Workout, 0)
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// WorkoutActivities returns the linked activities, newest first.
func (r *Repo) WorkoutActivities(ctx context.Context, workoutID int) (_ []Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.activities")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	return queryActivities(ctx, r.db, workoutID)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryActivities(ctx context.Context, q querier, workoutID int) ([]Activity, error) {
	rows, err := q.Query(ctx, `
		SELECT `+activityColumns+`
		FROM workout_activities wa
		JOIN activities a ON a.id = wa.activity_id
		JOIN exercises e ON e.id = a.exercise_id
		WHERE wa.workout_id = $1
		ORDER BY a.created_at DESC, a.id DESC
	`, workoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Repo) GetActivity(ctx context.Context, id int) (_ *Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("activity.id", id))

	a, err := scanActivity(r.db.QueryRow(ctx, `
		SELECT `+activityColumns+`
		FROM activities a
		JOIN exercises e ON e.id = a.exercise_id
		WHERE a.id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	return a, err
}

// AddActivity inserts the activity and links it to the workout in one transaction.
func (r *Repo) AddActivity(ctx context.Context, workoutID int, a Activity) (_ *Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	added, err := insertActivity(ctx, tx, workoutID, a)
	if isMissingWorkout(err) {
		// deleted after the caller checked it
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}
	return added, nil
}

func isMissingWorkout(err error) bool {
	return pkg.IsForeignKeyViolationError(err) && pkg.ConstraintName(err) == workoutLinkFKConstraint
}

func insertActivity(ctx context.Context, tx pgx.Tx, workoutID int, a Activity) (*Activity, error) {
	err := tx.QueryRow(ctx, `
		INSERT INTO activities (
			performed_by, exercise_id, weight, weight_units, reps, sets,
			duration, duration_units, distance, distance_units
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`,
		a.PerformedBy, a.ExerciseID, a.Weight, a.WeightUnits, a.Reps, a.Sets,
		a.Duration, a.DurationUnits, a.Distance, a.DistanceUnits,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO workout_activities (workout_id, activity_id) VALUES ($1, $2)`,
		workoutID, a.ID,
	); err != nil {
		return nil, fmt.Errorf("link activity %d: %w", a.ID, err)
	}
	return &a, nil
}

// UpdateActivity stores the exercise and measurements. The performer never changes.
func (r *Repo) UpdateActivity(ctx context.Context, a Activity) (_ *Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("activity.id", a.ID))

	updated, err := scanActivity(r.db.QueryRow(ctx, `
		WITH a AS (
			UPDATE activities SET
				exercise_id = $2, weight = $3, weight_units = $4, reps = $5, sets = $6,
				duration = $7, duration_units = $8, distance = $9, distance_units = $10
			WHERE id = $1
			RETURNING *
		)
		SELECT `+activityColumns+`
		FROM a
		JOIN exercises e ON e.id = a.exercise_id
	`,
		a.ID, a.ExerciseID, a.Weight, a.WeightUnits, a.Reps, a.Sets,
		a.Duration, a.DurationUnits, a.Distance, a.DistanceUnits,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	return updated, err
}

func (r *Repo) DeleteActivity(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("activity.id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// CopyWorkout creates target and a new activity for every activity of the
// source workout, all in one transaction. New activities keep their original
// performer unless performedBy is set.
func (r *Repo) CopyWorkout(ctx context.Context, sourceID int, target Workout, performedBy *int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.copy")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.source.id", sourceID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	// lock the source so its activities can't change under the copy
	var exists bool
	err = tx.QueryRow(ctx, `SELECT TRUE FROM workouts WHERE id = $1 FOR SHARE`, sourceID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}

	sourceActivities, err := queryActivities(ctx, tx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("source activities: %w", err)
	}

	created, err := scanWorkout(tx.QueryRow(ctx, `
		INSERT INTO workouts (creator, name, is_private, is_logged)
		VALUES ($1, $2, $3, $4)
		RETURNING `+workoutColumns,
		target.Creator, target.Name, target.IsPrivate, target.IsLogged,
	))
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}

	// insert oldest first so the copies keep the source order
	for i := len(sourceActivities) - 1; i >= 0; i-- {
		a := sourceActivities[i]
		if performedBy != nil {
			a.PerformedBy = *performedBy
		}
		if _, err = insertActivity(ctx, tx, created.ID, a); err != nil {
			return nil, err
		}
	}

	span.SetAttributes(
		attribute.Int("workout.id", created.ID),
		attribute.Int("activities.copied", len(sourceActivities)),
	)
	return created, nil
}
