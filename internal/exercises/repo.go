package exercises

import (
	"context"
	"errors"

	"github.com/2beens/workoutcompanion/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) List(ctx context.Context) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(ctx, `SELECT id, name, type FROM exercises ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Exercise
	for rows.Next() {
		var e Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.Type); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("exercises.count", len(list)))
	return list, nil
}

func (r *Repo) GetByID(ctx context.Context, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.getbyid")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", id))

	var e Exercise
	err = r.db.QueryRow(ctx,
		`SELECT id, name, type FROM exercises WHERE id = $1`, id,
	).Scan(&e.ID, &e.Name, &e.Type)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByName is an exact, case sensitive match.
func (r *Repo) GetByName(ctx context.Context, name string) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.getbyname")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.name", name))

	var e Exercise
	err = r.db.QueryRow(ctx,
		`SELECT id, name, type FROM exercises WHERE name = $1`, name,
	).Scan(&e.ID, &e.Name, &e.Type)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Upsert inserts the exercises, updating the type of already known names.
func (r *Repo) Upsert(ctx context.Context, list []Exercise) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	batch := &pgx.Batch{}
	for _, e := range list {
		batch.Queue(
			`INSERT INTO exercises (name, type) VALUES ($1, $2)
				ON CONFLICT (name) DO UPDATE SET type = EXCLUDED.type`,
			e.Name, e.Type,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer func() {
		if closeErr := br.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	affected := 0
	for range list {
		tag, err := br.Exec()
		if err != nil {
			return affected, err
		}
		affected += int(tag.RowsAffected())
	}

	span.SetAttributes(attribute.Int("exercises.upserted", affected))
	return affected, nil
}
