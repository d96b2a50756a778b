package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/2beens/workoutcompanion/internal/auth"
	"github.com/2beens/workoutcompanion/internal/exercises"
	"github.com/2beens/workoutcompanion/internal/telemetry/tracing"
	"github.com/2beens/workoutcompanion/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=api_handler_mocks_test.go -package=workouts_test

const maxBodyBytes = 64 * 1024

type workoutsService interface {
	WorkoutActivities(ctx context.Context, viewer *auth.Identity, id int) ([]Activity, error)
	AddActivity(ctx context.Context, viewer *auth.Identity, workoutID int, patch ActivityPatch) (*Activity, error)
	AuthorizeWorkoutEdit(ctx context.Context, viewer *auth.Identity, workoutID int) error
	UpdateActivity(ctx context.Context, viewer *auth.Identity, activityID int, patch ActivityPatch) (*Activity, error)
	AuthorizeActivityEdit(ctx context.Context, viewer *auth.Identity, activityID int) error
	DeleteActivity(ctx context.Context, viewer *auth.Identity, activityID int) error
	RenameWorkout(ctx context.Context, viewer *auth.Identity, id int, name string) (*Workout, error)
	TogglePrivacy(ctx context.Context, viewer *auth.Identity, id int) (*Workout, error)
	ToggleLogged(ctx context.Context, viewer *auth.Identity, id int) (*Workout, error)
}

type ActivitiesResponse struct {
	Activities []ActivityView `json:"activities"`
}

type ActivityResponse struct {
	Activity ActivityView `json:"activity"`
}

type WorkoutResponse struct {
	Workout WorkoutView `json:"workout"`
}

type MessageResponse struct {
	Response string `json:"response"`
}

type RenameRequest struct {
	Name string `json:"name"`
}

type APIHandler struct {
	service workoutsService
}

func NewAPIHandler(service workoutsService) *APIHandler {
	return &APIHandler{
		service: service,
	}
}

func (handler *APIHandler) SetupRoutes(apiRouter *mux.Router) {
	apiRouter.HandleFunc("/workouts/{id:[0-9]+}/activities", handler.HandleGetActivities).Methods("GET", "OPTIONS").Name("get-workout-activities")
	apiRouter.HandleFunc("/workouts/{id:[0-9]+}/activities", handler.HandleAddActivity).Methods("POST", "OPTIONS").Name("new-workout-activity")
	apiRouter.HandleFunc("/workouts/{id:[0-9]+}/edit", handler.HandleRename).Methods("POST", "OPTIONS").Name("rename-workout")
	apiRouter.HandleFunc("/workouts/{id:[0-9]+}/share", handler.HandleToggleShare).Methods("GET", "OPTIONS").Name("toggle-workout-share")
	apiRouter.HandleFunc("/workouts/{id:[0-9]+}/log", handler.HandleToggleLog).Methods("GET", "OPTIONS").Name("toggle-workout-log")
	apiRouter.HandleFunc("/activities/{id:[0-9]+}/update", handler.HandleUpdateActivity).Methods("POST", "OPTIONS").Name("update-activity")
	apiRouter.HandleFunc("/activities/{id:[0-9]+}/delete", handler.HandleDeleteActivity).Methods("GET", "OPTIONS").Name("delete-activity")
}

func (handler *APIHandler) HandleGetActivities(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.activities")
	defer span.End()

	viewer, id, ok := viewerAndID(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("workout.id", id))

	activities, err := handler.service.WorkoutActivities(ctx, viewer, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, ActivitiesResponse{Activities: ActivityViews(activities)})
}

func (handler *APIHandler) HandleAddActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.activities.add")
	defer span.End()

	viewer, id, ok := viewerAndID(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("workout.id", id))

	patch, err := readActivityPatch(r)
	if err != nil {
		// a denial takes precedence over a bad body
		if authErr := handler.service.AuthorizeWorkoutEdit(ctx, viewer, id); authErr != nil {
			err = authErr
		}
		writeServiceError(w, err)
		return
	}

	added, err := handler.service.AddActivity(ctx, viewer, id, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	log.Debugf("activity %d added to workout %d by user %d", added.ID, id, viewer.UserID)
	pkg.WriteJSON(w, http.StatusCreated, ActivityResponse{Activity: added.View()})
}

func (handler *APIHandler) HandleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.update")
	defer span.End()

	viewer, id, ok := viewerAndID(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("activity.id", id))

	patch, err := readActivityPatch(r)
	if err != nil {
		if authErr := handler.service.AuthorizeActivityEdit(ctx, viewer, id); authErr != nil {
			err = authErr
		}
		writeServiceError(w, err)
		return
	}

	updated, err := handler.service.UpdateActivity(ctx, viewer, id, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkg.WriteJSON(w, http.StatusCreated, ActivityResponse{Activity: updated.View()})
}

func (handler *APIHandler) HandleDeleteActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.delete")
	defer span.End()

	viewer, id, ok := viewerAndID(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("activity.id", id))

	if err := handler.service.DeleteActivity(ctx, viewer, id); err != nil {
		writeServiceError(w, err)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, MessageResponse{Response: "Resource successfully deleted"})
}

func (handler *APIHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.rename")
	defer span.End()

	viewer, id, ok := viewerAndID(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("workout.id", id))

	var req RenameRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		log.Tracef("rename workout, unmarshal json params: %s", err)
		writeServiceError(w, fmt.Errorf("%w: %s", ErrInvalidInput, err))
		return
	}

	renamed, err := handler.service.RenameWorkout(ctx, viewer, id, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, WorkoutResponse{Workout: renamed.Serialize()})
}

func (handler *APIHandler) HandleToggleShare(w http.ResponseWriter, r *http.Request) {
	handler.handleToggle(w, r, "handler.workouts.toggleshare", handler.service.TogglePrivacy)
}

func (handler *APIHandler) HandleToggleLog(w http.ResponseWriter, r *http.Request) {
	handler.handleToggle(w, r, "handler.workouts.togglelog", handler.service.ToggleLogged)
}

func (handler *APIHandler) handleToggle(
	w http.ResponseWriter,
	r *http.Request,
	spanName string,
	toggle func(ctx context.Context, viewer *auth.Identity, id int) (*Workout, error),
) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), spanName)
	defer span.End()

	viewer, id, ok := viewerAndID(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("workout.id", id))

	toggled, err := toggle(ctx, viewer, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, WorkoutResponse{Workout: toggled.Serialize()})
}

// viewerAndID rejects anonymous requests before anything else is looked at.
func viewerAndID(w http.ResponseWriter, r *http.Request) (*auth.Identity, int, bool) {
	viewer := auth.IdentityFrom(r.Context())
	if viewer == nil {
		writeServiceError(w, ErrUnauthenticated)
		return nil, 0, false
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSON(w, http.StatusBadRequest, MessageResponse{Response: "invalid id"})
		return nil, 0, false
	}
	return viewer, id, true
}

func readActivityPatch(r *http.Request) (ActivityPatch, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return ActivityPatch{}, fmt.Errorf("%w: read body: %s", ErrInvalidInput, err)
	}
	return DecodeActivityPatch(data)
}

func writeServiceError(w http.ResponseWriter, err error) {
	if msg := DenialMessage(err); msg != "" {
		pkg.WriteJSON(w, http.StatusUnauthorized, MessageResponse{Response: msg})
		return
	}

	switch {
	case errors.Is(err, exercises.ErrExerciseNotFound):
		pkg.WriteJSON(w, http.StatusNotFound, MessageResponse{Response: "Exercise not found"})
	case errors.Is(err, ErrWorkoutNotFound):
		pkg.WriteJSON(w, http.StatusNotFound, MessageResponse{Response: "Workout not found"})
	case errors.Is(err, ErrActivityNotFound):
		pkg.WriteJSON(w, http.StatusNotFound, MessageResponse{Response: "Activity not found"})
	case errors.Is(err, ErrUnknownField), errors.Is(err, ErrInvalidInput):
		pkg.WriteJSON(w, http.StatusBadRequest, MessageResponse{Response: err.Error()})
	default:
		log.Errorf("workouts api: %s", err)
		pkg.WriteJSON(w, http.StatusInternalServerError, MessageResponse{Response: "Internal server error"})
	}
}
