package exercises

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/workoutcompanion/internal/telemetry/tracing"
	"github.com/2beens/workoutcompanion/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=exercises_test

type exerciseCatalog interface {
	List(ctx context.Context) ([]Exercise, error)
	GetByName(ctx context.Context, name string) (*Exercise, error)
}

type ListResponse struct {
	Exercises []Exercise `json:"exercises"`
}

type GetResponse struct {
	Exercise Exercise `json:"exercise"`
}

type Handler struct {
	catalog exerciseCatalog
}

func NewHandler(catalog exerciseCatalog) *Handler {
	return &Handler{
		catalog: catalog,
	}
}

func (handler *Handler) SetupRoutes(apiRouter *mux.Router) {
	apiRouter.HandleFunc("/exercises", handler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	apiRouter.HandleFunc("/exercises/{name}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-exercise")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	list, err := handler.catalog.List(ctx)
	if err != nil {
		log.Errorf("list exercises: %s", err)
		pkg.WriteJSON(w, http.StatusInternalServerError, map[string]string{"response": "Internal server error"})
		return
	}

	span.SetAttributes(attribute.Int("exercises.count", len(list)))
	pkg.WriteJSON(w, http.StatusOK, ListResponse{Exercises: list})
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	name := mux.Vars(r)["name"]
	span.SetAttributes(attribute.String("exercise.name", name))

	e, err := handler.catalog.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			pkg.WriteJSON(w, http.StatusNotFound, map[string]string{"response": "Exercise not found"})
			return
		}
		log.Errorf("get exercise [%s]: %s", name, err)
		pkg.WriteJSON(w, http.StatusInternalServerError, map[string]string{"response": "Internal server error"})
		return
	}

	pkg.WriteJSON(w, http.StatusOK, GetResponse{Exercise: *e})
}
