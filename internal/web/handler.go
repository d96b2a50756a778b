package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/workoutcompanion/internal/auth"
	"github.com/2beens/workoutcompanion/internal/telemetry/tracing"
	"github.com/2beens/workoutcompanion/internal/users"
	"github.com/2beens/workoutcompanion/internal/workouts"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=web_mocks_test.go -package=web_test

const (
	MsgRedundantLogin      = "You are already logged in."
	MsgSuccessfulLogin     = "You have successfully logged in."
	MsgAuthFailure         = "Invalid credentials."
	MsgSuccessfulLogout    = "You have been logged out."
	MsgRedundantLogout     = "You are not logged in."
	MsgUsernameTaken       = "Username already taken"
	MsgEmailTaken          = "Email already taken"
	MsgWorkoutCloned       = "Workout cloned."
	MsgWorkoutShared       = "A shared copy of the workout was created."
	MsgWorkoutDeleted      = "Workout deleted."
	msgWelcomeFormat       = "Welcome to %s!"
	workoutPathPattern     = `^/workouts/(\d+)(/.*)?$`
	defaultAfterLoginRoute = "/"
)

var workoutPathRegex = regexp.MustCompile(workoutPathPattern)

type workoutsService interface {
	CreateWorkout(ctx context.Context, viewer *auth.Identity) (*workouts.Workout, error)
	GetWorkout(ctx context.Context, viewer *auth.Identity, id int) (*workouts.Workout, []workouts.Activity, error)
	GetEditableWorkout(ctx context.Context, viewer *auth.Identity, id int) (*workouts.Workout, error)
	DeleteWorkout(ctx context.Context, viewer *auth.Identity, id int) (*workouts.Workout, error)
	CloneWorkout(ctx context.Context, viewer *auth.Identity, id int) (*workouts.Workout, error)
	ShareWorkout(ctx context.Context, viewer *auth.Identity, id int) (*workouts.Workout, error)
	RecentPublicWorkouts(ctx context.Context) ([]workouts.Workout, error)
	UserWorkouts(ctx context.Context, viewer *auth.Identity, userID int) ([]workouts.Workout, error)
}

type usersService interface {
	SignUp(ctx context.Context, username, email, password string) (*users.User, error)
	Authenticate(ctx context.Context, username, password string) (*users.User, error)
	Get(ctx context.Context, id int) (*users.User, error)
}

type sessionStore interface {
	Login(ctx context.Context, userID int, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

type Handler struct {
	workouts  workoutsService
	users     usersService
	sessions  sessionStore
	cookie    CookieConfig
	templates map[string]*template.Template
}

func NewHandler(
	workoutService workoutsService,
	userService usersService,
	sessions sessionStore,
	cookie CookieConfig,
) (*Handler, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Handler{
		workouts:  workoutService,
		users:     userService,
		sessions:  sessions,
		cookie:    cookie,
		templates: templates,
	}, nil
}

// SetupRoutes registers the pages. Login and sign-up submissions go through rateLimit.
func (handler *Handler) SetupRoutes(router *mux.Router, rateLimit mux.MiddlewareFunc) {
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", staticFiles())).Methods("GET").Name("static")

	router.HandleFunc("/", handler.HandleHome).Methods("GET").Name("home")
	router.HandleFunc("/signup", handler.HandleSignupForm).Methods("GET").Name("signup-form")
	router.Handle("/signup", rateLimit(http.HandlerFunc(handler.HandleSignup))).Methods("POST").Name("signup")
	router.HandleFunc("/login", handler.HandleLoginForm).Methods("GET").Name("login-form")
	router.Handle("/login", rateLimit(http.HandlerFunc(handler.HandleLogin))).Methods("POST").Name("login")
	router.HandleFunc("/logout", handler.HandleLogout).Methods("GET", "POST").Name("logout")

	router.HandleFunc("/workouts", handler.HandleMyWorkouts).Methods("GET").Name("my-workouts")
	router.HandleFunc("/workouts/new", handler.HandleNewWorkout).Methods("GET", "POST").Name("new-workout")
	router.HandleFunc("/workouts/{id:[0-9]+}", handler.HandleWorkout).Methods("GET").Name("workout")
	router.HandleFunc("/workouts/{id:[0-9]+}/edit", handler.HandleEditWorkout).Methods("GET").Name("edit-workout")
	router.HandleFunc("/workouts/{id:[0-9]+}/clone", handler.HandleCloneWorkout).Methods("GET", "POST").Name("clone-workout")
	router.HandleFunc("/workouts/{id:[0-9]+}/share", handler.HandleShareWorkout).Methods("GET", "POST").Name("share-workout")
	router.HandleFunc("/workouts/{id:[0-9]+}/delete", handler.HandleDeleteWorkout).Methods("GET", "POST").Name("delete-workout")
	router.HandleFunc("/users/{id:[0-9]+}/workouts", handler.HandleUserWorkouts).Methods("GET").Name("user-workouts")

	router.NotFoundHandler = http.HandlerFunc(handler.HandleNotFound)
}

func (handler *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	handler.renderError(w, r, http.StatusNotFound)
}

func (handler *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.web.home")
	defer span.End()

	recent, err := handler.workouts.RecentPublicWorkouts(ctx)
	if err != nil {
		log.Errorf("home, recent public workouts: %s", err)
	}

	handler.render(w, r, http.StatusOK, "home", pageData{
		Workouts: workouts.WorkoutViews(recent),
	})
}

func (handler *Handler) HandleSignupForm(w http.ResponseWriter, r *http.Request) {
	handler.render(w, r, http.StatusOK, "signup", pageData{Form: SignupForm{}})
}

func (handler *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.web.signup")
	defer span.End()

	form := ParseSignupForm(r)
	if !form.Validate() {
		handler.render(w, r, http.StatusOK, "signup", pageData{Form: form})
		return
	}

	user, err := handler.users.SignUp(ctx, form.Username, form.Email, form.Password)
	switch {
	case errors.Is(err, users.ErrUsernameTaken):
		form.Errors["username"] = MsgUsernameTaken
		handler.render(w, r, http.StatusOK, "signup", pageData{Form: form})
		return
	case errors.Is(err, users.ErrEmailTaken):
		form.Errors["email"] = MsgEmailTaken
		handler.render(w, r, http.StatusOK, "signup", pageData{Form: form})
		return
	case err != nil:
		log.Errorf("signup [%s]: %s", form.Username, err)
		handler.renderError(w, r, http.StatusInternalServerError)
		return
	}

	if err := handler.startSession(ctx, w, user.ID); err != nil {
		log.Errorf("signup [%s], start session: %s", form.Username, err)
		handler.renderError(w, r, http.StatusInternalServerError)
		return
	}

	AddFlash(w, r, FlashSuccess, fmt.Sprintf(msgWelcomeFormat, AppName))
	http.Redirect(w, r, defaultAfterLoginRoute, http.StatusSeeOther)
}

func (handler *Handler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	if auth.IdentityFrom(r.Context()) != nil {
		AddFlash(w, r, FlashInfo, MsgRedundantLogin)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	handler.render(w, r, http.StatusOK, "login", pageData{Form: LoginForm{}})
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.web.login")
	defer span.End()

	if auth.IdentityFrom(ctx) != nil {
		AddFlash(w, r, FlashInfo, MsgRedundantLogin)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	form := ParseLoginForm(r)
	if !form.Validate() {
		handler.render(w, r, http.StatusOK, "login", pageData{Form: form})
		return
	}

	user, err := handler.users.Authenticate(ctx, form.Username, form.Password)
	if errors.Is(err, users.ErrAuthenticationFailed) {
		AddFlash(w, r, FlashDanger, MsgAuthFailure)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err != nil {
		log.Errorf("login [%s]: %s", form.Username, err)
		handler.renderError(w, r, http.StatusInternalServerError)
		return
	}

	if err := handler.startSession(ctx, w, user.ID); err != nil {
		log.Errorf("login [%s], start session: %s", form.Username, err)
		handler.renderError(w, r, http.StatusInternalServerError)
		return
	}

	AddFlash(w, r, FlashSuccess, MsgSuccessfulLogin)
	http.Redirect(w, r, defaultAfterLoginRoute, http.StatusSeeOther)
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.web.logout")
	defer span.End()

	if auth.IdentityFrom(ctx) == nil {
		AddFlash(w, r, FlashInfo, MsgRedundantLogout)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if cookie, err := r.Cookie(handler.cookie.Name); err == nil && cookie.Value != "" {
		if _, err := handler.sessions.Logout(ctx, cookie.Value); err != nil {
			log.Errorf("logout: %s", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     handler.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   handler.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	AddFlash(w, r, FlashSuccess, MsgSuccessfulLogout)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (handler *Handler) startSession(ctx context.Context, w http.ResponseWriter, userID int) error {
	token, err := handler.sessions.Login(ctx, userID, time.Now())
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     handler.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(handler.cookie.TTL),
		HttpOnly: true,
		Secure:   handler.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (handler *Handler) HandleMyWorkouts(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.web.myworkouts")
	defer span.End()

	viewer := auth.IdentityFrom(ctx)
	if viewer == nil {
		handler.handleError(w, r, workouts.ErrUnauthenticated, "/")
		return
	}

	list, err := handler.workouts.UserWorkouts(ctx, viewer, viewer.UserID)
	if err != nil {
		handler.handleError(w, r, err, "/")
		return
	}

	handler.render(w, r, http.StatusOK, "user_workouts", pageData{
		Owner:    &users.User{ID: viewer.UserID, Username: viewer.Username},
		Workouts: workouts.WorkoutViews(list),
	})
}

func (handler *Handler) HandleNewWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.web.newworkout")
	defer span.End()

	created, err := handler.workouts.CreateWorkout(ctx, auth.IdentityFrom(ctx))
	if err != nil {
		handler.handleError(w, r, err, "/")
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/workouts/%d/edit", created.ID), http.StatusSeeOther)
}

func (handler *Handler) HandleWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.web.workout")
	defer span.End()

	id := workoutID(r)
	span.SetAttributes(attribute.Int("workout.id", id))
	viewer := auth.IdentityFrom(ctx)

	workout, activities, err := handler.workouts.GetWorkout(ctx, viewer, id)
	if err != nil {
		handler.handleError(w, r, err, "/")
		return
	}

	handler.render(w, r, http.StatusOK, "workout", pageData{
		IsOwner:    viewer != nil && viewer.UserID == workout.Creator,
		Workout:    workout.Serialize(),
		Activities: workouts.ActivityViews(activities),
	})
}

func (handler *Handler) HandleEditWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.web.editworkout")
	defer span.End()

	id := workoutID(r)
	span.SetAttributes(attribute.Int("workout.id", id))

	editable, err := handler.workouts.GetEditableWorkout(ctx, auth.IdentityFrom(ctx), id)
	if err != nil {
		handler.handleError(w, r, err, fmt.Sprintf("/workouts/%d", id))
		return
	}

	handler.render(w, r, http.StatusOK, "workout_edit", pageData{
		IsOwner: true,
		Workout: editable.Serialize(),
	})
}

func (handler *Handler) HandleCloneWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.web.cloneworkout")
	defer span.End()

	id := workoutID(r)
	span.SetAttributes(attribute.Int("workout.id", id))

	cloned, err := handler.workouts.CloneWorkout(ctx, auth.IdentityFrom(ctx), id)
	if err != nil {
		handler.handleError(w, r, err, "/")
		return
	}

	AddFlash(w, r, FlashSuccess, MsgWorkoutCloned)
	http.Redirect(w, r, fmt.Sprintf("/workouts/%d/edit", cloned.ID), http.StatusSeeOther)
}

func (handler *Handler) HandleShareWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.web.shareworkout")
	defer span.End()

	id := workoutID(r)
	span.SetAttributes(attribute.Int("workout.id", id))

	shared, err := handler.workouts.ShareWorkout(ctx, auth.IdentityFrom(ctx), id)
	if err != nil {
		handler.handleError(w, r, err, fmt.Sprintf("/workouts/%d", id))
		return
	}

	AddFlash(w, r, FlashSuccess, MsgWorkoutShared)
	http.Redirect(w, r, fmt.Sprintf("/workouts/%d", shared.ID), http.StatusSeeOther)
}

func (handler *Handler) HandleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.web.deleteworkout")
	defer span.End()

	id := workoutID(r)
	span.SetAttributes(attribute.Int("workout.id", id))

	deleted, err := handler.workouts.DeleteWorkout(ctx, auth.IdentityFrom(ctx), id)
	if err != nil {
		handler.handleError(w, r, err, fmt.Sprintf("/workouts/%d", id))
		return
	}

	AddFlash(w, r, FlashSuccess, MsgWorkoutDeleted)
	http.Redirect(w, r, redirectAfterDelete(r, *deleted), http.StatusSeeOther)
}

func (handler *Handler) HandleUserWorkouts(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.web.userworkouts")
	defer span.End()

	userID, _ := strconv.Atoi(mux.Vars(r)["id"])
	span.SetAttributes(attribute.Int("user.id", userID))

	owner, err := handler.users.Get(ctx, userID)
	if errors.Is(err, users.ErrUserNotFound) {
		handler.renderError(w, r, http.StatusNotFound)
		return
	}
	if err != nil {
		handler.handleError(w, r, err, "/")
		return
	}

	list, err := handler.workouts.UserWorkouts(ctx, auth.IdentityFrom(ctx), userID)
	if err != nil {
		handler.handleError(w, r, err, "/")
		return
	}

	handler.render(w, r, http.StatusOK, "user_workouts", pageData{
		Owner:    owner,
		Workouts: workouts.WorkoutViews(list),
	})
}

// handleError maps service errors to pages: missing things get a 404, denied
// access a flash and a redirect to denyRedirect (or home for anonymous users).
func (handler *Handler) handleError(w http.ResponseWriter, r *http.Request, err error, denyRedirect string) {
	switch {
	case workouts.IsNotFound(err):
		handler.renderError(w, r, http.StatusNotFound)
	case errors.Is(err, workouts.ErrUnauthenticated):
		AddFlash(w, r, FlashDanger, workouts.MsgAccessUnauthorized)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, workouts.ErrUnauthorized):
		AddFlash(w, r, FlashDanger, workouts.DenialMessage(err))
		http.Redirect(w, r, denyRedirect, http.StatusSeeOther)
	default:
		log.Errorf("web [%s %s]: %s", r.Method, r.URL.Path, err)
		handler.renderError(w, r, http.StatusInternalServerError)
	}
}

func workoutID(r *http.Request) int {
	// the route only matches digits
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

// redirectAfterDelete goes back to the referring page unless it showed the
// deleted workout, falling back to the owner's workouts.
func redirectAfterDelete(r *http.Request, deleted workouts.Workout) string {
	fallback := fmt.Sprintf("/users/%d/workouts", deleted.Creator)

	referer, err := url.Parse(r.Referer())
	if err != nil || referer.Path == "" {
		return fallback
	}
	if referer.Host != "" && referer.Host != r.Host {
		return fallback
	}
	// browsers read "//host" and "/\host" as another origin
	if !strings.HasPrefix(referer.Path, "/") ||
		strings.HasPrefix(referer.Path, "//") ||
		strings.HasPrefix(referer.Path, "/\\") {
		return fallback
	}

	if m := workoutPathRegex.FindStringSubmatch(referer.Path); m != nil {
		if refID, _ := strconv.Atoi(m[1]); refID == deleted.ID {
			return fallback
		}
	}

	target := referer.Path
	if referer.RawQuery != "" {
		target += "?" + referer.RawQuery
	}
	return target
}
