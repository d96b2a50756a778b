package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/workoutcompanion/internal/auth"
	"github.com/2beens/workoutcompanion/internal/telemetry/tracing"
	"github.com/2beens/workoutcompanion/internal/users"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=session_mocks_test.go -package=middleware_test

type sessionChecker interface {
	UserID(ctx context.Context, token string) (int, error)
}

type userGetter interface {
	Get(ctx context.Context, id int) (*users.User, error)
}

// Session resolves the session cookie to an auth.Identity in the request context.
// Requests without a valid session go on as anonymous.
func Session(checker sessionChecker, usersGetter userGetter, cookieName string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.session")
			identity := resolveIdentity(ctx, checker, usersGetter, cookie.Value)
			if identity != nil {
				span.SetAttributes(attribute.Int("user.id", identity.UserID))
				span.SetStatus(codes.Ok, "ok")
			}
			span.End()

			if identity == nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}

func resolveIdentity(ctx context.Context, checker sessionChecker, usersGetter userGetter, token string) *auth.Identity {
	userID, err := checker.UserID(ctx, token)
	if err != nil {
		if !errors.Is(err, auth.ErrSessionNotFound) {
			log.Errorf("session middleware, check session: %s", err)
		}
		return nil
	}

	user, err := usersGetter.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, users.ErrUserNotFound) {
			log.Errorf("session middleware, get user %d: %s", userID, err)
		}
		return nil
	}

	return &auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
	}
}
