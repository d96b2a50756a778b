package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/2beens/workoutcompanion/internal/telemetry/metrics"
	"github.com/2beens/workoutcompanion/pkg"

	log "github.com/sirupsen/logrus"
)

const apiPathPrefix = "/api/"

// PanicRecovery turns a handler panic into a 500. API callers get the usual
// JSON error body, pages get plain text.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				log.WithFields(log.Fields{
					"request_id": req.Header.Get(RequestIDHeader),
					"method":     req.Method,
					"path":       req.URL.Path,
				}).Errorf("panic serving request: %v\n%s", rec, debug.Stack())
				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}

				if strings.HasPrefix(req.URL.Path, apiPathPrefix) {
					pkg.WriteJSON(w, http.StatusInternalServerError, map[string]string{"response": "Internal server error"})
					return
				}
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, req)
		})
	}
}
