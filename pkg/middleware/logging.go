package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/arborfam/arbor/pkg/composables"
)

// RequestLogger attaches a request-scoped logrus entry to the context and
// logs method, path, status class and duration on completion.
func RequestLogger(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			entry := logger.WithFields(logrus.Fields{
				"request_id": uuid.NewString(),
				"method":     r.Method,
				"path":       r.URL.Path,
			})
			ctx := composables.WithLogger(r.Context(), entry)
			ctx = composables.WithParams(ctx, &composables.Params{
				IP:        r.RemoteAddr,
				UserAgent: r.UserAgent(),
				Request:   r,
				Writer:    w,
			})

			next.ServeHTTP(w, r.WithContext(ctx))

			entry.WithField("duration", time.Since(start).String()).Info("request completed")
		})
	}
}
