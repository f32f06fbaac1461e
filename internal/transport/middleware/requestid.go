package middleware

import (
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/tenant-admin/pkg/logger"
)

// RequestTrace propagates the chi request id into the logger context and the
// response, so clients and log lines can be correlated. Runs after
// chi's RequestID middleware.
func RequestTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := middleware.GetReqID(r.Context())
		if reqID == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "request_id", reqID)
		w.Header().Set("X-Request-ID", reqID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
