package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"quillhouse/internal/httputil"
	"quillhouse/internal/metrics"
)

// Recovery turns a handler panic into a 500 problem response. A client that
// went away (http.ErrAbortHandler) is re-panicked so net/http can drop the
// connection quietly.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				metrics.HTTPPanicsTotal.WithLabelValues(r.Method).Inc()
				logger.Error("handler panic",
					"panic", fmt.Sprint(v),
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", httputil.GetRequestID(r),
					"user_id", httputil.GetUserID(r),
					"stack", string(debug.Stack()),
				)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
