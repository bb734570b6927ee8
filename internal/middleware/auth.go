package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"quillhouse/internal/auth"
	"quillhouse/internal/httputil"
	"quillhouse/internal/metrics"
)

// publicPaths are served without a bearer token
var publicPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// AuthMiddleware validates the bearer token and stores the caller's identity in the request context
func AuthMiddleware(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				metrics.AuthAttemptsTotal.WithLabelValues("missing").Inc()
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				metrics.AuthAttemptsTotal.WithLabelValues("invalid").Inc()
				logger.Debug("token rejected",
					"path", r.URL.Path,
					"request_id", httputil.GetRequestID(r),
				)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()
			next.ServeHTTP(w, httputil.WithUser(r, claims.GetUserID(), claims.GetDisplayName()))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
