package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"quillhouse/internal/domain"
	"quillhouse/internal/httputil"

	"github.com/google/uuid"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var (
		conflictErr  *domain.ConflictError
		publishedErr *domain.PublishedError
	)

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &publishedErr):
		extras := map[string]interface{}{"reason": "published"}
		if publishedErr.PublishedAt != nil {
			extras["published_at"] = publishedErr.PublishedAt
		}
		httputil.RespondErrorWithExtras(w, http.StatusConflict, err.Error(), extras)
	case errors.Is(err, domain.ErrPublished):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, err.Error(), map[string]interface{}{
			"reason": "published",
		})
	case errors.As(err, &conflictErr):
		extras := map[string]interface{}{"resource_type": conflictErr.ResourceType}
		if conflictErr.Slug != "" {
			extras["slug"] = conflictErr.Slug
		}
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), extras)
	default:
		slog.Error("unhandled error", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// PathParam returns the named path value if it is a well-formed UUID.
// On failure it writes a 400 response and returns false.
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, fmt.Sprintf("%s is required", label))
		return "", false
	}
	if _, err := uuid.Parse(value); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", label))
		return "", false
	}
	return value, true
}
