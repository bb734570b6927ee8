package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey      contextKey = "userID"
	displayNameKey contextKey = "displayName"
	requestIDKey   contextKey = "requestID"
)

// WithUser adds the authenticated user's ID and display name to the request context
func WithUser(r *http.Request, userID, displayName string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	ctx = context.WithValue(ctx, displayNameKey, displayName)
	return r.WithContext(ctx)
}

// GetUserID retrieves userID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// GetDisplayName retrieves the user's display name, falling back to the user ID
func GetDisplayName(r *http.Request) string {
	if name, _ := r.Context().Value(displayNameKey).(string); name != "" {
		return name
	}
	return GetUserID(r)
}

// WithRequestID adds a request ID to the request context
func WithRequestID(r *http.Request, requestID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID))
}

// GetRequestID retrieves the request ID from context
func GetRequestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}
