package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// MaxBodyBytes bounds JSON request bodies
const MaxBodyBytes = 10 << 20

// ErrBodyTooLarge is returned by ParseJSON when the body exceeds MaxBodyBytes
var ErrBodyTooLarge = errors.New("request body too large")

// ParseJSON decodes JSON from the request body into the given destination.
// It limits the request body size to prevent abuse and provides clear error messages.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	// Requires w for proper 413 response
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	// Unknown fields are ignored so older clients keep working as fields are added.
	// Validation is performed downstream via domain-specific validators.

	if err := decoder.Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxErr.Limit)
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// RespondParseError writes the response for a ParseJSON failure
func RespondParseError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBodyTooLarge) {
		RespondError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	RespondError(w, http.StatusBadRequest, "Invalid request body")
}
