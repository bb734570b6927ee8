package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the JWT claim set issued by the identity provider.
type Claims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	Role        string `json:"role"` // "authenticated" or "anon"
	DisplayName string `json:"display_name"`
	SessionID   string `json:"session_id"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// GetUserID returns the user ID from the subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}

// GetDisplayName falls back to the email when no display name was issued.
func (c *Claims) GetDisplayName() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Email
}
