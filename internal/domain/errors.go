package domain

import (
	"errors"
	"time"
)

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrPublished is returned when a draft write targets a project that has been published.
	ErrPublished = errors.New("project already published")
)

// NotFoundError names the missing resource. It matches ErrNotFound.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string        { return e.Message }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError reports a uniqueness clash, such as a duplicate slug.
type ConflictError struct {
	Message      string
	ResourceType string // project, folder, file
	Slug         string
}

func (e *ConflictError) Error() string        { return e.Message }
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// PublishedError rejects a write to a project whose Master draft is frozen.
type PublishedError struct {
	ProjectID   string
	PublishedAt *time.Time
}

func (e *PublishedError) Error() string {
	return "project " + e.ProjectID + ": " + ErrPublished.Error()
}

func (e *PublishedError) Is(target error) bool { return target == ErrPublished }
