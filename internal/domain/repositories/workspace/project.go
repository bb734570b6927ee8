package workspace

import (
	"context"
	"time"

	models "quillhouse/internal/domain/models/workspace"
)

// ProjectRepository defines data access operations for projects
type ProjectRepository interface {
	// Create inserts a project and fills in its generated ID and timestamps
	Create(ctx context.Context, project *models.Project) error

	// GetByID retrieves a project by ID. Access checks are the caller's job.
	GetByID(ctx context.Context, id string) (*models.Project, error)

	// ListForUser retrieves projects the user owns or collaborates on,
	// most recently opened first
	ListForUser(ctx context.Context, userID string) ([]models.Project, error)

	// Update updates title, description and genres
	Update(ctx context.Context, project *models.Project) error

	// UpdateContent stores the Master document content if revision is newer than the
	// stored one. Returns false when the write was superseded by a newer revision.
	UpdateContent(ctx context.Context, id, content string, wordCount int, revision int64) (bool, error)

	// SetPublished marks the project as published
	SetPublished(ctx context.Context, id string, at time.Time) error

	// Touch records that the project was opened
	Touch(ctx context.Context, id string, at time.Time) error

	// AddCollaborator appends userID to the collaborator list (idempotent)
	AddCollaborator(ctx context.Context, id, userID string) error

	// RemoveCollaborator removes userID from the collaborator list
	RemoveCollaborator(ctx context.Context, id, userID string) error

	// Delete removes the project; folders, files and messages cascade
	Delete(ctx context.Context, id string) error
}
