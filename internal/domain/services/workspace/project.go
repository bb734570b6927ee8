package workspace

import (
	"context"

	models "quillhouse/internal/domain/models/workspace"
)

// ProjectService handles project business logic
type ProjectService interface {
	// CreateProject creates a project together with its Master folder
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error)

	GetProject(ctx context.Context, userID, projectID string) (*models.Project, error)
	ListProjects(ctx context.Context, userID string) ([]models.Project, error)
	UpdateProject(ctx context.Context, userID, projectID string, req *UpdateProjectRequest) (*models.Project, error)
	DeleteProject(ctx context.Context, userID, projectID string) error

	// LoadDraft returns the project with its Master document content, creating the
	// Master folder if it is missing and recording the open.
	LoadDraft(ctx context.Context, userID, projectID string) (*models.Project, error)

	// SaveDraft stores Master document content. Owner only.
	SaveDraft(ctx context.Context, userID, projectID string, req *SaveContentRequest) (*SaveResult, error)

	// Publish marks the project published. Owner only.
	Publish(ctx context.Context, userID, projectID string) (*models.Project, error)

	AddCollaborator(ctx context.Context, userID, projectID, collaboratorID string) (*models.Project, error)
	RemoveCollaborator(ctx context.Context, userID, projectID, collaboratorID string) (*models.Project, error)
}

// CreateProjectRequest represents a project creation request
type CreateProjectRequest struct {
	UserID      string   `json:"-"` // Set by handler from auth context
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genres      []string `json:"genres"`
}

// UpdateProjectRequest represents a project metadata update
type UpdateProjectRequest struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Genres      []string `json:"genres,omitempty"` // Non-nil replaces; empty clears
}

// SaveContentRequest carries a full content snapshot.
// Revision orders writes from one editing session; older revisions never overwrite newer ones.
type SaveContentRequest struct {
	Content  string `json:"content"`
	Revision int64  `json:"revision"`
}

// SaveResult reports whether a save was applied or superseded by a newer revision.
type SaveResult struct {
	Applied   bool  `json:"applied"`
	Revision  int64 `json:"revision"`
	WordCount int   `json:"word_count"`
}

// AddCollaboratorRequest names the user to add
type AddCollaboratorRequest struct {
	UserID string `json:"user_id"`
}
