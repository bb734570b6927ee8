package workspace

import (
	"context"

	models "quillhouse/internal/domain/models/workspace"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	// Create creates a new folder
	Create(ctx context.Context, folder *models.Folder) error

	// GetByID retrieves a folder by ID
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// CreateMasterIfNotExists returns the project's Master folder, creating it if missing
	CreateMasterIfNotExists(ctx context.Context, projectID string) (*models.Folder, error)

	// ListGroupsByProject returns every folder of the project with its file summaries.
	// The Master folder is always first; the rest follow creation order.
	ListGroupsByProject(ctx context.Context, projectID string) ([]models.FolderGroup, error)

	// Delete deletes a folder; its files cascade
	Delete(ctx context.Context, id string) error
}
