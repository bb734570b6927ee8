package workspace

import (
	"context"

	models "quillhouse/internal/domain/models/workspace"
)

// FolderService handles folder business logic
type FolderService interface {
	// ListFolders returns every folder group of the project, Master first.
	// Per-user filtering happens in the client's tree builder.
	ListFolders(ctx context.Context, userID, projectID string) ([]models.FolderGroup, error)

	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)
	DeleteFolder(ctx context.Context, userID, folderID string) error
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	ProjectID  string `json:"-"` // From the route
	UserID     string `json:"-"`
	Label      string `json:"label"`
	SharedBase bool   `json:"shared_base"` // Owner only
}
