package workspace

import (
	"context"

	models "quillhouse/internal/domain/models/workspace"
)

// FileService handles file business logic
type FileService interface {
	CreateFile(ctx context.Context, req *CreateFileRequest) (*models.File, error)
	GetFile(ctx context.Context, userID, fileID string) (*models.File, error)

	// SaveContent stores a content snapshot. File owner only.
	SaveContent(ctx context.Context, userID, fileID string, req *SaveContentRequest) (*SaveResult, error)

	DeleteFile(ctx context.Context, userID, fileID string) error
}

// CreateFileRequest represents a file creation request
type CreateFileRequest struct {
	FolderID string `json:"-"` // From the route
	UserID   string `json:"-"`
	Label    string `json:"label"`
}
