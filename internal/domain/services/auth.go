package services

import (
	"context"

	models "quillhouse/internal/domain/models/workspace"
)

// ResourceAuthorizer decides who may read and who may write workspace resources.
//
// Readers are the project owner and its collaborators. Writers depend on the
// resource: the Master document belongs to the project owner, a file to its owner.
// Can* methods return domain.ErrForbidden (wrapped) when access is denied and
// domain.ErrNotFound when the resource does not exist.
type ResourceAuthorizer interface {
	// CanViewProject checks the user owns or collaborates on the project
	CanViewProject(ctx context.Context, userID, projectID string) (*models.Project, error)

	// CanEditProject checks the user owns the project
	CanEditProject(ctx context.Context, userID, projectID string) (*models.Project, error)

	// CanViewFile checks the user can view the file's project
	CanViewFile(ctx context.Context, userID, fileID string) (*models.File, error)

	// CanEditFile checks the user owns the file
	CanEditFile(ctx context.Context, userID, fileID string) (*models.File, error)

	// CanCreateInFolder checks the user may add files to the folder
	CanCreateInFolder(ctx context.Context, userID, folderID string) (*models.Folder, error)
}
