package auth

import (
	"context"
	"fmt"

	"quillhouse/internal/domain"
	models "quillhouse/internal/domain/models/workspace"
	wsRepo "quillhouse/internal/domain/repositories/workspace"
)

// CollaboratorAuthorizer implements ResourceAuthorizer for shared projects.
//
// Read access: the project owner and every collaborator.
// Write access: the Master document and project settings belong to the owner;
// a file belongs to the user who created it; a folder accepts new files from its
// owner, and shared-base folders accept them from the project owner.
type CollaboratorAuthorizer struct {
	projectRepo wsRepo.ProjectRepository
	folderRepo  wsRepo.FolderRepository
	fileRepo    wsRepo.FileRepository
}

// NewCollaboratorAuthorizer creates a new collaborator-aware authorizer
func NewCollaboratorAuthorizer(
	projectRepo wsRepo.ProjectRepository,
	folderRepo wsRepo.FolderRepository,
	fileRepo wsRepo.FileRepository,
) *CollaboratorAuthorizer {
	return &CollaboratorAuthorizer{
		projectRepo: projectRepo,
		folderRepo:  folderRepo,
		fileRepo:    fileRepo,
	}
}

// CanViewProject checks the user owns or collaborates on the project
func (a *CollaboratorAuthorizer) CanViewProject(ctx context.Context, userID, projectID string) (*models.Project, error) {
	project, err := a.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.CanView(userID) {
		return nil, fmt.Errorf("access denied to project %s: %w", projectID, domain.ErrForbidden)
	}
	return project, nil
}

// CanEditProject checks the user owns the project
func (a *CollaboratorAuthorizer) CanEditProject(ctx context.Context, userID, projectID string) (*models.Project, error) {
	project, err := a.CanViewProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsOwner(userID) {
		return nil, fmt.Errorf("only the owner can modify project %s: %w", projectID, domain.ErrForbidden)
	}
	return project, nil
}

// CanViewFile checks the user can view the file's project
func (a *CollaboratorAuthorizer) CanViewFile(ctx context.Context, userID, fileID string) (*models.File, error) {
	file, err := a.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if _, err := a.CanViewProject(ctx, userID, file.ProjectID); err != nil {
		return nil, err
	}
	return file, nil
}

// CanEditFile checks the user owns the file and still has access to its project
func (a *CollaboratorAuthorizer) CanEditFile(ctx context.Context, userID, fileID string) (*models.File, error) {
	file, err := a.CanViewFile(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != userID {
		return nil, fmt.Errorf("only the owner can modify file %s: %w", fileID, domain.ErrForbidden)
	}
	return file, nil
}

// CanCreateInFolder checks the user may add a file to the folder.
// The Master folder is never a creation target.
func (a *CollaboratorAuthorizer) CanCreateInFolder(ctx context.Context, userID, folderID string) (*models.Folder, error) {
	folder, err := a.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	project, err := a.CanViewProject(ctx, userID, folder.ProjectID)
	if err != nil {
		return nil, err
	}

	switch {
	case folder.IsMaster():
		return nil, fmt.Errorf("files cannot be created in the %s folder: %w", models.MasterFolderLabel, domain.ErrValidation)
	case folder.SharedBase && project.IsOwner(userID):
		return folder, nil
	case folder.OwnerID == userID:
		return folder, nil
	default:
		return nil, fmt.Errorf("folder %s belongs to another user: %w", folderID, domain.ErrForbidden)
	}
}
