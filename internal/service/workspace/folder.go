package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"quillhouse/internal/domain"
	models "quillhouse/internal/domain/models/workspace"
	wsRepo "quillhouse/internal/domain/repositories/workspace"
	"quillhouse/internal/domain/services"
	wsSvc "quillhouse/internal/domain/services/workspace"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type folderService struct {
	folderRepo wsRepo.FolderRepository
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo wsRepo.FolderRepository,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) wsSvc.FolderService {
	return &folderService{
		folderRepo: folderRepo,
		authorizer: authorizer,
		logger:     logger,
	}
}

// ListFolders returns all folder groups of a project the user can view
func (s *folderService) ListFolders(ctx context.Context, userID, projectID string) ([]models.FolderGroup, error) {
	if _, err := s.authorizer.CanViewProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.folderRepo.ListGroupsByProject(ctx, projectID)
}

// CreateFolder creates a personal folder, or a shared-base folder for the owner
func (s *folderService) CreateFolder(ctx context.Context, req *wsSvc.CreateFolderRequest) (*models.Folder, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Label, append(labelRules, notReservedLabel)...),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project, err := s.authorizer.CanViewProject(ctx, req.UserID, req.ProjectID)
	if err != nil {
		return nil, err
	}

	folder := &models.Folder{
		ProjectID: req.ProjectID,
		Label:     strings.TrimSpace(req.Label),
		OwnerID:   req.UserID,
		FileIDs:   []string{},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if req.SharedBase {
		if !project.IsOwner(req.UserID) {
			return nil, fmt.Errorf("only the owner can create shared folders: %w", domain.ErrForbidden)
		}
		folder.SharedBase = true
		folder.OwnerID = ""
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"label", folder.Label,
		"project_id", folder.ProjectID,
		"shared_base", folder.SharedBase,
		"user_id", req.UserID,
	)

	return folder, nil
}

// DeleteFolder deletes a folder and its files. The Master folder cannot be deleted.
func (s *folderService) DeleteFolder(ctx context.Context, userID, folderID string) error {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return err
	}
	if folder.IsMaster() {
		return fmt.Errorf("%w: the %s folder cannot be deleted", domain.ErrValidation, models.MasterFolderLabel)
	}

	project, err := s.authorizer.CanViewProject(ctx, userID, folder.ProjectID)
	if err != nil {
		return err
	}
	if folder.OwnerID != userID && !project.IsOwner(userID) {
		return fmt.Errorf("folder %s belongs to another user: %w", folderID, domain.ErrForbidden)
	}

	if err := s.folderRepo.Delete(ctx, folderID); err != nil {
		return err
	}

	s.logger.Info("folder deleted",
		"id", folderID,
		"label", folder.Label,
		"project_id", folder.ProjectID,
		"files", len(folder.FileIDs),
	)

	return nil
}
