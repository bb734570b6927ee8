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
	"quillhouse/internal/richtext"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type fileService struct {
	fileRepo   wsRepo.FileRepository
	authorizer services.ResourceAuthorizer
	analyzer   services.ContentAnalyzer
	sanitizer  *richtext.Sanitizer
	logger     *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	fileRepo wsRepo.FileRepository,
	authorizer services.ResourceAuthorizer,
	analyzer services.ContentAnalyzer,
	logger *slog.Logger,
) wsSvc.FileService {
	return &fileService{
		fileRepo:   fileRepo,
		authorizer: authorizer,
		analyzer:   analyzer,
		sanitizer:  richtext.NewSanitizer(),
		logger:     logger,
	}
}

// CreateFile creates an empty file owned by the caller
func (s *fileService) CreateFile(ctx context.Context, req *wsSvc.CreateFileRequest) (*models.File, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.FolderID, validation.Required),
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Label, labelRules...),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	folder, err := s.authorizer.CanCreateInFolder(ctx, req.UserID, req.FolderID)
	if err != nil {
		return nil, err
	}

	label := strings.TrimSpace(req.Label)
	file := &models.File{
		FolderID:  folder.ID,
		ProjectID: folder.ProjectID,
		OwnerID:   req.UserID,
		Label:     label,
		Slug:      newSlug(label),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, err
	}

	s.logger.Info("file created",
		"id", file.ID,
		"label", file.Label,
		"folder_id", file.FolderID,
		"project_id", file.ProjectID,
		"user_id", req.UserID,
	)

	return file, nil
}

// GetFile retrieves a file for any viewer of its project
func (s *fileService) GetFile(ctx context.Context, userID, fileID string) (*models.File, error) {
	return s.authorizer.CanViewFile(ctx, userID, fileID)
}

// SaveContent stores a content snapshot for the file owner
func (s *fileService) SaveContent(ctx context.Context, userID, fileID string, req *wsSvc.SaveContentRequest) (*wsSvc.SaveResult, error) {
	if err := validateSaveRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.authorizer.CanEditFile(ctx, userID, fileID); err != nil {
		return nil, err
	}

	content := s.sanitizer.Sanitize(req.Content)
	words := s.analyzer.CountWords(content)

	applied, err := s.fileRepo.UpdateContent(ctx, fileID, content, words, req.Revision)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("file saved",
		"id", fileID,
		"revision", req.Revision,
		"applied", applied,
		"word_count", words,
	)

	return &wsSvc.SaveResult{Applied: applied, Revision: req.Revision, WordCount: words}, nil
}

// DeleteFile deletes a file owned by the caller
func (s *fileService) DeleteFile(ctx context.Context, userID, fileID string) error {
	file, err := s.authorizer.CanEditFile(ctx, userID, fileID)
	if err != nil {
		return err
	}

	if err := s.fileRepo.Delete(ctx, fileID); err != nil {
		return err
	}

	s.logger.Info("file deleted",
		"id", fileID,
		"label", file.Label,
		"project_id", file.ProjectID,
	)

	return nil
}
