package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"quillhouse/internal/config"
	"quillhouse/internal/domain"
	models "quillhouse/internal/domain/models/workspace"
	"quillhouse/internal/domain/repositories"
	wsRepo "quillhouse/internal/domain/repositories/workspace"
	"quillhouse/internal/domain/services"
	wsSvc "quillhouse/internal/domain/services/workspace"
	"quillhouse/internal/richtext"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// projectService implements the ProjectService interface
type projectService struct {
	projectRepo wsRepo.ProjectRepository
	folderRepo  wsRepo.FolderRepository
	txManager   repositories.TransactionManager
	authorizer  services.ResourceAuthorizer
	analyzer    services.ContentAnalyzer
	sanitizer   *richtext.Sanitizer
	logger      *slog.Logger
	now         func() time.Time
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo wsRepo.ProjectRepository,
	folderRepo wsRepo.FolderRepository,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	analyzer services.ContentAnalyzer,
	logger *slog.Logger,
) wsSvc.ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		folderRepo:  folderRepo,
		txManager:   txManager,
		authorizer:  authorizer,
		analyzer:    analyzer,
		sanitizer:   richtext.NewSanitizer(),
		logger:      logger,
		now:         time.Now,
	}
}

// CreateProject creates a project and its Master folder in one transaction
func (s *projectService) CreateProject(ctx context.Context, req *wsSvc.CreateProjectRequest) (*models.Project, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	title := strings.TrimSpace(req.Title)
	now := s.now()
	project := &models.Project{
		OwnerID:       req.UserID,
		Title:         title,
		Slug:          newSlug(title),
		Collaborators: []string{},
		Description:   strings.TrimSpace(req.Description),
		Genres:        normalizeGenres(req.Genres),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.projectRepo.Create(ctx, project); err != nil {
			return err
		}
		_, err := s.folderRepo.CreateMasterIfNotExists(ctx, project.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		"id", project.ID,
		"title", project.Title,
		"slug", project.Slug,
		"owner_id", req.UserID,
	)

	return project, nil
}

// GetProject retrieves a project the user can view
func (s *projectService) GetProject(ctx context.Context, userID, projectID string) (*models.Project, error) {
	return s.authorizer.CanViewProject(ctx, userID, projectID)
}

// ListProjects retrieves all projects the user owns or collaborates on
func (s *projectService) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	return s.projectRepo.ListForUser(ctx, userID)
}

// UpdateProject updates title, description and genres
func (s *projectService) UpdateProject(ctx context.Context, userID, projectID string, req *wsSvc.UpdateProjectRequest) (*models.Project, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project, err := s.authorizer.CanEditProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		project.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		project.Description = strings.TrimSpace(*req.Description)
	}
	if req.Genres != nil {
		project.Genres = normalizeGenres(req.Genres)
	}
	project.UpdatedAt = s.now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project updated",
		"id", project.ID,
		"title", project.Title,
		"user_id", userID,
	)

	return project, nil
}

// DeleteProject deletes a project with its folders, files and chat
func (s *projectService) DeleteProject(ctx context.Context, userID, projectID string) error {
	if _, err := s.authorizer.CanEditProject(ctx, userID, projectID); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return err
	}

	s.logger.Info("project deleted",
		"id", projectID,
		"user_id", userID,
	)

	return nil
}

// LoadDraft returns the project's Master document for any viewer
func (s *projectService) LoadDraft(ctx context.Context, userID, projectID string) (*models.Project, error) {
	project, err := s.authorizer.CanViewProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	// Projects created before Master folders existed get one on first open
	if _, err := s.folderRepo.CreateMasterIfNotExists(ctx, projectID); err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.projectRepo.Touch(ctx, projectID, now); err != nil {
		s.logger.Warn("failed to record project open", "id", projectID, "error", err)
	} else {
		project.LastOpenedAt = &now
	}

	s.logger.Debug("draft loaded",
		"id", projectID,
		"user_id", userID,
		"owner", project.IsOwner(userID),
	)

	return project, nil
}

// SaveDraft stores a Master document snapshot for the owner
func (s *projectService) SaveDraft(ctx context.Context, userID, projectID string, req *wsSvc.SaveContentRequest) (*wsSvc.SaveResult, error) {
	if err := validateSaveRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project, err := s.authorizer.CanEditProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if project.Published {
		return nil, &domain.PublishedError{ProjectID: projectID, PublishedAt: project.PublishedAt}
	}

	content := s.sanitizer.Sanitize(req.Content)
	words := s.analyzer.CountWords(content)

	applied, err := s.projectRepo.UpdateContent(ctx, projectID, content, words, req.Revision)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("draft saved",
		"id", projectID,
		"revision", req.Revision,
		"applied", applied,
		"word_count", words,
	)

	return &wsSvc.SaveResult{Applied: applied, Revision: req.Revision, WordCount: words}, nil
}

// Publish marks the project published; publishing twice is a no-op
func (s *projectService) Publish(ctx context.Context, userID, projectID string) (*models.Project, error) {
	project, err := s.authorizer.CanEditProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if project.Published {
		return project, nil
	}

	now := s.now()
	if err := s.projectRepo.SetPublished(ctx, projectID, now); err != nil {
		return nil, err
	}
	project.Published = true
	project.PublishedAt = &now
	project.UpdatedAt = now

	s.logger.Info("project published",
		"id", projectID,
		"slug", project.Slug,
		"user_id", userID,
	)

	return project, nil
}

// AddCollaborator shares the project with another user. Owner only.
func (s *projectService) AddCollaborator(ctx context.Context, userID, projectID, collaboratorID string) (*models.Project, error) {
	collaboratorID = strings.TrimSpace(collaboratorID)
	if err := validation.Validate(collaboratorID, validation.Required, notBlank); err != nil {
		return nil, fmt.Errorf("%w: user_id: %v", domain.ErrValidation, err)
	}

	project, err := s.authorizer.CanEditProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if project.IsOwner(collaboratorID) {
		return nil, fmt.Errorf("%w: the owner cannot be a collaborator", domain.ErrValidation)
	}

	if err := s.projectRepo.AddCollaborator(ctx, projectID, collaboratorID); err != nil {
		return nil, err
	}

	s.logger.Info("collaborator added",
		"project_id", projectID,
		"collaborator_id", collaboratorID,
		"user_id", userID,
	)

	return s.projectRepo.GetByID(ctx, projectID)
}

// RemoveCollaborator unshares the project. The owner may remove anyone;
// a collaborator may remove only themselves.
func (s *projectService) RemoveCollaborator(ctx context.Context, userID, projectID, collaboratorID string) (*models.Project, error) {
	project, err := s.authorizer.CanViewProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsOwner(userID) && userID != collaboratorID {
		return nil, fmt.Errorf("only the owner can remove other collaborators: %w", domain.ErrForbidden)
	}
	if !project.IsCollaborator(collaboratorID) {
		return nil, fmt.Errorf("collaborator %s on project %s: %w", collaboratorID, projectID, domain.ErrNotFound)
	}

	if err := s.projectRepo.RemoveCollaborator(ctx, projectID, collaboratorID); err != nil {
		return nil, err
	}

	s.logger.Info("collaborator removed",
		"project_id", projectID,
		"collaborator_id", collaboratorID,
		"user_id", userID,
	)

	return s.projectRepo.GetByID(ctx, projectID)
}

func (s *projectService) validateCreateRequest(req *wsSvc.CreateProjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title,
			validation.Required,
			validation.RuneLength(1, config.MaxProjectTitleLength),
			notBlank,
		),
		validation.Field(&req.Description, validation.RuneLength(0, config.MaxDescriptionLength)),
		validation.Field(&req.Genres, validation.Length(0, config.MaxGenres)),
	)
}

func (s *projectService) validateUpdateRequest(req *wsSvc.UpdateProjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title,
			validation.NilOrNotEmpty,
			validation.RuneLength(1, config.MaxProjectTitleLength),
			validation.When(req.Title != nil, notBlank),
		),
		validation.Field(&req.Description, validation.RuneLength(0, config.MaxDescriptionLength)),
		validation.Field(&req.Genres, validation.Length(0, config.MaxGenres)),
	)
}

func validateSaveRequest(req *wsSvc.SaveContentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Content, contentSize),
		validation.Field(&req.Revision, validation.Required, validation.Min(int64(1))),
	)
}

// normalizeGenres trims, lowercases and de-duplicates genres preserving order
func normalizeGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	seen := make(map[string]bool, len(genres))
	for _, g := range genres {
		g = strings.ToLower(strings.TrimSpace(g))
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}
