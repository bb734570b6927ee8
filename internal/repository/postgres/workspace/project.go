package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quillhouse/internal/domain"
	models "quillhouse/internal/domain/models/workspace"
	wsRepo "quillhouse/internal/domain/repositories/workspace"
	"quillhouse/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const projectColumns = `id, owner_id, title, slug, collaborators, content, published, genres, description,
	word_count, content_revision, created_at, updated_at, last_opened_at, published_at`

// PostgresProjectRepository implements the ProjectRepository interface
type PostgresProjectRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *postgres.RepositoryConfig) wsRepo.ProjectRepository {
	return &PostgresProjectRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Title,
		&p.Slug,
		&p.Collaborators,
		&p.Content,
		&p.Published,
		&p.Genres,
		&p.Description,
		&p.WordCount,
		&p.ContentRevision,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.LastOpenedAt,
		&p.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create creates a new project
func (r *PostgresProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, title, slug, collaborators, content, genres, description, word_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, r.tables.Projects)

	if project.Collaborators == nil {
		project.Collaborators = []string{}
	}
	if project.Genres == nil {
		project.Genres = []string{}
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		project.OwnerID,
		project.Title,
		project.Slug,
		project.Collaborators,
		project.Content,
		project.Genres,
		project.Description,
		project.WordCount,
		project.CreatedAt,
		project.UpdatedAt,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("project slug %q already exists", project.Slug),
				ResourceType: "project",
				Slug:         project.Slug,
			}
		}
		return fmt.Errorf("create project: %w", err)
	}

	return nil
}

// GetByID retrieves a project by ID
func (r *PostgresProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, projectColumns, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	project, err := scanProject(executor.QueryRow(ctx, query, id))
	if err != nil {
		return nil, postgres.LookupError(err, "project", id)
	}

	return project, nil
}

// ListForUser retrieves projects owned by or shared with the user
func (r *PostgresProjectRepository) ListForUser(ctx context.Context, userID string) ([]models.Project, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1 OR $1 = ANY(collaborators)
		ORDER BY COALESCE(last_opened_at, updated_at) DESC
	`, projectColumns, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	return projects, nil
}

// Update updates a project's metadata
func (r *PostgresProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, description = $2, genres = $3, updated_at = $4
		WHERE id = $5
	`, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		project.Title,
		project.Description,
		project.Genres,
		project.UpdatedAt,
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", project.ID, domain.ErrNotFound)
	}

	return nil
}

// UpdateContent writes Master document content guarded by revision
func (r *PostgresProjectRepository) UpdateContent(ctx context.Context, id, content string, wordCount int, revision int64) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET content = $1, word_count = $2, content_revision = $3, updated_at = NOW()
		WHERE id = $4 AND content_revision < $3
	`, r.tables.Projects)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, content, wordCount, revision, id)
	if err != nil {
		return false, fmt.Errorf("update project content: %w", err)
	}

	if result.RowsAffected() > 0 {
		return true, nil
	}

	// Either the project is gone or a newer revision is already stored
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	r.logger.Debug("superseded project content write", "id", id, "revision", revision)
	return false, nil
}

// SetPublished marks the project as published
func (r *PostgresProjectRepository) SetPublished(ctx context.Context, id string, at time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s SET published = TRUE, published_at = $1, updated_at = $1
		WHERE id = $2
	`, r.tables.Projects)

	return r.execOne(ctx, "publish project", id, query, at, id)
}

// Touch records the last time the project was opened
func (r *PostgresProjectRepository) Touch(ctx context.Context, id string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET last_opened_at = $1 WHERE id = $2`, r.tables.Projects)
	return r.execOne(ctx, "touch project", id, query, at, id)
}

// AddCollaborator appends a user to the collaborator list if absent
func (r *PostgresProjectRepository) AddCollaborator(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET collaborators = CASE WHEN $1 = ANY(collaborators) THEN collaborators ELSE array_append(collaborators, $1) END,
		    updated_at = NOW()
		WHERE id = $2
	`, r.tables.Projects)

	return r.execOne(ctx, "add collaborator", id, query, userID, id)
}

// RemoveCollaborator removes a user from the collaborator list
func (r *PostgresProjectRepository) RemoveCollaborator(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET collaborators = array_remove(collaborators, $1), updated_at = NOW()
		WHERE id = $2
	`, r.tables.Projects)

	return r.execOne(ctx, "remove collaborator", id, query, userID, id)
}

// Delete removes a project and, by cascade, its folders, files and messages
func (r *PostgresProjectRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Projects)
	return r.execOne(ctx, "delete project", id, query, id)
}

// execOne runs an update that must touch exactly one project row
func (r *PostgresProjectRepository) execOne(ctx context.Context, op, id, query string, args ...any) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, args...)
	if err != nil {
		if postgres.IsPgInvalidInputError(err) {
			return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
