package workspace

import (
	"context"
	"fmt"
	"log/slog"

	"quillhouse/internal/domain"
	models "quillhouse/internal/domain/models/workspace"
	wsRepo "quillhouse/internal/domain/repositories/workspace"
	"quillhouse/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *postgres.RepositoryConfig) wsRepo.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create creates a new file
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (folder_id, project_id, owner_id, label, slug, content, word_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		file.FolderID,
		file.ProjectID,
		file.OwnerID,
		file.Label,
		file.Slug,
		file.Content,
		file.WordCount,
		file.CreatedAt,
		file.UpdatedAt,
	).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %s: %w", file.FolderID, domain.ErrNotFound)
		}
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("file slug %q already exists", file.Slug),
				ResourceType: "file",
				Slug:         file.Slug,
			}
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves a file with its content
func (r *PostgresFileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT id, folder_id, project_id, owner_id, label, slug, content, word_count, content_revision, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Files)

	var file models.File
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.FolderID,
		&file.ProjectID,
		&file.OwnerID,
		&file.Label,
		&file.Slug,
		&file.Content,
		&file.WordCount,
		&file.ContentRevision,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.LookupError(err, "file", id)
	}

	return &file, nil
}

// UpdateContent writes file content guarded by revision
func (r *PostgresFileRepository) UpdateContent(ctx context.Context, id, content string, wordCount int, revision int64) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET content = $1, word_count = $2, content_revision = $3, updated_at = NOW()
		WHERE id = $4 AND content_revision < $3
	`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, content, wordCount, revision, id)
	if err != nil {
		return false, fmt.Errorf("update file content: %w", err)
	}

	if result.RowsAffected() > 0 {
		return true, nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	r.logger.Debug("superseded file content write", "id", id, "revision", revision)
	return false, nil
}

// Delete deletes a file
func (r *PostgresFileRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Files)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgInvalidInputError(err) {
			return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete file: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
