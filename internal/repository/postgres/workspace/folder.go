package workspace

import (
	"context"
	"fmt"
	"log/slog"

	"quillhouse/internal/domain"
	models "quillhouse/internal/domain/models/workspace"
	wsRepo "quillhouse/internal/domain/repositories/workspace"
	"quillhouse/internal/repository/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const folderColumns = `id, project_id, label, COALESCE(owner_id, ''), shared_base, created_at, updated_at`

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) wsRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var f models.Folder
	if err := row.Scan(&f.ID, &f.ProjectID, &f.Label, &f.OwnerID, &f.SharedBase, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.FileIDs = []string{}
	return &f, nil
}

// nullable maps an empty owner (Master, shared-base) to NULL
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, label, owner_id, shared_base, is_master, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.ProjectID,
		folder.Label,
		nullable(folder.OwnerID),
		folder.SharedBase,
		folder.IsMaster(),
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) || postgres.IsPgInvalidInputError(err) {
			return fmt.Errorf("project %s: %w", folder.ProjectID, domain.ErrNotFound)
		}
		if postgres.IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "project already has a Master folder",
				ResourceType: "folder",
			}
		}
		return fmt.Errorf("create folder: %w", err)
	}

	if folder.FileIDs == nil {
		folder.FileIDs = []string{}
	}
	return nil
}

// GetByID retrieves a folder by ID with its file ids
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		return nil, postgres.LookupError(err, "folder", id)
	}

	fileQuery := fmt.Sprintf(`SELECT id FROM %s WHERE folder_id = $1 ORDER BY created_at`, r.tables.Files)
	rows, err := executor.Query(ctx, fileQuery, id)
	if err != nil {
		return nil, fmt.Errorf("list folder files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fileID string
		if err := rows.Scan(&fileID); err != nil {
			return nil, fmt.Errorf("scan file id: %w", err)
		}
		folder.FileIDs = append(folder.FileIDs, fileID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folder files: %w", err)
	}

	return folder, nil
}

// CreateMasterIfNotExists returns the Master folder, creating it when missing
func (r *PostgresFolderRepository) CreateMasterIfNotExists(ctx context.Context, projectID string) (*models.Folder, error) {
	insert := fmt.Sprintf(`
		INSERT INTO %s (project_id, label, is_master)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (project_id) WHERE is_master DO NOTHING
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, insert, projectID, models.MasterFolderLabel); err != nil {
		if postgres.IsPgForeignKeyError(err) || postgres.IsPgInvalidInputError(err) {
			return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("ensure master folder: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE project_id = $1 AND is_master`, folderColumns, r.tables.Folders)
	folder, err := scanFolder(executor.QueryRow(ctx, query, projectID))
	if err != nil {
		return nil, fmt.Errorf("get master folder: %w", err)
	}
	return folder, nil
}

// ListGroupsByProject returns all folders with their files, Master first
func (r *PostgresFolderRepository) ListGroupsByProject(ctx context.Context, projectID string) ([]models.FolderGroup, error) {
	folderQuery := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE project_id = $1
		ORDER BY is_master DESC, created_at, id
	`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, folderQuery, projectID)
	if err != nil {
		if postgres.IsPgInvalidInputError(err) {
			return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("list folders: %w", err)
	}

	groups := []models.FolderGroup{}
	index := make(map[string]int)
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		index[folder.ID] = len(groups)
		groups = append(groups, models.FolderGroup{Folder: *folder, Files: []models.FileSummary{}})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	fileQuery := fmt.Sprintf(`
		SELECT id, folder_id, label, slug, owner_id, word_count, updated_at
		FROM %s
		WHERE project_id = $1
		ORDER BY created_at, id
	`, r.tables.Files)

	fileRows, err := executor.Query(ctx, fileQuery, projectID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer fileRows.Close()

	for fileRows.Next() {
		var (
			summary  models.FileSummary
			folderID string
		)
		if err := fileRows.Scan(&summary.ID, &folderID, &summary.Label, &summary.Slug, &summary.OwnerID, &summary.WordCount, &summary.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		i, ok := index[folderID]
		if !ok {
			continue
		}
		groups[i].Files = append(groups[i].Files, summary)
		groups[i].Folder.FileIDs = append(groups[i].Folder.FileIDs, summary.ID)
	}
	if err := fileRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return groups, nil
}

// Delete deletes a folder; its files cascade
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgInvalidInputError(err) {
			return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
