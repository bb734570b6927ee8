package workspace

import (
	"context"

	models "quillhouse/internal/domain/models/workspace"
)

// FileRepository defines data access operations for files
type FileRepository interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id string) (*models.File, error)

	// UpdateContent stores content if revision is newer than the stored one.
	// Returns false when the write was superseded by a newer revision.
	UpdateContent(ctx context.Context, id, content string, wordCount int, revision int64) (bool, error)

	Delete(ctx context.Context, id string) error
}
