package workspace

import (
	"context"

	models "quillhouse/internal/domain/models/workspace"
)

// MessageRepository defines data access operations for chat messages
type MessageRepository interface {
	// Create appends a message
	Create(ctx context.Context, msg *models.Message) error

	// ListByProject returns at most limit of the newest messages, oldest first
	ListByProject(ctx context.Context, projectID string, limit int) ([]models.Message, error)
}
