package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"quillhouse/internal/domain"
	models "quillhouse/internal/domain/models/workspace"
	wsRepo "quillhouse/internal/domain/repositories/workspace"
	"quillhouse/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresMessageRepository implements the MessageRepository interface
type PostgresMessageRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(config *postgres.RepositoryConfig) wsRepo.MessageRepository {
	return &PostgresMessageRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create appends a message
func (r *PostgresMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, sender_id, sender_name, text, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, r.tables.Messages)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		msg.ProjectID,
		msg.SenderID,
		msg.SenderName,
		msg.Text,
		msg.CreatedAt,
	).Scan(&msg.ID, &msg.CreatedAt)

	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("project %s: %w", msg.ProjectID, domain.ErrNotFound)
		}
		return fmt.Errorf("create message: %w", err)
	}

	return nil
}

// ListByProject returns the newest limit messages in chronological order
func (r *PostgresMessageRepository) ListByProject(ctx context.Context, projectID string, limit int) ([]models.Message, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, sender_id, sender_name, text, created_at
		FROM %s
		WHERE project_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, r.tables.Messages)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.ProjectID, &msg.SenderID, &msg.SenderName, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	// Fetched newest first to apply the limit; callers want oldest first
	slices.Reverse(messages)
	return messages, nil
}
