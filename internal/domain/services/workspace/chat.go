package workspace

import (
	"context"

	models "quillhouse/internal/domain/models/workspace"
)

// ChatService handles project chat
type ChatService interface {
	// ListMessages returns the newest messages of a project, oldest first
	ListMessages(ctx context.Context, userID, projectID string) ([]models.Message, error)

	SendMessage(ctx context.Context, req *SendMessageRequest) (*models.Message, error)
}

// SendMessageRequest represents an outgoing chat message
type SendMessageRequest struct {
	ProjectID  string `json:"-"`
	SenderID   string `json:"-"`
	SenderName string `json:"-"`
	Text       string `json:"text"`
}
