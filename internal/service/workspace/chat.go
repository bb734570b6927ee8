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
	wsRepo "quillhouse/internal/domain/repositories/workspace"
	"quillhouse/internal/domain/services"
	wsSvc "quillhouse/internal/domain/services/workspace"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type chatService struct {
	messageRepo  wsRepo.MessageRepository
	authorizer   services.ResourceAuthorizer
	historyLimit int
	logger       *slog.Logger
}

// NewChatService creates a new chat service returning at most historyLimit messages per list
func NewChatService(
	messageRepo wsRepo.MessageRepository,
	authorizer services.ResourceAuthorizer,
	historyLimit int,
	logger *slog.Logger,
) wsSvc.ChatService {
	if historyLimit <= 0 {
		historyLimit = config.DefaultChatHistoryLimit
	}
	return &chatService{
		messageRepo:  messageRepo,
		authorizer:   authorizer,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// ListMessages returns the newest messages for a project member
func (s *chatService) ListMessages(ctx context.Context, userID, projectID string) ([]models.Message, error) {
	if _, err := s.authorizer.CanViewProject(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.messageRepo.ListByProject(ctx, projectID, s.historyLimit)
}

// SendMessage appends a message from a project member
func (s *chatService) SendMessage(ctx context.Context, req *wsSvc.SendMessageRequest) (*models.Message, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.SenderID, validation.Required),
		validation.Field(&req.Text,
			validation.Required,
			validation.RuneLength(1, config.MaxMessageLength),
			notBlank,
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.authorizer.CanViewProject(ctx, req.SenderID, req.ProjectID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		ProjectID:  req.ProjectID,
		SenderID:   req.SenderID,
		SenderName: req.SenderName,
		Text:       strings.TrimSpace(req.Text),
		CreatedAt:  time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.Debug("message sent",
		"id", msg.ID,
		"project_id", msg.ProjectID,
		"sender_id", msg.SenderID,
	)

	return msg, nil
}
