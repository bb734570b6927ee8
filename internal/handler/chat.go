package handler

import (
	"log/slog"
	"net/http"

	wsSvc "quillhouse/internal/domain/services/workspace"
	"quillhouse/internal/httputil"
	"quillhouse/internal/metrics"
)

// ChatHandler handles project chat HTTP requests
type ChatHandler struct {
	chatService wsSvc.ChatService
	logger      *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService wsSvc.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// ListMessages returns the newest messages of a project, oldest first
// GET /api/projects/{id}/messages
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	messages, err := h.chatService.ListMessages(r.Context(), httputil.GetUserID(r), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, messages)
}

// SendMessage posts a message as the authenticated user
// POST /api/projects/{id}/messages
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	var req wsSvc.SendMessageRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondParseError(w, err)
		return
	}
	req.ProjectID = projectID
	req.SenderID = httputil.GetUserID(r)
	req.SenderName = httputil.GetDisplayName(r)

	msg, err := h.chatService.SendMessage(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	metrics.ChatMessagesSentTotal.WithLabelValues("server").Inc()
	httputil.RespondJSON(w, http.StatusCreated, msg)
}
