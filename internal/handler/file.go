package handler

import (
	"log/slog"
	"net/http"

	wsSvc "quillhouse/internal/domain/services/workspace"
	"quillhouse/internal/httputil"
	"quillhouse/internal/metrics"
)

// FileHandler handles file HTTP requests
type FileHandler struct {
	fileService wsSvc.FileService
	logger      *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService wsSvc.FileService, logger *slog.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      logger,
	}
}

// CreateFile creates an empty file in a folder
// POST /api/folders/{id}/files
func (h *FileHandler) CreateFile(w http.ResponseWriter, r *http.Request) {
	folderID, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	var req wsSvc.CreateFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondParseError(w, err)
		return
	}
	req.FolderID = folderID
	req.UserID = httputil.GetUserID(r)

	file, err := h.fileService.CreateFile(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// GetFile retrieves a file with its content
// GET /api/files/{id}
func (h *FileHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	fileID, ok := PathParam(w, r, "id", "File ID")
	if !ok {
		return
	}

	file, err := h.fileService.GetFile(r.Context(), httputil.GetUserID(r), fileID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// SaveContent stores a file content snapshot
// PUT /api/files/{id}/content
func (h *FileHandler) SaveContent(w http.ResponseWriter, r *http.Request) {
	fileID, ok := PathParam(w, r, "id", "File ID")
	if !ok {
		return
	}

	var req wsSvc.SaveContentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondParseError(w, err)
		return
	}

	result, err := h.fileService.SaveContent(r.Context(), httputil.GetUserID(r), fileID, &req)
	if err != nil {
		metrics.ContentSavesTotal.WithLabelValues("file", "error").Inc()
		handleError(w, err)
		return
	}

	metrics.ContentSavesTotal.WithLabelValues("file", saveOutcome(result)).Inc()
	httputil.RespondJSON(w, http.StatusOK, result)
}

// DeleteFile deletes a file
// DELETE /api/files/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	fileID, ok := PathParam(w, r, "id", "File ID")
	if !ok {
		return
	}

	if err := h.fileService.DeleteFile(r.Context(), httputil.GetUserID(r), fileID); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}
