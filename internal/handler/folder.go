package handler

import (
	"log/slog"
	"net/http"

	wsSvc "quillhouse/internal/domain/services/workspace"
	"quillhouse/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folderService wsSvc.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService wsSvc.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folderService: folderService,
		logger:        logger,
	}
}

// ListFolders returns all folder groups of a project, Master first
// GET /api/projects/{id}/folders
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	groups, err := h.folderService.ListFolders(r.Context(), httputil.GetUserID(r), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, groups)
}

// CreateFolder creates a folder in a project
// POST /api/projects/{id}/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	var req wsSvc.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondParseError(w, err)
		return
	}
	req.ProjectID = projectID
	req.UserID = httputil.GetUserID(r)

	folder, err := h.folderService.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// DeleteFolder deletes a folder and its files
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	folderID, ok := PathParam(w, r, "id", "Folder ID")
	if !ok {
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), httputil.GetUserID(r), folderID); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}
