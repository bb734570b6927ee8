package handler

import (
	"log/slog"
	"net/http"

	wsSvc "quillhouse/internal/domain/services/workspace"
	"quillhouse/internal/httputil"
	"quillhouse/internal/metrics"
)

// ProjectHandler handles project HTTP requests
type ProjectHandler struct {
	projectService wsSvc.ProjectService
	logger         *slog.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService wsSvc.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// updateProjectBody distinguishes an omitted description from an explicit null
type updateProjectBody struct {
	Title       *string                 `json:"title"`
	Description httputil.Patch[string]   `json:"description"`
	Genres      httputil.Patch[[]string] `json:"genres"`
}

// ListProjects lists projects the user owns or collaborates on
// GET /api/projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.ListProjects(r.Context(), httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, projects)
}

// CreateProject creates a project with its Master folder
// POST /api/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req wsSvc.CreateProjectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondParseError(w, err)
		return
	}
	req.UserID = httputil.GetUserID(r)

	project, err := h.projectService.CreateProject(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, project)
}

// GetProject retrieves a project
// GET /api/projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(r.Context(), httputil.GetUserID(r), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// UpdateProject updates project metadata
// PATCH /api/projects/{id}
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	var body updateProjectBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondParseError(w, err)
		return
	}

	// null clears description and genres
	req := wsSvc.UpdateProjectRequest{
		Title:       body.Title,
		Description: body.Description.OrClear(""),
	}
	if genres := body.Genres.OrClear([]string{}); genres != nil {
		req.Genres = *genres
	}

	project, err := h.projectService.UpdateProject(r.Context(), httputil.GetUserID(r), projectID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// DeleteProject deletes a project and everything in it
// DELETE /api/projects/{id}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(r.Context(), httputil.GetUserID(r), projectID); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// LoadDraft returns the project with its Master document
// GET /api/projects/{id}/draft
func (h *ProjectHandler) LoadDraft(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	project, err := h.projectService.LoadDraft(r.Context(), httputil.GetUserID(r), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// SaveDraft stores a Master document snapshot
// PUT /api/projects/{id}/draft
func (h *ProjectHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	var req wsSvc.SaveContentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondParseError(w, err)
		return
	}

	result, err := h.projectService.SaveDraft(r.Context(), httputil.GetUserID(r), projectID, &req)
	if err != nil {
		metrics.ContentSavesTotal.WithLabelValues("draft", "error").Inc()
		handleError(w, err)
		return
	}

	metrics.ContentSavesTotal.WithLabelValues("draft", saveOutcome(result)).Inc()
	httputil.RespondJSON(w, http.StatusOK, result)
}

// Publish marks the project published
// POST /api/projects/{id}/publish
func (h *ProjectHandler) Publish(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	project, err := h.projectService.Publish(r.Context(), httputil.GetUserID(r), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	metrics.PublishTotal.Inc()
	httputil.RespondJSON(w, http.StatusOK, project)
}

// AddCollaborator shares the project with another user
// POST /api/projects/{id}/collaborators
func (h *ProjectHandler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	var req wsSvc.AddCollaboratorRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondParseError(w, err)
		return
	}

	project, err := h.projectService.AddCollaborator(r.Context(), httputil.GetUserID(r), projectID, req.UserID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// RemoveCollaborator unshares the project
// DELETE /api/projects/{id}/collaborators/{userID}
func (h *ProjectHandler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}
	collaboratorID := r.PathValue("userID")

	project, err := h.projectService.RemoveCollaborator(r.Context(), httputil.GetUserID(r), projectID, collaboratorID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

func saveOutcome(result *wsSvc.SaveResult) string {
	if result.Applied {
		return "applied"
	}
	return "superseded"
}
