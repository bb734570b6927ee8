package handler

import "net/http"

// Handlers groups the workspace API handlers for route registration
type Handlers struct {
	Health  *HealthHandler
	Project *ProjectHandler
	Folder  *FolderHandler
	File    *FileHandler
	Chat    *ChatHandler
}

// RegisterRoutes wires the workspace API onto mux
func RegisterRoutes(mux *http.ServeMux, h Handlers) {
	if h.Health != nil {
		mux.HandleFunc("GET /health", h.Health.HealthCheck)
	}

	// Projects
	mux.HandleFunc("GET /api/projects", h.Project.ListProjects)
	mux.HandleFunc("POST /api/projects", h.Project.CreateProject)
	mux.HandleFunc("GET /api/projects/{id}", h.Project.GetProject)
	mux.HandleFunc("PATCH /api/projects/{id}", h.Project.UpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", h.Project.DeleteProject)
	mux.HandleFunc("GET /api/projects/{id}/draft", h.Project.LoadDraft)
	mux.HandleFunc("PUT /api/projects/{id}/draft", h.Project.SaveDraft)
	mux.HandleFunc("POST /api/projects/{id}/publish", h.Project.Publish)
	mux.HandleFunc("POST /api/projects/{id}/collaborators", h.Project.AddCollaborator)
	mux.HandleFunc("DELETE /api/projects/{id}/collaborators/{userID}", h.Project.RemoveCollaborator)

	// Folders
	mux.HandleFunc("GET /api/projects/{id}/folders", h.Folder.ListFolders)
	mux.HandleFunc("POST /api/projects/{id}/folders", h.Folder.CreateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", h.Folder.DeleteFolder)

	// Files
	mux.HandleFunc("POST /api/folders/{id}/files", h.File.CreateFile)
	mux.HandleFunc("GET /api/files/{id}", h.File.GetFile)
	mux.HandleFunc("PUT /api/files/{id}/content", h.File.SaveContent)
	mux.HandleFunc("DELETE /api/files/{id}", h.File.DeleteFile)

	// Chat
	mux.HandleFunc("GET /api/projects/{id}/messages", h.Chat.ListMessages)
	mux.HandleFunc("POST /api/projects/{id}/messages", h.Chat.SendMessage)
}
