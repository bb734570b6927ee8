package session

import (
	"context"

	models "quillhouse/internal/domain/models/workspace"
	"quillhouse/internal/workspace/autosave"
)

// Surface is the editing widget the session drives.
// SetContent must not fire change listeners.
type Surface interface {
	Content() string
	SetContent(content string)
	SetEditable(editable bool)
	OnChange(fn func()) (detach func())
	OnBlur(fn func()) (detach func())
}

// Dialogs is closed whenever the session changes mode.
type Dialogs interface {
	CloseAll()
}

// DocumentLoader fetches the entity to open.
type DocumentLoader interface {
	LoadFile(ctx context.Context, fileID string) (*models.File, error)
	LoadDraft(ctx context.Context, projectID string) (*models.Project, error)
}

// FolderBackend lists and creates folders and files.
type FolderBackend interface {
	ListFolders(ctx context.Context, projectID string) ([]models.FolderGroup, error)
	CreateFolder(ctx context.Context, projectID, label string, sharedBase bool) (*models.Folder, error)
	CreateFile(ctx context.Context, folderID, label string) (*models.File, error)
}

// Publisher publishes a project.
type Publisher interface {
	Publish(ctx context.Context, projectID string) (*models.Project, error)
}

// Backend is everything the session needs from the server.
type Backend interface {
	DocumentLoader
	FolderBackend
	Publisher
	autosave.DraftSaver
	autosave.FileSaver
}

// Target names what to open. A file id wins over a project id; both empty opens nothing.
// When both are set the project id lets the folder tree load alongside the file.
type Target struct {
	ProjectID string
	FileID    string
}

// IsZero reports whether the target opens nothing.
func (t Target) IsZero() bool { return t.ProjectID == "" && t.FileID == "" }
