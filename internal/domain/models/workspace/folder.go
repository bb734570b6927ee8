package workspace

import "time"

// MasterFolderLabel is the label of the folder holding a project's primary document.
const MasterFolderLabel = "Master"

type Folder struct {
	ID         string    `json:"id" db:"id"`
	ProjectID  string    `json:"project_id" db:"project_id"`
	Label      string    `json:"label" db:"label"`
	OwnerID    string    `json:"owner_id,omitempty" db:"owner_id"` // Empty for Master and shared-base folders
	SharedBase bool      `json:"shared_base" db:"shared_base"`
	FileIDs    []string  `json:"file_ids"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// IsMaster reports whether this is the project's Master folder.
func (f *Folder) IsMaster() bool {
	return f.Label == MasterFolderLabel
}

// FolderGroup is a folder together with the ordered summaries of its files.
type FolderGroup struct {
	Folder Folder        `json:"folder"`
	Files  []FileSummary `json:"files"`
}
