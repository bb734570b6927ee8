package workspace

import "time"

type File struct {
	ID              string    `json:"id" db:"id"`
	FolderID        string    `json:"folder_id" db:"folder_id"`
	ProjectID       string    `json:"project_id" db:"project_id"`
	OwnerID         string    `json:"owner_id" db:"owner_id"`
	Label           string    `json:"label" db:"label"`
	Slug            string    `json:"slug" db:"slug"`
	Content         string    `json:"content" db:"content"`
	WordCount       int       `json:"word_count" db:"word_count"`
	ContentRevision int64     `json:"content_revision" db:"content_revision"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// FileSummary is a file without its content, used in folder listings.
type FileSummary struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Slug      string    `json:"slug"`
	OwnerID   string    `json:"owner_id"`
	WordCount int       `json:"word_count"`
	UpdatedAt time.Time `json:"updated_at"`
}
