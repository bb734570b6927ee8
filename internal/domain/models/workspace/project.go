package workspace

import (
	"slices"
	"time"
)

type Project struct {
	ID              string     `json:"id" db:"id"`
	OwnerID         string     `json:"owner_id" db:"owner_id"`
	Title           string     `json:"title" db:"title"`
	Slug            string     `json:"slug" db:"slug"`
	Collaborators   []string   `json:"collaborators" db:"collaborators"`
	Content         string     `json:"content" db:"content"` // Rich-text (HTML) content of the Master document
	Published       bool       `json:"published" db:"published"`
	Genres          []string   `json:"genres" db:"genres"`
	Description     string     `json:"description" db:"description"`
	WordCount       int        `json:"word_count" db:"word_count"`
	ContentRevision int64      `json:"content_revision" db:"content_revision"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	LastOpenedAt    *time.Time `json:"last_opened_at,omitempty" db:"last_opened_at"`
	PublishedAt     *time.Time `json:"published_at,omitempty" db:"published_at"`
}

// IsOwner reports whether userID owns the project.
func (p *Project) IsOwner(userID string) bool {
	return userID != "" && p.OwnerID == userID
}

// IsCollaborator reports whether userID is on the collaborator list.
// The owner is not implicitly a collaborator.
func (p *Project) IsCollaborator(userID string) bool {
	return userID != "" && slices.Contains(p.Collaborators, userID)
}

// CanView reports whether userID may read the project and its chat.
func (p *Project) CanView(userID string) bool {
	return p.IsOwner(userID) || p.IsCollaborator(userID)
}
