// Package foldertree builds the per-user folder view of a project.
package foldertree

import (
	models "quillhouse/internal/domain/models/workspace"
)

// Role is the viewer's relationship to the project.
type Role int

const (
	RoleCollaborator Role = iota
	RoleOwner
)

func (r Role) String() string {
	if r == RoleOwner {
		return "owner"
	}
	return "collaborator"
}

// RoleFor returns RoleOwner when userID owns p.
func RoleFor(p *models.Project, userID string) Role {
	if p != nil && p.IsOwner(userID) {
		return RoleOwner
	}
	return RoleCollaborator
}

// BuildView filters groups down to what userID sees.
//
// Owners see the Master folder, shared-base folders and their own folders.
// Collaborators see the Master folder and their own folders.
// Input order is preserved. Nil or empty input, or an empty userID, yields an empty view.
func BuildView(groups []models.FolderGroup, userID string, role Role) []models.FolderGroup {
	view := []models.FolderGroup{}
	if len(groups) == 0 || userID == "" {
		return view
	}

	for _, g := range groups {
		if visible(g.Folder, userID, role) {
			view = append(view, g)
		}
	}
	return view
}

func visible(f models.Folder, userID string, role Role) bool {
	switch {
	case f.IsMaster():
		return true
	case f.OwnerID != "" && f.OwnerID == userID:
		return true
	case role == RoleOwner && f.SharedBase:
		return true
	default:
		return false
	}
}

// CreationTargets returns the folders of view that may receive new files.
// The Master folder is displayed but never offered as a target.
func CreationTargets(view []models.FolderGroup) []models.Folder {
	targets := make([]models.Folder, 0, len(view))
	for _, g := range view {
		if !g.Folder.IsMaster() {
			targets = append(targets, g.Folder)
		}
	}
	return targets
}

// Find returns the folder with id from groups.
func Find(groups []models.FolderGroup, id string) (models.Folder, bool) {
	for _, g := range groups {
		if g.Folder.ID == id {
			return g.Folder, true
		}
	}
	return models.Folder{}, false
}
