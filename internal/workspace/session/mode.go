package session

import (
	"quillhouse/internal/workspace/store"
)

// Mode is the session's state.
type Mode int

const (
	// ModeEmpty: nothing open. The surface is read-only and shows the welcome text.
	ModeEmpty Mode = iota
	// ModeLoading: an entity was requested and has not been applied yet.
	ModeLoading
	// ModeReadOnly: content is displayed but edits are not accepted.
	ModeReadOnly
	// ModeEditable: edits are accepted and autosaved.
	ModeEditable
)

func (m Mode) String() string {
	switch m {
	case ModeLoading:
		return "loading"
	case ModeReadOnly:
		return "read_only"
	case ModeEditable:
		return "editable"
	default:
		return "empty"
	}
}

// SaveKind names where edits are persisted.
type SaveKind int

const (
	SaveNone SaveKind = iota
	SaveProjectDraft
	SaveFile
)

func (k SaveKind) String() string {
	switch k {
	case SaveProjectDraft:
		return "project_draft"
	case SaveFile:
		return "file"
	default:
		return "none"
	}
}

// Resolution is the outcome of ResolveMode.
type Resolution struct {
	Mode Mode
	Save SaveKind
}

// ResolveMode decides how the active entity is presented to userID.
//
// A file wins over a project. Files are editable only by their owner.
// A project's Master document is editable only by its owner, and only while unpublished.
func ResolveMode(e store.Entity, userID string) Resolution {
	switch {
	case e.File != nil:
		if userID != "" && e.File.OwnerID == userID {
			return Resolution{Mode: ModeEditable, Save: SaveFile}
		}
		return Resolution{Mode: ModeReadOnly}
	case e.Project != nil:
		if e.Project.IsOwner(userID) && !e.Project.Published {
			return Resolution{Mode: ModeEditable, Save: SaveProjectDraft}
		}
		return Resolution{Mode: ModeReadOnly}
	default:
		return Resolution{Mode: ModeEmpty}
	}
}
