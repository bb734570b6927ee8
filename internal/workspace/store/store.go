// Package store holds the workspace's active document and project list.
//
// At most one of {active Project, active File} is set. Setting one clears the
// other in the same critical section, so readers never observe both.
package store

import (
	"slices"
	"sync"
	"time"

	models "quillhouse/internal/domain/models/workspace"
)

// Kind identifies what an active slot holds.
type Kind int

const (
	KindNone Kind = iota
	KindProject
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindProject:
		return "project"
	case KindFile:
		return "file"
	default:
		return "none"
	}
}

// Ref identifies the active entity.
type Ref struct {
	Kind Kind
	ID   string
}

// IsZero reports whether the ref points at nothing.
func (r Ref) IsZero() bool { return r.Kind == KindNone }

// Entity is a snapshot of the active slot. The pointers are copies owned by the caller.
type Entity struct {
	Project *models.Project
	File    *models.File
}

// Ref returns the identity of the snapshot.
func (e Entity) Ref() Ref {
	switch {
	case e.File != nil:
		return Ref{Kind: KindFile, ID: e.File.ID}
	case e.Project != nil:
		return Ref{Kind: KindProject, ID: e.Project.ID}
	default:
		return Ref{}
	}
}

// ProjectID returns the project the active entity belongs to, or "".
func (e Entity) ProjectID() string {
	switch {
	case e.File != nil:
		return e.File.ProjectID
	case e.Project != nil:
		return e.Project.ID
	default:
		return ""
	}
}

// Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	project  *models.Project
	file     *models.File
	projects []models.Project

	subs    map[int]func(Entity)
	nextSub int
}

// New creates an empty store
func New() *Store {
	return &Store{subs: map[int]func(Entity){}}
}

// SetProject makes p the active entity and clears any active file.
func (s *Store) SetProject(p *models.Project) {
	s.mu.Lock()
	s.project = cloneProject(p)
	s.file = nil
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()
	notify(subs, snap)
}

// SetFile makes f the active entity and clears any active project.
func (s *Store) SetFile(f *models.File) {
	s.mu.Lock()
	s.file = cloneFile(f)
	s.project = nil
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()
	notify(subs, snap)
}

// Clear empties the active slot.
func (s *Store) Clear() {
	s.mu.Lock()
	if s.project == nil && s.file == nil {
		s.mu.Unlock()
		return
	}
	s.project, s.file = nil, nil
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()
	notify(subs, snap)
}

// Active returns a copy of the active slot.
func (s *Store) Active() Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Entity{Project: cloneProject(s.project), File: cloneFile(s.file)}
}

// ActiveRef returns the identity of the active entity.
func (s *Store) ActiveRef() Ref {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Entity{Project: s.project, File: s.file}.Ref()
}

// UpdateContent writes content into the active entity if ref still identifies it.
// Returns false, leaving the store untouched, when another entity is active.
func (s *Store) UpdateContent(ref Ref, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case ref.Kind == KindProject && s.project != nil && s.project.ID == ref.ID:
		s.project.Content = content
	case ref.Kind == KindFile && s.file != nil && s.file.ID == ref.ID:
		s.file.Content = content
	default:
		return false
	}
	return true
}

// MarkPublished flags the active project as published if it is still projectID.
func (s *Store) MarkPublished(projectID string, at time.Time) bool {
	s.mu.Lock()
	if s.project == nil || s.project.ID != projectID {
		s.mu.Unlock()
		return false
	}
	s.project.Published = true
	s.project.PublishedAt = &at
	for i := range s.projects {
		if s.projects[i].ID == projectID {
			s.projects[i].Published = true
			s.projects[i].PublishedAt = &at
		}
	}
	snap, subs := s.snapshotLocked()
	s.mu.Unlock()
	notify(subs, snap)
	return true
}

// SetProjects replaces the project list.
func (s *Store) SetProjects(projects []models.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = slices.Clone(projects)
}

// Projects returns a copy of the project list.
func (s *Store) Projects() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.projects)
}

// Subscribe registers fn to be called with a snapshot after every change to the
// active slot. fn runs on the mutating goroutine and must not block.
func (s *Store) Subscribe(fn func(Entity)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) snapshotLocked() (Entity, []func(Entity)) {
	snap := Entity{Project: cloneProject(s.project), File: cloneFile(s.file)}
	subs := make([]func(Entity), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return snap, subs
}

func notify(subs []func(Entity), snap Entity) {
	for _, fn := range subs {
		fn(snap)
	}
}

func cloneProject(p *models.Project) *models.Project {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Collaborators = slices.Clone(p.Collaborators)
	cp.Genres = slices.Clone(p.Genres)
	return &cp
}

func cloneFile(f *models.File) *models.File {
	if f == nil {
		return nil
	}
	cp := *f
	return &cp
}
