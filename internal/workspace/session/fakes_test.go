package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"quillhouse/internal/domain"
	models "quillhouse/internal/domain/models/workspace"
	svc "quillhouse/internal/domain/services/workspace"
)

type saveCall struct {
	kind     string
	id       string
	content  string
	revision int64
}

type fakeBackend struct {
	mu        sync.Mutex
	projects  map[string]*models.Project
	files     map[string]*models.File
	folders   map[string][]models.FolderGroup
	blocks    map[string]chan struct{}
	saves     []saveCall
	published []string
	created   []string
	loads     int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		projects: map[string]*models.Project{},
		files:    map[string]*models.File{},
		folders:  map[string][]models.FolderGroup{},
		blocks:   map[string]chan struct{}{},
	}
}

// block makes loads of id wait until the returned func is called.
func (b *fakeBackend) block(id string) (release func()) {
	ch := make(chan struct{})
	b.mu.Lock()
	b.blocks[id] = ch
	b.mu.Unlock()
	return func() { close(ch) }
}

func (b *fakeBackend) wait(ctx context.Context, id string) error {
	b.mu.Lock()
	ch := b.blocks[id]
	b.loads++
	b.mu.Unlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *fakeBackend) LoadFile(ctx context.Context, fileID string) (*models.File, error) {
	if err := b.wait(ctx, fileID); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.files[fileID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (b *fakeBackend) LoadDraft(ctx context.Context, projectID string) (*models.Project, error) {
	if err := b.wait(ctx, projectID); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.projects[projectID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (b *fakeBackend) ListFolders(ctx context.Context, projectID string) ([]models.FolderGroup, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.FolderGroup(nil), b.folders[projectID]...), nil
}

func (b *fakeBackend) CreateFolder(ctx context.Context, projectID, label string, sharedBase bool) (*models.Folder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f := models.Folder{ID: "folder-" + label, ProjectID: projectID, Label: label, SharedBase: sharedBase}
	b.folders[projectID] = append(b.folders[projectID], models.FolderGroup{Folder: f})
	b.created = append(b.created, f.ID)
	return &f, nil
}

func (b *fakeBackend) CreateFile(ctx context.Context, folderID, label string) (*models.File, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f := &models.File{ID: "file-" + label, FolderID: folderID, Label: label}
	b.created = append(b.created, f.ID)
	return f, nil
}

func (b *fakeBackend) Publish(ctx context.Context, projectID string) (*models.Project, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.projects[projectID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if p.Published {
		return nil, domain.ErrPublished
	}
	now := time.Now()
	p.Published, p.PublishedAt = true, &now
	b.published = append(b.published, projectID)
	cp := *p
	return &cp, nil
}

func (b *fakeBackend) SaveDraft(ctx context.Context, projectID, content string, revision int64) (*svc.SaveResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saves = append(b.saves, saveCall{kind: "draft", id: projectID, content: content, revision: revision})
	if p, ok := b.projects[projectID]; ok {
		p.Content = content
	}
	return &svc.SaveResult{Applied: true, Revision: revision}, nil
}

func (b *fakeBackend) SaveFileContent(ctx context.Context, fileID, content string, revision int64) (*svc.SaveResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saves = append(b.saves, saveCall{kind: "file", id: fileID, content: content, revision: revision})
	return &svc.SaveResult{Applied: true, Revision: revision}, nil
}

func (b *fakeBackend) saveCalls() []saveCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]saveCall(nil), b.saves...)
}

func (b *fakeBackend) projectContent(id string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.projects[id].Content
}

type countingDialogs struct {
	mu     sync.Mutex
	closed int
}

func (d *countingDialogs) CloseAll() {
	d.mu.Lock()
	d.closed++
	d.mu.Unlock()
}

func (d *countingDialogs) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// seeded returns a backend holding project p1 owned by u1 with collaborator u2.
func seeded() *fakeBackend {
	b := newFakeBackend()
	b.projects["p1"] = &models.Project{ID: "p1", OwnerID: "u1", Collaborators: []string{"u2"}, Content: "<p>master</p>"}
	b.projects["p2"] = &models.Project{ID: "p2", OwnerID: "u1", Content: "<p>second</p>"}
	b.files["f1"] = &models.File{ID: "f1", ProjectID: "p1", FolderID: "d2", OwnerID: "u2", Content: "<p>u2 notes</p>"}
	b.files["f2"] = &models.File{ID: "f2", ProjectID: "p1", FolderID: "d3", OwnerID: "u1", Content: "<p>u1 notes</p>"}
	b.folders["p1"] = []models.FolderGroup{
		{Folder: models.Folder{ID: "d1", ProjectID: "p1", Label: "Master"}},
		{Folder: models.Folder{ID: "d2", ProjectID: "p1", Label: "Drafts", OwnerID: "u2"}},
		{Folder: models.Folder{ID: "d3", ProjectID: "p1", Label: "World", SharedBase: true}},
	}
	return b
}

func waitMode(t *testing.T, ch <-chan Mode) (Mode, bool) {
	t.Helper()
	select {
	case m, ok := <-ch:
		return m, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for open")
		return 0, false
	}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
