package workspace

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"quillhouse/internal/domain"
	models "quillhouse/internal/domain/models/workspace"
	"quillhouse/internal/domain/repositories"
	"quillhouse/internal/richtext"
	"quillhouse/internal/service/auth"
)

// memStore backs every fake repository so the real authorizer sees consistent data
type memStore struct {
	mu       sync.Mutex
	seq      int
	projects map[string]*models.Project
	folders  map[string]*models.Folder
	files    map[string]*models.File
	messages []models.Message
}

func newMemStore() *memStore {
	return &memStore{
		projects: map[string]*models.Project{},
		folders:  map[string]*models.Folder{},
		files:    map[string]*models.File{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

type fakeProjectRepo struct{ *memStore }

func (r fakeProjectRepo) Create(_ context.Context, p *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID("project")
	cp := *p
	r.projects[p.ID] = &cp
	return nil
}

func (r fakeProjectRepo) GetByID(_ context.Context, id string) (*models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "project not found"}
	}
	cp := *p
	cp.Collaborators = slices.Clone(p.Collaborators)
	return &cp, nil
}

func (r fakeProjectRepo) ListForUser(_ context.Context, userID string) ([]models.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Project
	for _, p := range r.projects {
		if p.CanView(userID) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r fakeProjectRepo) Update(_ context.Context, p *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.projects[p.ID] = &cp
	return nil
}

func (r fakeProjectRepo) UpdateContent(_ context.Context, id, content string, wordCount int, revision int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return false, &domain.NotFoundError{Message: "project not found"}
	}
	if revision <= p.ContentRevision {
		return false, nil
	}
	p.Content, p.WordCount, p.ContentRevision = content, wordCount, revision
	return true, nil
}

func (r fakeProjectRepo) SetPublished(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.projects[id]
	p.Published = true
	p.PublishedAt = &at
	return nil
}

func (r fakeProjectRepo) Touch(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[id].LastOpenedAt = &at
	return nil
}

func (r fakeProjectRepo) AddCollaborator(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.projects[id]
	if !slices.Contains(p.Collaborators, userID) {
		p.Collaborators = append(p.Collaborators, userID)
	}
	return nil
}

func (r fakeProjectRepo) RemoveCollaborator(_ context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.projects[id]
	p.Collaborators = slices.DeleteFunc(p.Collaborators, func(c string) bool { return c == userID })
	return nil
}

func (r fakeProjectRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.projects, id)
	return nil
}

type fakeFolderRepo struct{ *memStore }

func (r fakeFolderRepo) Create(_ context.Context, f *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.ID = r.nextID("folder")
	cp := *f
	r.folders[f.ID] = &cp
	return nil
}

func (r fakeFolderRepo) GetByID(_ context.Context, id string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "folder not found"}
	}
	cp := *f
	return &cp, nil
}

func (r fakeFolderRepo) CreateMasterIfNotExists(_ context.Context, projectID string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.folders {
		if f.ProjectID == projectID && f.IsMaster() {
			cp := *f
			return &cp, nil
		}
	}
	f := &models.Folder{ID: r.nextID("folder"), ProjectID: projectID, Label: models.MasterFolderLabel}
	r.folders[f.ID] = f
	cp := *f
	return &cp, nil
}

func (r fakeFolderRepo) ListGroupsByProject(_ context.Context, projectID string) ([]models.FolderGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.FolderGroup
	for _, f := range r.folders {
		if f.ProjectID == projectID {
			out = append(out, models.FolderGroup{Folder: *f})
		}
	}
	slices.SortFunc(out, func(a, b models.FolderGroup) int {
		if a.Folder.IsMaster() != b.Folder.IsMaster() {
			if a.Folder.IsMaster() {
				return -1
			}
			return 1
		}
		if len(a.Folder.ID) != len(b.Folder.ID) {
			return len(a.Folder.ID) - len(b.Folder.ID)
		}
		return strings.Compare(a.Folder.ID, b.Folder.ID)
	})
	return out, nil
}

func (r fakeFolderRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.folders, id)
	return nil
}

type fakeFileRepo struct{ *memStore }

func (r fakeFileRepo) Create(_ context.Context, f *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.ID = r.nextID("file")
	cp := *f
	r.files[f.ID] = &cp
	return nil
}

func (r fakeFileRepo) GetByID(_ context.Context, id string) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return nil, &domain.NotFoundError{Message: "file not found"}
	}
	cp := *f
	return &cp, nil
}

func (r fakeFileRepo) UpdateContent(_ context.Context, id, content string, wordCount int, revision int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return false, &domain.NotFoundError{Message: "file not found"}
	}
	if revision <= f.ContentRevision {
		return false, nil
	}
	f.Content, f.WordCount, f.ContentRevision = content, wordCount, revision
	return true, nil
}

func (r fakeFileRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.files, id)
	return nil
}

type fakeMessageRepo struct{ *memStore }

func (r fakeMessageRepo) Create(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = r.nextID("message")
	r.messages = append(r.messages, *msg)
	return nil
}

func (r fakeMessageRepo) ListByProject(_ context.Context, projectID string, limit int) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Message
	for _, m := range r.messages {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// fakeTxManager runs fn directly; the in-memory store has no rollback
type fakeTxManager struct{ calls int }

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	m.calls++
	return fn(ctx)
}

type fixture struct {
	store    *memStore
	tx       *fakeTxManager
	projects *projectService
	folders  *folderService
	files    *fileService
	chat     *chatService
}

func newFixture() *fixture {
	store := newMemStore()
	projectRepo := fakeProjectRepo{store}
	folderRepo := fakeFolderRepo{store}
	fileRepo := fakeFileRepo{store}
	authorizer := auth.NewCollaboratorAuthorizer(projectRepo, folderRepo, fileRepo)
	analyzer := richtext.NewAnalyzer()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tx := &fakeTxManager{}

	return &fixture{
		store:    store,
		tx:       tx,
		projects: NewProjectService(projectRepo, folderRepo, tx, authorizer, analyzer, logger).(*projectService),
		folders:  NewFolderService(folderRepo, authorizer, logger).(*folderService),
		files:    NewFileService(fileRepo, authorizer, analyzer, logger).(*fileService),
		chat:     NewChatService(fakeMessageRepo{store}, authorizer, 3, logger).(*chatService),
	}
}
