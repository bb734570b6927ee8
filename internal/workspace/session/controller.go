// Package session decides which document is open, in which mode, and owns the
// lifecycle of the editing surface.
//
// Every Open bumps a generation counter. Background loads carry the generation
// they were started under and are discarded if it no longer matches, so a slow
// response can never overwrite a newer document.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"quillhouse/internal/config"
	"quillhouse/internal/domain"
	models "quillhouse/internal/domain/models/workspace"
	"quillhouse/internal/metrics"
	"quillhouse/internal/workspace/autosave"
	"quillhouse/internal/workspace/foldertree"
	"quillhouse/internal/workspace/store"
)

var (
	ErrNoProject    = errors.New("no project is open")
	ErrMasterFolder = errors.New("files cannot be created in the Master folder")
	ErrNotEditable  = errors.New("the open document is not an editable draft")

	// ErrTargetMismatch fails an open whose file belongs to a different project than the one named.
	ErrTargetMismatch = errors.New("file does not belong to the requested project")
)

// Config configures a Controller.
type Config struct {
	UserID  string
	Backend Backend
	Store   *store.Store
	Dialogs Dialogs // optional
	Welcome config.WelcomeConfig
	Logger  *slog.Logger
	// OnSaveResult, if set, receives every autosave result.
	OnSaveResult func(autosave.Result)
}

// Controller is safe for concurrent use. Store subscribers and surface
// implementations are called with the controller's lock held and must not call
// back into it.
type Controller struct {
	cfg    Config
	logger *slog.Logger

	mu            sync.Mutex
	gen           uint64
	closed        bool
	mode          Mode
	res           Resolution
	target        Target
	surface       Surface
	pending       *pendingOpen
	pipeline      *autosave.Pipeline
	detach        []func()
	cancelWelcome context.CancelFunc

	projectID string
	role      foldertree.Role
	groups    []models.FolderGroup
	view      []models.FolderGroup

	subs    map[int]func(Mode)
	nextSub int

	wg sync.WaitGroup
}

type pendingOpen struct {
	ctx    context.Context
	gen    uint64
	target Target
	done   chan Mode
}

// New creates a controller in ModeEmpty with no surface attached.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Store == nil {
		cfg.Store = store.New()
	}
	return &Controller{
		cfg:    cfg,
		logger: logger.With("component", "session", "user_id", cfg.UserID),
		subs:   map[int]func(Mode){},
	}
}

// Open replaces the open document with t. It never blocks on the network.
//
// The returned channel receives the resulting mode once t has been applied,
// then closes. It closes without a value if a later Open or Close supersedes t.
// Without an attached surface the open is deferred until AttachSurface.
func (c *Controller) Open(ctx context.Context, t Target) <-chan Mode {
	done := make(chan Mode, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(done)
		return done
	}
	c.gen++
	c.teardownLocked()
	c.target = t

	if c.surface == nil {
		c.logger.Debug("surface not attached, deferring open", "project_id", t.ProjectID, "file_id", t.FileID)
		c.pending = &pendingOpen{ctx: ctx, gen: c.gen, target: t, done: done}
		notify := c.setModeLocked(Resolution{Mode: ModeLoading})
		c.mu.Unlock()
		notify()
		return done
	}

	notify := c.beginLocked(ctx, c.gen, t, done)
	c.mu.Unlock()
	notify()
	return done
}

// AttachSurface hands the controller its editing surface. A deferred open runs
// now; otherwise the current target is (re)applied to the new surface.
func (c *Controller) AttachSurface(s Surface) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	var notify func()
	if p := c.pending; p != nil {
		c.pending = nil
		c.surface = s
		notify = c.beginLocked(p.ctx, p.gen, p.target, p.done)
	} else {
		c.gen++
		c.teardownLocked()
		c.surface = s
		notify = c.beginLocked(context.Background(), c.gen, c.target, make(chan Mode, 1))
	}
	c.mu.Unlock()
	notify()
}

// beginLocked starts applying t. The returned func must run after unlocking.
func (c *Controller) beginLocked(ctx context.Context, gen uint64, t Target, done chan Mode) func() {
	if t.IsZero() {
		return c.applyEmptyLocked(gen, done)
	}

	notify := c.setModeLocked(Resolution{Mode: ModeLoading})
	c.wg.Add(1)
	go c.load(ctx, gen, t, done)
	return notify
}

func (c *Controller) load(ctx context.Context, gen uint64, t Target, done chan Mode) {
	defer c.wg.Done()

	loaded, err := c.fetch(ctx, t)

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		metrics.SessionStaleResultsTotal.Inc()
		c.logger.Debug("discarding stale load", "project_id", t.ProjectID, "file_id", t.FileID)
		close(done)
		return
	}

	var notify func()
	if err != nil {
		c.logger.Warn("open failed, showing empty workspace",
			"project_id", t.ProjectID,
			"file_id", t.FileID,
			"error", err,
		)
		notify = c.applyEmptyLocked(gen, done)
	} else {
		notify = c.applyLocked(ctx, loaded, done)
	}
	c.mu.Unlock()
	notify()
}

type loadResult struct {
	entity  store.Entity
	project *models.Project // the project the entity belongs to, for role
	groups  []models.FolderGroup
}

// fetch loads the document, its project and folder list concurrently.
func (c *Controller) fetch(ctx context.Context, t Target) (*loadResult, error) {
	b := c.cfg.Backend
	out := &loadResult{}

	if t.FileID == "" {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			p, err := b.LoadDraft(gctx, t.ProjectID)
			if err != nil {
				return fmt.Errorf("load project %s: %w", t.ProjectID, err)
			}
			out.entity.Project, out.project = p, p
			return nil
		})
		g.Go(func() error {
			groups, err := b.ListFolders(gctx, t.ProjectID)
			if err != nil {
				return fmt.Errorf("list folders for %s: %w", t.ProjectID, err)
			}
			out.groups = groups
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil
	}

	projectID := t.ProjectID
	if projectID == "" {
		f, err := b.LoadFile(ctx, t.FileID)
		if err != nil {
			return nil, fmt.Errorf("load file %s: %w", t.FileID, err)
		}
		out.entity.File = f
		projectID = f.ProjectID
	}

	g, gctx := errgroup.WithContext(ctx)
	if out.entity.File == nil {
		g.Go(func() error {
			f, err := b.LoadFile(gctx, t.FileID)
			if err != nil {
				return fmt.Errorf("load file %s: %w", t.FileID, err)
			}
			out.entity.File = f
			return nil
		})
	}
	g.Go(func() error {
		p, err := b.LoadDraft(gctx, projectID)
		if err != nil {
			return fmt.Errorf("load project %s: %w", projectID, err)
		}
		out.project = p
		return nil
	})
	g.Go(func() error {
		groups, err := b.ListFolders(gctx, projectID)
		if err != nil {
			return fmt.Errorf("list folders for %s: %w", projectID, err)
		}
		out.groups = groups
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if f := out.entity.File; f.ProjectID != projectID {
		return nil, fmt.Errorf("file %s in project %s, not %s: %w", f.ID, f.ProjectID, projectID, ErrTargetMismatch)
	}
	return out, nil
}

func (c *Controller) applyLocked(ctx context.Context, l *loadResult, done chan Mode) func() {
	e := l.entity
	var content string
	if e.File != nil {
		c.cfg.Store.SetFile(e.File)
		content = e.File.Content
	} else {
		c.cfg.Store.SetProject(e.Project)
		content = e.Project.Content
	}

	res := ResolveMode(e, c.cfg.UserID)
	c.projectID = e.ProjectID()
	c.role = foldertree.RoleFor(l.project, c.cfg.UserID)
	c.groups = l.groups
	c.view = foldertree.BuildView(l.groups, c.cfg.UserID, c.role)

	c.surface.SetContent(content)
	c.surface.SetEditable(res.Mode == ModeEditable)
	if res.Mode == ModeEditable {
		c.armLocked(ctx, res, e)
	}

	notify := c.setModeLocked(res)
	return func() {
		notify()
		done <- res.Mode
		close(done)
	}
}

// armLocked binds an autosave pipeline to the open entity and wires the surface to it.
func (c *Controller) armLocked(ctx context.Context, res Resolution, e store.Entity) {
	var (
		binding autosave.Binding
		base    int64
	)
	switch res.Save {
	case SaveFile:
		binding, base = autosave.FileBinding(c.cfg.Backend, e.File.ID), e.File.ContentRevision
	case SaveProjectDraft:
		binding, base = autosave.ProjectDraftBinding(c.cfg.Backend, e.Project.ID), e.Project.ContentRevision
	default:
		return
	}

	s := c.surface
	p := autosave.New(autosave.Config{
		Binding:      binding,
		Content:      s.Content,
		Store:        c.cfg.Store,
		Logger:       c.logger,
		BaseRevision: base,
		OnResult:     c.cfg.OnSaveResult,
	})

	// Saves outlive the open that armed them.
	saveCtx := context.WithoutCancel(ctx)
	c.pipeline = p
	c.detach = append(c.detach,
		s.OnChange(func() { p.Trigger(saveCtx, autosave.SignalChange) }),
		s.OnBlur(func() { p.Trigger(saveCtx, autosave.SignalBlur) }),
	)
}

func (c *Controller) applyEmptyLocked(gen uint64, done chan Mode) func() {
	c.cfg.Store.Clear()
	c.projectID = ""
	c.role = foldertree.RoleCollaborator
	c.groups, c.view = nil, nil

	c.surface.SetEditable(false)
	c.surface.SetContent("")
	c.startWelcomeLocked(gen)

	notify := c.setModeLocked(Resolution{Mode: ModeEmpty})
	return func() {
		notify()
		done <- ModeEmpty
		close(done)
	}
}

// teardownLocked detaches the surface from the current document. In-flight
// saves keep running; Close waits for them.
func (c *Controller) teardownLocked() {
	if c.cancelWelcome != nil {
		c.cancelWelcome()
		c.cancelWelcome = nil
	}
	for _, fn := range c.detach {
		fn()
	}
	c.detach = nil

	if p := c.pipeline; p != nil {
		p.Close()
		c.pipeline = nil
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			p.Wait()
		}()
	}

	if c.pending != nil {
		close(c.pending.done)
		c.pending = nil
	}
}

// setModeLocked records res and returns the notifications to run after unlocking.
func (c *Controller) setModeLocked(res Resolution) func() {
	prev := c.mode
	c.mode, c.res = res.Mode, res
	if prev == ModeLoading && res.Mode == ModeLoading {
		return func() {}
	}

	subs := make([]func(Mode), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	dialogs := c.cfg.Dialogs
	mode := res.Mode
	c.logger.Debug("session transition", "from", prev.String(), "to", mode.String())

	return func() {
		if dialogs != nil && mode != ModeLoading {
			dialogs.CloseAll()
		}
		metrics.SessionTransitionsTotal.WithLabelValues(mode.String()).Inc()
		for _, fn := range subs {
			fn(mode)
		}
	}
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Resolution returns the current mode and save binding.
func (c *Controller) Resolution() Resolution {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.res
}

// Subscribe calls fn after every mode transition. Under concurrent transitions
// notifications may arrive out of order; Mode is authoritative.
func (c *Controller) Subscribe(fn func(Mode)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Tree returns the folder view of the open project for the current user.
func (c *Controller) Tree() []models.FolderGroup {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.FolderGroup{}, c.view...)
}

// CreationTargets returns the folders that may receive new files.
func (c *Controller) CreationTargets() []models.Folder {
	c.mu.Lock()
	defer c.mu.Unlock()
	return foldertree.CreationTargets(c.view)
}

// SaveStatus reports the autosave state of the open document.
func (c *Controller) SaveStatus() (autosave.Status, error) {
	c.mu.Lock()
	p := c.pipeline
	c.mu.Unlock()
	if p == nil {
		return autosave.StatusIdle, nil
	}
	return p.Status()
}

// Flush saves the current content and waits for the result.
func (c *Controller) Flush(ctx context.Context) error {
	c.mu.Lock()
	p := c.pipeline
	c.mu.Unlock()
	if p == nil {
		return ErrNotEditable
	}

	select {
	case r := <-p.Trigger(ctx, autosave.SignalBlur):
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RefreshTree reloads the folder list of the open project.
func (c *Controller) RefreshTree(ctx context.Context) error {
	c.mu.Lock()
	gen, projectID := c.gen, c.projectID
	c.mu.Unlock()
	if projectID == "" {
		return ErrNoProject
	}

	groups, err := c.cfg.Backend.ListFolders(ctx, projectID)
	if err != nil {
		return fmt.Errorf("list folders: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		metrics.SessionStaleResultsTotal.Inc()
		return nil
	}
	c.groups = groups
	c.view = foldertree.BuildView(groups, c.cfg.UserID, c.role)
	return nil
}

// CreateFolder creates a folder in the open project and refreshes the tree.
// Failures leave dialogs open so the user can retry.
func (c *Controller) CreateFolder(ctx context.Context, label string, sharedBase bool) (*models.Folder, error) {
	c.mu.Lock()
	projectID := c.projectID
	c.mu.Unlock()
	if projectID == "" {
		return nil, ErrNoProject
	}

	folder, err := c.cfg.Backend.CreateFolder(ctx, projectID, label, sharedBase)
	if err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	if err := c.RefreshTree(ctx); err != nil {
		c.logger.Warn("refresh tree after folder create failed", "error", err)
	}
	return folder, nil
}

// CreateFile creates a file in folderID and refreshes the tree.
func (c *Controller) CreateFile(ctx context.Context, folderID, label string) (*models.File, error) {
	c.mu.Lock()
	projectID := c.projectID
	folder, known := foldertree.Find(c.groups, folderID)
	c.mu.Unlock()
	if projectID == "" {
		return nil, ErrNoProject
	}
	if known && folder.IsMaster() {
		return nil, ErrMasterFolder
	}

	file, err := c.cfg.Backend.CreateFile(ctx, folderID, label)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	if err := c.RefreshTree(ctx); err != nil {
		c.logger.Warn("refresh tree after file create failed", "error", err)
	}
	return file, nil
}

// Publish saves the open draft, publishes the project and drops to ReadOnly.
// A project someone else already published is treated the same way.
func (c *Controller) Publish(ctx context.Context) (*models.Project, error) {
	c.mu.Lock()
	if c.res.Save != SaveProjectDraft {
		c.mu.Unlock()
		return nil, ErrNotEditable
	}
	gen, projectID := c.gen, c.projectID
	c.mu.Unlock()

	if err := c.Flush(ctx); err != nil {
		return nil, fmt.Errorf("save before publish: %w", err)
	}

	project, err := c.cfg.Backend.Publish(ctx, projectID)
	if err != nil && !errors.Is(err, domain.ErrPublished) {
		return nil, fmt.Errorf("publish: %w", err)
	}

	at := time.Now()
	if project != nil && project.PublishedAt != nil {
		at = *project.PublishedAt
	}

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		metrics.SessionStaleResultsTotal.Inc()
		return project, err
	}
	c.cfg.Store.MarkPublished(projectID, at)
	c.teardownLocked()
	c.surface.SetEditable(false)
	notify := c.setModeLocked(Resolution{Mode: ModeReadOnly})
	c.mu.Unlock()
	notify()

	c.logger.Info("project published", "project_id", projectID)
	return project, err
}

// Close detaches the surface and waits for in-flight loads and saves.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.gen++
	c.teardownLocked()
	c.mu.Unlock()

	c.wg.Wait()
}
