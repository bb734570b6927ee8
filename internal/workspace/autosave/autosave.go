// Package autosave persists editor content for the active document.
//
// Every trigger snapshots the surface, writes the snapshot into the store and
// issues exactly one save. Saves run concurrently; the server keeps the highest
// revision, and Status reports only the outcome of the most recent trigger.
package autosave

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	svc "quillhouse/internal/domain/services/workspace"
	"quillhouse/internal/metrics"
	"quillhouse/internal/workspace/store"
)

var (
	// ErrStaleTarget is returned when the pipeline's target is no longer the active entity.
	ErrStaleTarget = errors.New("autosave target is no longer active")
	// ErrClosed is returned by triggers after Close.
	ErrClosed = errors.New("autosave pipeline closed")
	// ErrSuperseded is the error of the latest save when the server kept a newer revision
	// than the one sent. The local content was not persisted.
	ErrSuperseded = errors.New("server holds a newer revision")
)

// Signal is what caused a trigger.
type Signal int

const (
	SignalChange Signal = iota
	SignalBlur
)

func (s Signal) String() string {
	if s == SignalBlur {
		return "blur"
	}
	return "change"
}

// Status is the save state of the most recent trigger.
type Status int

const (
	StatusIdle Status = iota
	StatusSaving
	StatusSaved
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSaving:
		return "saving"
	case StatusSaved:
		return "saved"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Snapshot is the content captured by one trigger.
type Snapshot struct {
	Target   store.Ref
	Content  string
	Seq      uint64
	Revision int64
	Signal   Signal
}

// Result is delivered once per trigger.
type Result struct {
	Seq      uint64
	Target   store.Ref
	Revision int64
	// Applied is false when the server already held a newer revision. For the
	// latest trigger that is reported as ErrSuperseded.
	Applied bool
	Err     error
}

// SaveFunc persists one snapshot.
type SaveFunc func(ctx context.Context, snap Snapshot) (*svc.SaveResult, error)

// Binding ties a pipeline to one target.
type Binding struct {
	Target store.Ref
	Save   SaveFunc
}

// DraftSaver saves a project's Master draft.
type DraftSaver interface {
	SaveDraft(ctx context.Context, projectID, content string, revision int64) (*svc.SaveResult, error)
}

// FileSaver saves a file's content.
type FileSaver interface {
	SaveFileContent(ctx context.Context, fileID, content string, revision int64) (*svc.SaveResult, error)
}

// ProjectDraftBinding binds a pipeline to projectID's draft.
func ProjectDraftBinding(s DraftSaver, projectID string) Binding {
	return Binding{
		Target: store.Ref{Kind: store.KindProject, ID: projectID},
		Save: func(ctx context.Context, snap Snapshot) (*svc.SaveResult, error) {
			return s.SaveDraft(ctx, projectID, snap.Content, snap.Revision)
		},
	}
}

// FileBinding binds a pipeline to fileID.
func FileBinding(s FileSaver, fileID string) Binding {
	return Binding{
		Target: store.Ref{Kind: store.KindFile, ID: fileID},
		Save: func(ctx context.Context, snap Snapshot) (*svc.SaveResult, error) {
			return s.SaveFileContent(ctx, fileID, snap.Content, snap.Revision)
		},
	}
}

// Config configures a Pipeline.
type Config struct {
	Binding Binding
	// Content reads the current editor content.
	Content func() string
	Store   *store.Store
	Logger  *slog.Logger
	// BaseRevision is the revision of the content as loaded. Every save is sent
	// with a revision above it.
	BaseRevision int64
	// OnResult, if set, is called after each save settles.
	OnResult func(Result)
	// Now defaults to time.Now.
	Now func() time.Time
}

// Pipeline is safe for concurrent use.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger

	mu           sync.Mutex
	seq          uint64
	lastRevision int64
	status       Status
	lastErr      error
	closed       bool
	wg           sync.WaitGroup
}

// New creates a pipeline for cfg.Binding.
func New(cfg Config) *Pipeline {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:          cfg,
		lastRevision: cfg.BaseRevision,
		logger:       logger.With("target", cfg.Binding.Target.Kind.String(), "target_id", cfg.Binding.Target.ID),
	}
}

// Target returns the entity this pipeline saves.
func (p *Pipeline) Target() store.Ref { return p.cfg.Binding.Target }

// Trigger snapshots the current content and saves it in the background.
// The returned channel receives exactly one Result and is then closed.
func (p *Pipeline) Trigger(ctx context.Context, sig Signal) <-chan Result {
	out := make(chan Result, 1)
	target := p.cfg.Binding.Target

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		out <- Result{Target: target, Err: ErrClosed}
		close(out)
		return out
	}

	content := p.cfg.Content()
	if !p.cfg.Store.UpdateContent(target, content) {
		p.mu.Unlock()
		metrics.AutosaveTotal.WithLabelValues("stale").Inc()
		p.logger.Debug("autosave skipped, target no longer active")
		out <- Result{Target: target, Err: ErrStaleTarget}
		close(out)
		return out
	}

	p.seq++
	snap := Snapshot{
		Target:   target,
		Content:  content,
		Seq:      p.seq,
		Revision: p.nextRevisionLocked(),
		Signal:   sig,
	}
	p.status = StatusSaving
	p.lastErr = nil
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		defer close(out)

		metrics.AutosaveInFlight.Inc()
		res, err := p.cfg.Binding.Save(ctx, snap)
		metrics.AutosaveInFlight.Dec()

		result := Result{Seq: snap.Seq, Target: target, Revision: snap.Revision, Err: err}
		if res != nil {
			result.Applied = res.Applied
		}
		out <- p.finish(result, snap.Signal)
	}()
	return out
}

func (p *Pipeline) finish(r Result, sig Signal) Result {
	p.mu.Lock()
	latest := r.Seq == p.seq
	if latest && r.Err == nil && !r.Applied {
		r.Err = ErrSuperseded
	}
	if latest {
		if r.Err != nil {
			p.status, p.lastErr = StatusFailed, r.Err
		} else {
			p.status, p.lastErr = StatusSaved, nil
		}
	}
	p.mu.Unlock()

	switch {
	case errors.Is(r.Err, ErrSuperseded):
		metrics.AutosaveTotal.WithLabelValues("superseded").Inc()
		p.logger.Warn("autosave not applied, server has newer content", "seq", r.Seq, "revision", r.Revision)
	case r.Err != nil:
		metrics.AutosaveTotal.WithLabelValues("failed").Inc()
		p.logger.Warn("autosave failed", "seq", r.Seq, "signal", sig.String(), "error", r.Err)
	default:
		metrics.AutosaveTotal.WithLabelValues("saved").Inc()
		p.logger.Debug("autosave settled", "seq", r.Seq, "revision", r.Revision, "applied", r.Applied)
	}

	if p.cfg.OnResult != nil {
		p.cfg.OnResult(r)
	}
	return r
}

// nextRevisionLocked returns a wall-clock revision strictly greater than the previous
// one and than the loaded revision.
func (p *Pipeline) nextRevisionLocked() int64 {
	rev := p.cfg.Now().UnixNano()
	if rev <= p.lastRevision {
		rev = p.lastRevision + 1
	}
	p.lastRevision = rev
	return rev
}

// Status returns the state of the most recent trigger and its error, if it failed.
func (p *Pipeline) Status() (Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status, p.lastErr
}

// Close stops accepting triggers. Saves already in flight still complete.
func (p *Pipeline) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

// Wait blocks until in-flight saves settle. Call after Close.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}
