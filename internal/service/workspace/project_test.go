package workspace

import (
	"context"
	"errors"
	"strings"
	"testing"

	"quillhouse/internal/domain"
	wsSvc "quillhouse/internal/domain/services/workspace"
)

func createProject(t *testing.T, f *fixture, owner string) string {
	t.Helper()
	p, err := f.projects.CreateProject(context.Background(), &wsSvc.CreateProjectRequest{
		UserID: owner,
		Title:  "The Long Winter",
		Genres: []string{" Fantasy", "fantasy", "Drama"},
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return p.ID
}

func TestCreateProject(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, err := f.projects.CreateProject(ctx, &wsSvc.CreateProjectRequest{
		UserID: "u1",
		Title:  "  The Long Winter ",
		Genres: []string{" Fantasy", "fantasy", "Drama", ""},
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	if p.Title != "The Long Winter" {
		t.Errorf("title = %q, want trimmed", p.Title)
	}
	if !strings.HasPrefix(p.Slug, "the-long-winter-") {
		t.Errorf("slug = %q", p.Slug)
	}
	if got := strings.Join(p.Genres, ","); got != "fantasy,drama" {
		t.Errorf("genres = %q, want fantasy,drama", got)
	}
	if f.tx.calls != 1 {
		t.Errorf("expected one transaction, got %d", f.tx.calls)
	}

	groups, err := f.folders.ListFolders(ctx, "u1", p.ID)
	if err != nil {
		t.Fatalf("ListFolders: %v", err)
	}
	if len(groups) != 1 || !groups[0].Folder.IsMaster() {
		t.Fatalf("expected a single Master folder, got %+v", groups)
	}
}

func TestCreateProjectValidation(t *testing.T) {
	tests := []struct {
		name string
		req  wsSvc.CreateProjectRequest
	}{
		{name: "missing user", req: wsSvc.CreateProjectRequest{Title: "A"}},
		{name: "empty title", req: wsSvc.CreateProjectRequest{UserID: "u1"}},
		{name: "blank title", req: wsSvc.CreateProjectRequest{UserID: "u1", Title: "   "}},
		{name: "title too long", req: wsSvc.CreateProjectRequest{UserID: "u1", Title: strings.Repeat("a", 256)}},
		{name: "too many genres", req: wsSvc.CreateProjectRequest{UserID: "u1", Title: "A", Genres: make([]string, 11)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.projects.CreateProject(context.Background(), &tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdateProject(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := createProject(t, f, "u1")

	title := "Spring Thaw"
	p, err := f.projects.UpdateProject(ctx, "u1", id, &wsSvc.UpdateProjectRequest{Title: &title})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if p.Title != title {
		t.Errorf("title = %q, want %q", p.Title, title)
	}

	blank := "  "
	if _, err := f.projects.UpdateProject(ctx, "u1", id, &wsSvc.UpdateProjectRequest{Title: &blank}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank title: expected validation error, got %v", err)
	}

	if _, err := f.projects.UpdateProject(ctx, "u2", id, &wsSvc.UpdateProjectRequest{Title: &title}); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("stranger: expected forbidden, got %v", err)
	}
}

func TestSaveDraft(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := createProject(t, f, "u1")

	res, err := f.projects.SaveDraft(ctx, "u1", id, &wsSvc.SaveContentRequest{
		Content:  "<p>Once upon</p><p>a time</p><script>alert(1)</script>",
		Revision: 10,
	})
	if err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if !res.Applied || res.WordCount != 4 {
		t.Errorf("result = %+v, want applied with 4 words", res)
	}
	if strings.Contains(f.store.projects[id].Content, "script") {
		t.Errorf("content was not sanitized: %q", f.store.projects[id].Content)
	}

	// An older revision arriving late must not overwrite the newer content
	res, err = f.projects.SaveDraft(ctx, "u1", id, &wsSvc.SaveContentRequest{Content: "<p>stale</p>", Revision: 9})
	if err != nil {
		t.Fatalf("SaveDraft stale: %v", err)
	}
	if res.Applied {
		t.Error("stale revision should not be applied")
	}
	if strings.Contains(f.store.projects[id].Content, "stale") {
		t.Error("stale content overwrote newer content")
	}
}

func TestSaveDraftAccess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := createProject(t, f, "u1")
	if _, err := f.projects.AddCollaborator(ctx, "u1", id, "u2"); err != nil {
		t.Fatalf("AddCollaborator: %v", err)
	}

	req := &wsSvc.SaveContentRequest{Content: "<p>x</p>", Revision: 1}
	if _, err := f.projects.SaveDraft(ctx, "u2", id, req); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("collaborator save: expected forbidden, got %v", err)
	}
	if _, err := f.projects.SaveDraft(ctx, "u3", id, req); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("stranger save: expected forbidden, got %v", err)
	}
	if _, err := f.projects.SaveDraft(ctx, "u1", id, &wsSvc.SaveContentRequest{Content: "x"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("missing revision: expected validation error, got %v", err)
	}

	if _, err := f.projects.Publish(ctx, "u1", id); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if _, err := f.projects.SaveDraft(ctx, "u1", id, req); !errors.Is(err, domain.ErrPublished) {
		t.Errorf("save after publish: expected ErrPublished, got %v", err)
	}
}

func TestPublish(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := createProject(t, f, "u1")

	if _, err := f.projects.Publish(ctx, "u2", id); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("stranger publish: expected forbidden, got %v", err)
	}

	p, err := f.projects.Publish(ctx, "u1", id)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !p.Published || p.PublishedAt == nil {
		t.Errorf("project not marked published: %+v", p)
	}
	first := *p.PublishedAt

	p, err = f.projects.Publish(ctx, "u1", id)
	if err != nil {
		t.Fatalf("second Publish: %v", err)
	}
	if !p.PublishedAt.Equal(first) {
		t.Error("publishing twice should keep the original timestamp")
	}
}

func TestLoadDraft(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := createProject(t, f, "u1")
	if _, err := f.projects.AddCollaborator(ctx, "u1", id, "u2"); err != nil {
		t.Fatalf("AddCollaborator: %v", err)
	}

	for _, user := range []string{"u1", "u2"} {
		p, err := f.projects.LoadDraft(ctx, user, id)
		if err != nil {
			t.Fatalf("LoadDraft(%s): %v", user, err)
		}
		if p.LastOpenedAt == nil {
			t.Errorf("LoadDraft(%s) did not record the open", user)
		}
	}

	if _, err := f.projects.LoadDraft(ctx, "u3", id); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("stranger: expected forbidden, got %v", err)
	}
	if _, err := f.projects.LoadDraft(ctx, "u1", "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing project: expected not found, got %v", err)
	}
}

func TestCollaborators(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := createProject(t, f, "u1")

	if _, err := f.projects.AddCollaborator(ctx, "u1", id, "u1"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("owner as collaborator: expected validation error, got %v", err)
	}

	p, err := f.projects.AddCollaborator(ctx, "u1", id, "u2")
	if err != nil {
		t.Fatalf("AddCollaborator: %v", err)
	}
	if !p.IsCollaborator("u2") {
		t.Fatal("u2 should be a collaborator")
	}
	if _, err := f.projects.AddCollaborator(ctx, "u1", id, "u3"); err != nil {
		t.Fatalf("AddCollaborator u3: %v", err)
	}

	if _, err := f.projects.RemoveCollaborator(ctx, "u2", id, "u3"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("collaborator removing another: expected forbidden, got %v", err)
	}

	p, err = f.projects.RemoveCollaborator(ctx, "u2", id, "u2")
	if err != nil {
		t.Fatalf("self removal: %v", err)
	}
	if p.IsCollaborator("u2") {
		t.Error("u2 should have left the project")
	}

	if _, err := f.projects.RemoveCollaborator(ctx, "u1", id, "u9"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown collaborator: expected not found, got %v", err)
	}
}

func TestListProjects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := createProject(t, f, "u1")
	createProject(t, f, "u2")
	if _, err := f.projects.AddCollaborator(ctx, "u1", id, "u2"); err != nil {
		t.Fatalf("AddCollaborator: %v", err)
	}

	tests := []struct {
		user string
		want int
	}{
		{"u1", 1},
		{"u2", 2},
		{"u3", 0},
	}
	for _, tt := range tests {
		got, err := f.projects.ListProjects(ctx, tt.user)
		if err != nil {
			t.Fatalf("ListProjects(%s): %v", tt.user, err)
		}
		if len(got) != tt.want {
			t.Errorf("ListProjects(%s) = %d projects, want %d", tt.user, len(got), tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Long Winter", "the-long-winter"},
		{"  Hello,   World!  ", "hello-world"},
		{"Café Noir", "café-noir"},
		{"!!!", ""},
		{strings.Repeat("ab ", 40), strings.Repeat("ab-", 20) + "a"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
