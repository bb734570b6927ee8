package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"

	models "quillhouse/internal/domain/models/workspace"
	"quillhouse/internal/workspace/store"
)

type fakeBackend struct {
	mu       sync.Mutex
	messages map[string][]models.Message
	lists    int
	sendGate chan struct{}
	sendErr  error
	blockFor map[string]chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{messages: map[string][]models.Message{}, blockFor: map[string]chan struct{}{}}
}

func (b *fakeBackend) ListMessages(ctx context.Context, projectID string) ([]models.Message, error) {
	// The list is read before the gate: a blocked call returns what the server held when it was asked.
	b.mu.Lock()
	b.lists++
	gate := b.blockFor[projectID]
	msgs := append([]models.Message(nil), b.messages[projectID]...)
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return msgs, nil
}

func (b *fakeBackend) SendMessage(ctx context.Context, projectID, text string) (*models.Message, error) {
	if b.sendGate != nil {
		<-b.sendGate
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sendErr != nil {
		return nil, b.sendErr
	}
	m := models.Message{ID: fmt.Sprintf("m%d", len(b.messages[projectID])), ProjectID: projectID, SenderID: "u1", Text: text}
	b.messages[projectID] = append(b.messages[projectID], m)
	return &m, nil
}

func (b *fakeBackend) listCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lists
}

func makeMessages(n int) []models.Message {
	out := make([]models.Message, n)
	for i := range out {
		out[i] = models.Message{ID: fmt.Sprintf("m%03d", i), Text: fmt.Sprint(i)}
	}
	return out
}

func recv(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
		return nil
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name      string
		in        int
		wantLen   int
		wantFirst string
	}{
		{name: "over limit keeps newest", in: 150, wantLen: 100, wantFirst: "m050"},
		{name: "under limit unchanged", in: 50, wantLen: 50, wantFirst: "m000"},
		{name: "exactly limit", in: 100, wantLen: 100, wantFirst: "m000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(makeMessages(tt.in))
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if got[0].ID != tt.wantFirst {
				t.Errorf("first = %s, want %s", got[0].ID, tt.wantFirst)
			}
			for i := 1; i < len(got); i++ {
				if got[i-1].ID >= got[i].ID {
					t.Fatalf("order broken at %d: %s then %s", i, got[i-1].ID, got[i].ID)
				}
			}
		})
	}

	if got := Truncate(nil); len(got) != 0 {
		t.Errorf("Truncate(nil) = %v", got)
	}
}

func TestNoProjectIsNoop(t *testing.T) {
	b := newFakeBackend()
	c := New(Config{Backend: b, SenderID: "u1"})
	ctx := context.Background()

	if err := recv(t, c.Reload(ctx)); err != nil {
		t.Errorf("reload err = %v", err)
	}
	c.SetDraft(ctx, "hello")
	if _, ok := c.Send(ctx); ok {
		t.Error("sent without a project")
	}
	if b.listCalls() != 0 {
		t.Errorf("list calls = %d, want none", b.listCalls())
	}
	if c.Draft() != "hello" {
		t.Error("draft cleared even though nothing was sent")
	}
}

func TestSetProjectLoadsAndTruncates(t *testing.T) {
	b := newFakeBackend()
	b.messages["p1"] = makeMessages(150)
	var updates int
	var mu sync.Mutex
	c := New(Config{Backend: b, SenderID: "u1", OnUpdate: func([]models.Message) {
		mu.Lock()
		updates++
		mu.Unlock()
	}})

	if err := recv(t, c.SetProject(context.Background(), "p1")); err != nil {
		t.Fatal(err)
	}
	msgs := c.Messages()
	if len(msgs) != 100 || msgs[0].ID != "m050" || msgs[99].ID != "m149" {
		t.Errorf("rendered %d messages, first=%s", len(msgs), msgs[0].ID)
	}

	if err := recv(t, c.SetProject(context.Background(), "p1")); err != nil {
		t.Fatal(err)
	}
	if b.listCalls() != 1 {
		t.Errorf("same project reloaded: %d calls", b.listCalls())
	}

	mu.Lock()
	defer mu.Unlock()
	if updates == 0 {
		t.Error("OnUpdate never called")
	}
}

func TestSendClearsInputSynchronously(t *testing.T) {
	b := newFakeBackend()
	b.sendGate = make(chan struct{})
	scrolled := false
	c := New(Config{Backend: b, SenderID: "u1", OnScroll: func() { scrolled = true }})
	c.limiter = rate.NewLimiter(0, 0) // keep typing from racing a reload against the send
	recv(t, c.SetProject(context.Background(), "p1"))

	c.SetDraft(context.Background(), "  first line  ")
	result, ok := c.Send(context.Background())
	if !ok {
		t.Fatal("send refused")
	}
	if c.Draft() != "" {
		t.Errorf("draft = %q before the send resolved", c.Draft())
	}
	if !scrolled {
		t.Error("view not scrolled")
	}

	close(b.sendGate)
	if err := recv(t, result); err != nil {
		t.Fatal(err)
	}
	msgs := c.Messages()
	if len(msgs) != 1 || msgs[0].Text != "  first line  " {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestSendFailureStillClears(t *testing.T) {
	b := newFakeBackend()
	b.sendErr = errors.New("offline")
	c := New(Config{Backend: b, SenderID: "u1"})
	recv(t, c.SetProject(context.Background(), "p1"))

	c.SetDraft(context.Background(), "hi")
	result, ok := c.Send(context.Background())
	if !ok {
		t.Fatal("send refused")
	}
	if c.Draft() != "" {
		t.Error("draft kept on failure")
	}
	if err := recv(t, result); err == nil {
		t.Error("expected the failure to be reported")
	}
}

func TestSendRequirements(t *testing.T) {
	tests := []struct {
		name   string
		sender string
		draft  string
	}{
		{name: "blank draft", sender: "u1", draft: "   "},
		{name: "no sender", sender: "", draft: "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Config{Backend: newFakeBackend(), SenderID: tt.sender})
			recv(t, c.SetProject(context.Background(), "p1"))
			c.SetDraft(context.Background(), tt.draft)
			if _, ok := c.Send(context.Background()); ok {
				t.Error("send accepted")
			}
			if c.Draft() != tt.draft {
				t.Errorf("draft = %q, want it kept as %q", c.Draft(), tt.draft)
			}
		})
	}
}

func TestReloadStartedBeforeSendKeepsMessage(t *testing.T) {
	b := newFakeBackend()
	b.messages["p1"] = makeMessages(1)
	c := New(Config{Backend: b, SenderID: "u1"})
	c.limiter = rate.NewLimiter(0, 0)
	ctx := context.Background()
	recv(t, c.SetProject(ctx, "p1"))

	gate := make(chan struct{})
	b.mu.Lock()
	b.blockFor["p1"] = gate
	b.mu.Unlock()
	slow := c.Reload(ctx)
	deadline := time.Now().Add(2 * time.Second)
	for b.listCalls() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("reload never reached the backend")
		}
		time.Sleep(time.Millisecond)
	}

	c.SetDraft(ctx, "hello")
	result, ok := c.Send(ctx)
	if !ok {
		t.Fatal("send refused")
	}
	if err := recv(t, result); err != nil {
		t.Fatal(err)
	}
	close(gate)
	recv(t, slow)

	msgs := c.Messages()
	if len(msgs) != 2 || msgs[1].Text != "hello" {
		t.Errorf("messages = %+v, sent message lost to an older reload", msgs)
	}
}

func TestOlderReloadDoesNotOverwriteNewer(t *testing.T) {
	b := newFakeBackend()
	b.messages["p1"] = makeMessages(1)
	c := New(Config{Backend: b, SenderID: "u1"})
	ctx := context.Background()
	recv(t, c.SetProject(ctx, "p1"))

	gate := make(chan struct{})
	b.mu.Lock()
	b.blockFor["p1"] = gate
	b.mu.Unlock()
	older := c.Reload(ctx)
	for b.listCalls() < 2 {
		time.Sleep(time.Millisecond)
	}

	b.mu.Lock()
	delete(b.blockFor, "p1")
	b.messages["p1"] = makeMessages(3)
	b.mu.Unlock()
	recv(t, c.Reload(ctx))
	close(gate)
	recv(t, older)

	if n := len(c.Messages()); n != 3 {
		t.Errorf("messages = %d, want the newer reload's 3", n)
	}
}

func TestStaleReloadDropped(t *testing.T) {
	b := newFakeBackend()
	b.messages["p1"] = makeMessages(3)
	b.messages["p2"] = makeMessages(1)
	gate := make(chan struct{})
	b.blockFor["p1"] = gate
	c := New(Config{Backend: b, SenderID: "u1"})

	slow := c.SetProject(context.Background(), "p1")
	if err := recv(t, c.SetProject(context.Background(), "p2")); err != nil {
		t.Fatal(err)
	}
	close(gate)
	recv(t, slow)

	if msgs := c.Messages(); len(msgs) != 1 {
		t.Errorf("p1 messages leaked into p2: %d", len(msgs))
	}
}

func TestSetDraftReloadIsRateLimited(t *testing.T) {
	b := newFakeBackend()
	c := New(Config{Backend: b, SenderID: "u1", PollInterval: time.Hour, ReloadBurst: 2})
	recv(t, c.SetProject(context.Background(), "p1")) // does not spend a token

	for _, s := range []string{"h", "he", "hel", "hell", "hello"} {
		c.SetDraft(context.Background(), s)
	}

	deadline := time.Now().Add(time.Second)
	for b.listCalls() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	if got := b.listCalls(); got != 3 {
		t.Errorf("list calls = %d, want 1 mount + 2 typing", got)
	}
}

func TestRunPolls(t *testing.T) {
	b := newFakeBackend()
	c := New(Config{Backend: b, SenderID: "u1", PollInterval: 5 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	if b.listCalls() != 0 {
		t.Error("polled without a project")
	}

	recv(t, c.SetProject(context.Background(), "p1"))
	b.mu.Lock()
	b.messages["p1"] = makeMessages(2)
	b.mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for len(c.Messages()) != 2 {
		if time.Now().After(deadline) {
			t.Fatal("poll never picked up new messages")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	if err := recv(t, errc); err != nil {
		t.Errorf("Run = %v", err)
	}
}

func TestFollowTracksActiveProject(t *testing.T) {
	b := newFakeBackend()
	b.messages["p1"] = makeMessages(2)
	b.messages["p2"] = makeMessages(5)
	st := store.New()
	c := New(Config{Backend: b, SenderID: "u1"})

	cancel := c.Follow(context.Background(), st)
	if c.ProjectID() != "" {
		t.Fatalf("project = %q before anything is open", c.ProjectID())
	}

	st.SetProject(&models.Project{ID: "p1"})
	waitFor(t, func() bool { return len(c.Messages()) == 2 })

	st.SetFile(&models.File{ID: "f1", ProjectID: "p2"})
	waitFor(t, func() bool { return len(c.Messages()) == 5 })

	st.Clear()
	if c.ProjectID() != "" || len(c.Messages()) != 0 {
		t.Errorf("after clear: project=%q messages=%d", c.ProjectID(), len(c.Messages()))
	}

	cancel()
	st.SetProject(&models.Project{ID: "p1"})
	if c.ProjectID() != "" {
		t.Error("channel still follows after cancel")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
