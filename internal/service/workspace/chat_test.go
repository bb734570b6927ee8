package workspace

import (
	"context"
	"errors"
	"strings"
	"testing"

	"quillhouse/internal/domain"
	wsSvc "quillhouse/internal/domain/services/workspace"
)

func TestSendMessage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := createProject(t, f, "u1")
	if _, err := f.projects.AddCollaborator(ctx, "u1", id, "u2"); err != nil {
		t.Fatalf("AddCollaborator: %v", err)
	}

	tests := []struct {
		name    string
		sender  string
		text    string
		wantErr error
	}{
		{name: "owner", sender: "u1", text: "  hello  "},
		{name: "collaborator", sender: "u2", text: "hi"},
		{name: "stranger", sender: "u3", text: "let me in", wantErr: domain.ErrForbidden},
		{name: "blank", sender: "u1", text: "   ", wantErr: domain.ErrValidation},
		{name: "too long", sender: "u1", text: strings.Repeat("x", 4001), wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := f.chat.SendMessage(ctx, &wsSvc.SendMessageRequest{
				ProjectID:  id,
				SenderID:   tt.sender,
				SenderName: tt.sender + "@example.com",
				Text:       tt.text,
			})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SendMessage: %v", err)
			}
			if msg.Text != strings.TrimSpace(tt.text) {
				t.Errorf("text = %q", msg.Text)
			}
		})
	}
}

func TestListMessagesNewestWindow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := createProject(t, f, "u1")

	for _, text := range []string{"one", "two", "three", "four", "five"} {
		if _, err := f.chat.SendMessage(ctx, &wsSvc.SendMessageRequest{ProjectID: id, SenderID: "u1", Text: text}); err != nil {
			t.Fatalf("SendMessage: %v", err)
		}
	}

	// The fixture keeps three messages of history
	msgs, err := f.chat.ListMessages(ctx, "u1", id)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	var got []string
	for _, m := range msgs {
		got = append(got, m.Text)
	}
	if strings.Join(got, ",") != "three,four,five" {
		t.Errorf("messages = %v, want the newest three oldest first", got)
	}

	if _, err := f.chat.ListMessages(ctx, "u2", id); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("stranger: expected forbidden, got %v", err)
	}
}
