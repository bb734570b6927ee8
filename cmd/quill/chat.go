package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	models "quillhouse/internal/domain/models/workspace"
	"quillhouse/internal/workspace/chat"
	"quillhouse/internal/workspace/session"
)

func addChat(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Read and send project chat messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var projectID string
	var follow bool
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print the newest messages; --follow keeps polling",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			ctx := cmd.Context()

			printer := &messagePrinter{a: a, seen: map[string]bool{}}
			ws, ch, stop, err := a.openChat(ctx, projectID, printer.print)
			if err != nil {
				return err
			}
			defer stop()
			defer ws.ctrl.Close()

			if err := <-ch.Reload(ctx); err != nil {
				return err
			}
			if !follow {
				return nil
			}
			return ch.Run(ctx)
		},
	}
	tail.Flags().StringVarP(&projectID, "project", "p", "", "Project id.")
	tail.Flags().BoolVar(&follow, "follow", false, "Keep polling until interrupted.")
	_ = tail.MarkFlagRequired("project")

	send := &cobra.Command{
		Use:   "send <text>",
		Short: "Send a message to the project chat",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires message text")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			ctx := cmd.Context()

			ws, ch, stop, err := a.openChat(ctx, projectID, nil)
			if err != nil {
				return err
			}
			defer stop()
			defer ws.ctrl.Close()

			ch.SetDraft(ctx, strings.Join(args, " "))
			result, ok := ch.Send(ctx)
			if !ok {
				return errors.New("nothing to send")
			}
			if err := <-result; err != nil {
				return err
			}
			fmt.Fprintln(a.out, "sent")
			return nil
		},
	}
	send.Flags().StringVarP(&projectID, "project", "p", "", "Project id.")
	_ = send.MarkFlagRequired("project")

	cmd.AddCommand(tail, send)
	topLevel.AddCommand(cmd)
}

// openChat opens projectID in a session and scopes a chat channel to the store's active project.
func (a *app) openChat(ctx context.Context, projectID string, onUpdate func([]models.Message)) (*workspace, *chat.Channel, func(), error) {
	ws := a.newWorkspace()
	ch := chat.New(chat.Config{
		Backend:      a.api,
		SenderID:     a.cfg.UserID,
		Logger:       a.logger,
		PollInterval: a.cfg.Chat.PollInterval,
		ReloadBurst:  a.cfg.Chat.ReloadBurst,
		OnUpdate:     onUpdate,
	})
	stop := ch.Follow(ctx, ws.store)

	if _, err := ws.open(ctx, session.Target{ProjectID: projectID}); err != nil {
		stop()
		ws.ctrl.Close()
		return nil, nil, nil, err
	}
	return ws, ch, stop, nil
}

// messagePrinter writes each message once, in the order the channel renders them.
type messagePrinter struct {
	a    *app
	mu   sync.Mutex
	seen map[string]bool
}

func (p *messagePrinter) print(msgs []models.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range msgs {
		if p.seen[m.ID] {
			continue
		}
		p.seen[m.ID] = true
		name := m.SenderName
		if name == "" {
			name = m.SenderID
		}
		fmt.Fprintf(p.a.out, "%s  %s: %s\n", m.CreatedAt.Local().Format("Jan 02 15:04"), name, m.Text)
	}
}
