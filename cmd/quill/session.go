package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"quillhouse/internal/richtext"
	"quillhouse/internal/workspace/session"
	"quillhouse/internal/workspace/store"
)

func addSession(topLevel *cobra.Command, a *app) {
	addShow(topLevel, a)
	addTree(topLevel, a)
	addWrite(topLevel, a)
	addCreate(topLevel, a)
	addPublish(topLevel, a)
}

func addShow(topLevel *cobra.Command, a *app) {
	var target session.Target
	var raw bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Open a project's Master document or a file and print it",
		Example: `
quill show --project 1b7c...
quill show --file 9e02... --raw
quill show                       # nothing open: prints the welcome text
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if target.IsZero() {
				return a.welcome(cmd.Context())
			}
			if err := a.requireUser(); err != nil {
				return err
			}

			ws := a.newWorkspace()
			defer ws.ctrl.Close()

			mode, err := ws.open(cmd.Context(), target)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "# %s [%s]\n\n", title(ws.store.Active()), modeLabel(ws.ctrl.Resolution()))
			content := ws.surface.Content()
			if !raw {
				if content, err = richtext.NewConverter().ToMarkdown(content); err != nil {
					return err
				}
			}
			fmt.Fprintln(a.out, content)
			a.logger.Debug("shown", "mode", mode.String())
			return nil
		},
	}
	targetFlags(cmd, &target)
	cmd.Flags().BoolVar(&raw, "raw", false, "Print stored rich text instead of Markdown.")
	topLevel.AddCommand(cmd)
}

// welcome runs an empty session on a terminal surface and waits for the welcome text.
func (a *app) welcome(ctx context.Context) error {
	w := a.cfg.Welcome
	surf := newTypingSurface(a.out)
	ctrl := a.newController(store.New(), w)
	ctrl.AttachSurface(surf)
	defer ctrl.Close()

	limit := w.Budget
	if limit <= 0 {
		limit = time.Duration(len([]rune(w.Text))) * w.Interval
	}
	deadline := time.Now().Add(limit + time.Second)

	for surf.Content() != w.Text && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(10 * time.Millisecond):
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

func addTree(topLevel *cobra.Command, a *app) {
	var target session.Target

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the folders and files you can see in a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			ws := a.newWorkspace()
			defer ws.ctrl.Close()

			if _, err := ws.open(cmd.Context(), target); err != nil {
				return err
			}

			targets := map[string]bool{}
			for _, f := range ws.ctrl.CreationTargets() {
				targets[f.ID] = true
			}
			for _, g := range ws.ctrl.Tree() {
				var tags []string
				switch {
				case g.Folder.IsMaster():
					tags = append(tags, "master")
				case g.Folder.SharedBase:
					tags = append(tags, "shared")
				default:
					tags = append(tags, "personal")
				}
				if !targets[g.Folder.ID] {
					tags = append(tags, "read-only")
				}
				fmt.Fprintf(a.out, "%s/  [%s]  %s\n", g.Folder.Label, strings.Join(tags, ", "), g.Folder.ID)
				for _, f := range g.Files {
					fmt.Fprintf(a.out, "  %s  (%d words)  %s\n", f.Label, f.WordCount, f.ID)
				}
			}
			return nil
		},
	}
	targetFlags(cmd, &target)
	topLevel.AddCommand(cmd)
}

func addWrite(topLevel *cobra.Command, a *app) {
	var target session.Target
	var text string
	var html, appendMode bool

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Replace or extend a document you own; reads stdin without --text",
		Example: `
quill write --project 1b7c... --text "It was a dark and stormy night."
cat chapter.txt | quill write --file 9e02... --append
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			if !cmd.Flags().Changed("text") {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}

			ws := a.newWorkspace()
			defer ws.ctrl.Close()

			mode, err := ws.open(cmd.Context(), target)
			if err != nil {
				return err
			}
			if mode != session.ModeEditable {
				return fmt.Errorf("%s is read-only for you", describe(target))
			}

			content := text
			if !html {
				content = richtext.FromPlainText(text)
			}
			if appendMode {
				content = ws.surface.Content() + content
			}

			ws.surface.Edit(content)
			if err := ws.ctrl.Flush(cmd.Context()); err != nil {
				return fmt.Errorf("save failed, nothing was lost locally but the server has not got it: %w", err)
			}
			status, _ := ws.ctrl.SaveStatus()
			fmt.Fprintf(a.out, "%s: %s\n", describe(target), status)
			return nil
		},
	}
	targetFlags(cmd, &target)
	cmd.Flags().StringVar(&text, "text", "", "Text to write.")
	cmd.Flags().BoolVar(&html, "html", false, "Treat input as rich text (HTML).")
	cmd.Flags().BoolVar(&appendMode, "append", false, "Append instead of replacing.")
	topLevel.AddCommand(cmd)
}

func addCreate(topLevel *cobra.Command, a *app) {
	var projectID string
	var shared bool

	mkdir := &cobra.Command{
		Use:   "mkdir <label>",
		Short: "Create a folder in a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			ws := a.newWorkspace()
			defer ws.ctrl.Close()
			if _, err := ws.open(cmd.Context(), session.Target{ProjectID: projectID}); err != nil {
				return err
			}

			folder, err := ws.ctrl.CreateFolder(cmd.Context(), args[0], shared)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "created folder %s (%s)\n", folder.Label, folder.ID)
			return nil
		},
	}
	mkdir.Flags().StringVarP(&projectID, "project", "p", "", "Project id.")
	mkdir.Flags().BoolVar(&shared, "shared", false, "Create a shared-base folder (owner only).")
	_ = mkdir.MarkFlagRequired("project")

	var folderID string
	touch := &cobra.Command{
		Use:   "touch <label>",
		Short: "Create a file in one of your folders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			ws := a.newWorkspace()
			defer ws.ctrl.Close()
			if _, err := ws.open(cmd.Context(), session.Target{ProjectID: projectID}); err != nil {
				return err
			}

			file, err := ws.ctrl.CreateFile(cmd.Context(), folderID, args[0])
			if errors.Is(err, session.ErrMasterFolder) {
				return errors.New("the Master folder holds the project draft; pick another folder (see quill tree)")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "created file %s (%s)\n", file.Label, file.ID)
			return nil
		},
	}
	touch.Flags().StringVarP(&projectID, "project", "p", "", "Project id.")
	touch.Flags().StringVar(&folderID, "folder", "", "Folder id.")
	_ = touch.MarkFlagRequired("project")
	_ = touch.MarkFlagRequired("folder")

	topLevel.AddCommand(mkdir, touch)
}

func addPublish(topLevel *cobra.Command, a *app) {
	var projectID string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a project you own; its draft becomes read-only",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			ws := a.newWorkspace()
			defer ws.ctrl.Close()
			if _, err := ws.open(cmd.Context(), session.Target{ProjectID: projectID}); err != nil {
				return err
			}

			project, err := ws.ctrl.Publish(cmd.Context())
			if errors.Is(err, session.ErrNotEditable) {
				return errors.New("only the owner can publish an unpublished draft")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "published %s\n", project.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&projectID, "project", "p", "", "Project id.")
	_ = cmd.MarkFlagRequired("project")
	topLevel.AddCommand(cmd)
}

func title(e store.Entity) string {
	switch {
	case e.File != nil:
		return e.File.Label
	case e.Project != nil:
		return e.Project.Title
	default:
		return ""
	}
}

func modeLabel(r session.Resolution) string {
	switch r.Save {
	case session.SaveProjectDraft:
		return "editable draft"
	case session.SaveFile:
		return "editable file"
	default:
		return strings.ReplaceAll(r.Mode.String(), "_", "-")
	}
}
