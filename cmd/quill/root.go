package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"quillhouse/internal/client"
	"quillhouse/internal/config"
	"quillhouse/internal/workspace/autosave"
	"quillhouse/internal/workspace/session"
	"quillhouse/internal/workspace/store"
	"quillhouse/internal/workspace/surface"
)

// app is the state shared by every subcommand, built in PersistentPreRunE.
type app struct {
	configPath string
	serverURL  string
	token      string
	verbose    bool

	cfg    *config.ClientConfig
	logger *slog.Logger
	api    *client.Client
	out    io.Writer
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "quill",
		Short:         "Write, organise and discuss workspace projects from the command line.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			return a.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultClientConfigPath(), "Path to the client config file.")
	flags.StringVar(&a.serverURL, "server", "", "Workspace API base URL (overrides config).")
	flags.StringVar(&a.token, "token", "", "Bearer token (overrides config).")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Log debug output to stderr.")

	addProjects(cmd, a)
	addSession(cmd, a)
	addChat(cmd, a)
	return cmd
}

func (a *app) init() error {
	cfg, err := config.LoadClient(a.configPath)
	if err != nil {
		return err
	}
	if a.serverURL != "" {
		cfg.ServerURL = a.serverURL
	}
	if a.token != "" {
		cfg.Token = a.token
	}
	a.cfg = cfg

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	a.api = client.New(cfg.ServerURL, cfg.Token, client.Options{Timeout: cfg.RequestTimeout})
	return nil
}

func (a *app) requireUser() error {
	if a.cfg.UserID == "" {
		return fmt.Errorf("user_id is not configured (set it in %s or QUILL_USER_ID)", a.configPath)
	}
	return nil
}

// workspace is one headless session: a store, a controller and a memory surface.
type workspace struct {
	store   *store.Store
	ctrl    *session.Controller
	surface *surface.Memory
}

func (a *app) newController(st *store.Store, welcome config.WelcomeConfig) *session.Controller {
	return session.New(session.Config{
		UserID:  a.cfg.UserID,
		Backend: a.api,
		Store:   st,
		Welcome: welcome,
		Logger:  a.logger,
		OnSaveResult: func(r autosave.Result) {
			if r.Err != nil {
				a.logger.Warn("save failed", "target_id", r.Target.ID, "seq", r.Seq, "error", r.Err)
			}
		},
	})
}

// newWorkspace starts a session with no welcome text; headless commands open a target right away.
func (a *app) newWorkspace() *workspace {
	st := store.New()
	surf := surface.NewMemory()
	ctrl := a.newController(st, config.WelcomeConfig{})
	ctrl.AttachSurface(surf)
	return &workspace{store: st, ctrl: ctrl, surface: surf}
}

// open applies target and fails if the session fell back to Empty.
func (w *workspace) open(ctx context.Context, target session.Target) (session.Mode, error) {
	select {
	case mode, ok := <-w.ctrl.Open(ctx, target):
		if !ok {
			return mode, fmt.Errorf("open was superseded")
		}
		if mode == session.ModeEmpty && !target.IsZero() {
			return mode, fmt.Errorf("could not open %s (see logs with -v)", describe(target))
		}
		return mode, nil
	case <-ctx.Done():
		return session.ModeEmpty, ctx.Err()
	}
}

func describe(t session.Target) string {
	if t.FileID != "" {
		return "file " + t.FileID
	}
	return "project " + t.ProjectID
}

// targetFlags binds --project and --file.
func targetFlags(cmd *cobra.Command, t *session.Target) {
	cmd.Flags().StringVarP(&t.ProjectID, "project", "p", "", "Project id.")
	cmd.Flags().StringVarP(&t.FileID, "file", "f", "", "File id (wins over --project).")
}
