package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	wsSvc "quillhouse/internal/domain/services/workspace"
)

func addProjects(topLevel *cobra.Command, a *app) {
	list := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"ls"},
		Short:   "List projects you own or collaborate on",
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := a.api.ListProjects(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tROLE\tWORDS\tSTATE")
			for _, p := range projects {
				role := "collaborator"
				if p.IsOwner(a.cfg.UserID) {
					role = "owner"
				}
				state := "draft"
				if p.Published {
					state = "published"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", p.ID, p.Title, role, p.WordCount, state)
			}
			return tw.Flush()
		},
	}

	var description string
	var genres []string
	create := &cobra.Command{
		Use:   "new <title>",
		Short: "Create a project",
		Example: `
quill new "The Long Winter" --genre fantasy --genre drama
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a title")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := a.api.CreateProject(cmd.Context(), &wsSvc.CreateProjectRequest{
				Title:       strings.Join(args, " "),
				Description: description,
				Genres:      genres,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "created %s (%s)\n", project.Title, project.ID)
			return nil
		},
	}
	create.Flags().StringVar(&description, "description", "", "Project description.")
	create.Flags().StringSliceVar(&genres, "genre", nil, "Genre tag, repeatable.")

	var remove bool
	share := &cobra.Command{
		Use:   "share <project-id> <user-id>",
		Short: "Add or remove a collaborator",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if remove {
				project, err := a.api.RemoveCollaborator(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "%s collaborators: %s\n", project.Title, strings.Join(project.Collaborators, ", "))
				return nil
			}
			project, err := a.api.AddCollaborator(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s collaborators: %s\n", project.Title, strings.Join(project.Collaborators, ", "))
			return nil
		},
	}
	share.Flags().BoolVar(&remove, "remove", false, "Remove the collaborator instead.")

	del := &cobra.Command{
		Use:   "rm <project-id>",
		Short: "Delete a project you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.api.DeleteProject(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "deleted %s\n", args[0])
			return nil
		},
	}

	topLevel.AddCommand(list, create, share, del)
}
