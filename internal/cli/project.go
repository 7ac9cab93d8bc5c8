package cli

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/bytedance/sonic"
	"github.com/dmitrijs2005/projdash/internal/filex"
	"github.com/dmitrijs2005/projdash/internal/server/models"
	"github.com/dmitrijs2005/projdash/internal/server/services"
	"github.com/spf13/cobra"
)

func (a *App) newProjectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(
		a.newProjectAddCommand(),
		a.newProjectListCommand(),
		a.newProjectUpdateCommand(),
		a.newProjectDeleteCommand(),
		a.newProjectExportCommand(),
	)
	return cmd
}

func (a *App) newProjectAddCommand() *cobra.Command {
	var (
		login  string
		fields services.ProjectFields
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a project for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := a.userID(cmd.Context(), login)
			if err != nil {
				return err
			}
			p, err := a.projects.Create(cmd.Context(), uid, fields)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.ID)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&login, "user", "", "owner login")
	f.StringVar(&fields.Category, "category", "", "category")
	f.StringVar(&fields.SubCategory, "sub-category", "", "sub-category")
	f.StringVar(&fields.Name, "name", "", "project name")
	f.StringVar(&fields.Description, "description", "", "description")
	f.StringVar(&fields.Link, "link", "", "project link")
	f.StringVar(&fields.RepoLink, "repo-link", "", "repository link")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func (a *App) newProjectListCommand() *cobra.Command {
	var (
		login  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := a.userID(cmd.Context(), login)
			if err != nil {
				return err
			}
			projects, err := a.projects.List(cmd.Context(), uid)
			if err != nil {
				return err
			}

			if asJSON {
				if projects == nil {
					projects = []models.Project{}
				}
				data, err := sonic.ConfigStd.MarshalIndent(projects, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tSUB-CATEGORY\tNAME\tLINK\tREPO")
			for _, p := range projects {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Category, p.SubCategory, p.Name, p.Link, p.RepoLink)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&login, "user", "", "owner login")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func (a *App) newProjectUpdateCommand() *cobra.Command {
	var v struct {
		category, subCategory, name, description, link, repoLink string
	}

	cmd := &cobra.Command{
		Use:   "update <project-id>",
		Short: "Change fields of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			pick := func(name, value string) *string {
				if !flags.Changed(name) {
					return nil
				}
				return &value
			}
			patch := models.ProjectPatch{
				Category:    pick("category", v.category),
				SubCategory: pick("sub-category", v.subCategory),
				Name:        pick("name", v.name),
				Description: pick("description", v.description),
				Link:        pick("link", v.link),
				RepoLink:    pick("repo-link", v.repoLink),
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to update")
			}
			return a.projects.Update(cmd.Context(), "", args[0], patch)
		},
	}

	f := cmd.Flags()
	f.StringVar(&v.category, "category", "", "category")
	f.StringVar(&v.subCategory, "sub-category", "", "sub-category")
	f.StringVar(&v.name, "name", "", "project name")
	f.StringVar(&v.description, "description", "", "description")
	f.StringVar(&v.link, "link", "", "project link")
	f.StringVar(&v.repoLink, "repo-link", "", "repository link")
	return cmd
}

func (a *App) newProjectDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.projects.Delete(cmd.Context(), "", args[0])
		},
	}
}

func (a *App) newProjectExportCommand() *cobra.Command {
	var login, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a user's projects as a PDF report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := a.userID(cmd.Context(), login)
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				return a.projects.ExportPDF(cmd.Context(), uid, cmd.OutOrStdout())
			}

			var buf bytes.Buffer
			if err := a.projects.ExportPDF(cmd.Context(), uid, &buf); err != nil {
				return err
			}
			return filex.WriteFileAtomic(out, buf.Bytes(), 0o644)
		},
	}

	cmd.Flags().StringVar(&login, "user", "", "owner login")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
