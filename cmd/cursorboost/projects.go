package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modoterra/cursorboost/pkg/projects"
	"github.com/modoterra/cursorboost/pkg/workspace"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Inspect and maintain the project list",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects and where they resolve",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := loadConfig(cmd)
		names, err := projects.Load(cfg.ProjectListPath())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no projects in %s\n", cfg.ProjectListPath())
			return nil
		}

		res := workspace.NewResolver(cfg.Projects.BasePath)
		for _, n := range names {
			dir, err := res.Resolve(n)
			switch {
			case errors.Is(err, workspace.ErrBasePathUnset):
				dir = "(base path not configured)"
			case errors.Is(err, workspace.ErrProjectNotFound):
				dir = "(missing)"
			case err != nil:
				dir = "(" + err.Error() + ")"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", n, dir)
		}
		return nil
	},
}

var projectsDiscoverWrite bool

var projectsDiscoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find project directories under the base path",
	Long:  "Scans the base path for directories holding project markers (" + strings.Join(projects.Markers, ", ") + ").",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := loadConfig(cmd)
		base := workspace.NewResolver(cfg.Projects.BasePath).Base()
		if base == "" {
			return workspace.ErrBasePathUnset
		}

		found, err := projects.Discover(base)
		if err != nil {
			return err
		}
		for _, c := range found {
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", c.Name, strings.Join(c.Markers, ", "))
		}
		if len(found) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no projects found under %s\n", base)
			return nil
		}

		if projectsDiscoverWrite {
			path := cfg.ProjectListPath()
			if err := projects.WriteList(path, projects.Names(found)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d project(s) to %s\n", len(found), path)
		}
		return nil
	},
}

func init() {
	projectsDiscoverCmd.Flags().BoolVar(&projectsDiscoverWrite, "write", false, "replace the project list with the discovered projects")
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsDiscoverCmd)
}
