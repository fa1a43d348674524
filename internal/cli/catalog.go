package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

func studiesCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "studies",
		Short: "Inspect the studies of a workspace",
	}
	c.AddCommand(studiesListCmd())
	return c
}

func studiesListCmd() *cobra.Command {
	var workspace string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List studies",
		RunE: func(_ *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			refs, err := ws.studies.ListStudies(ws.root)
			if err != nil {
				return err
			}

			if len(refs) == 0 {
				fmt.Println("(no studies found)")
				return nil
			}

			fmt.Printf("Workspace: %s\n\n", ws.root)
			for _, r := range refs {
				rel, _ := filepath.Rel(ws.root, r.Path)
				fmt.Printf("- %s  (%s)\n", r.Name, rel)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	return cmd
}

func profilesCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "profiles",
		Short: "Inspect the setting profiles of a workspace",
	}
	c.AddCommand(profilesListCmd())
	return c
}

func profilesListCmd() *cobra.Command {
	var workspace string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE: func(_ *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			refs, err := ws.profiles.ListProfiles(ws.root)
			if err != nil {
				return err
			}

			if len(refs) == 0 {
				fmt.Println("(no profiles found)")
				return nil
			}

			def := ws.cfg.Defaults.Profile
			if def == "" {
				def = "(none)"
			}
			fmt.Printf("Workspace: %s\n", ws.root)
			fmt.Printf("Default:   %s\n\n", def)

			for _, r := range refs {
				rel, _ := filepath.Rel(ws.root, r.Path)
				fmt.Printf("- %s  (%s)\n", r.Name, rel)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	return cmd
}

func runsCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "runs",
		Short: "Inspect saved runs",
	}
	c.AddCommand(runsListCmd())
	return c
}

func runsListCmd() *cobra.Command {
	var workspace string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved runs, newest first",
		RunE: func(_ *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			refs, err := ws.store.ListRuns()
			if err != nil {
				return err
			}
			if len(refs) == 0 {
				fmt.Println("(no runs found)")
				return nil
			}
			if limit > 0 && len(refs) > limit {
				refs = refs[:limit]
			}

			for _, r := range refs {
				status := "OK"
				if r.Failures > 0 {
					status = fmt.Sprintf("%d FAIL", r.Failures)
				}
				profile := r.Profile
				if profile == "" {
					profile = "-"
				}
				fmt.Printf("- %s  %s  %s  profile=%s  [%s]\n",
					r.ID, r.StartedAt.Local().Format(time.DateTime), r.Study, profile, status)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Show at most this many runs (0 for all)")
	return cmd
}
