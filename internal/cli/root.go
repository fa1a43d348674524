package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/numlab/internal/buildinfo"
	"github.com/aalvaropc/numlab/internal/domain"
	"github.com/aalvaropc/numlab/internal/infra/fsworkspace"
	"github.com/aalvaropc/numlab/internal/infra/logger"
	"github.com/aalvaropc/numlab/internal/infra/workspacefinder"
	"github.com/aalvaropc/numlab/internal/ui/tui"
	"github.com/aalvaropc/numlab/internal/usecase"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool
	var server string

	cmd := &cobra.Command{
		Use:          "numlab",
		Short:        "numlab: root finding and iterative linear solvers, from the terminal",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			wd, err := os.Getwd()
			if err != nil {
				wd = "."
			}
			wd, _ = filepath.Abs(wd)

			finder := workspacefinder.NewFinder()

			logRoot := wd
			if root, ferr := finder.FindRoot(wd); ferr == nil && root != "" {
				logRoot = root
			}

			cleanup, _ := logger.Setup(logger.Config{
				Root:  logRoot,
				Debug: debug,
			})
			if cleanup != nil {
				defer func() { _ = cleanup() }()
			}

			deps := tui.Deps{
				WorkspaceLocator:     finder,
				WorkspaceInitializer: fsworkspace.NewInitializer(),
				Logger:               logger.L(),
				Debug:                debug,
			}
			if strings.TrimSpace(server) != "" {
				deps.Solver = remoteSolver(strings.TrimSpace(server), domain.DefaultConfig().Server.Timeout)
			}

			return tui.Run(deps)
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging to .numlab/logs/numlab.log")
	cmd.Flags().StringVar(&server, "server", "", "Solve studies on a numlab server (base URL) from the TUI")

	cmd.AddCommand(
		initCmd(),
		runCmd(),
		validateCmd(),
		compareCmd(),
		rootFindCmd(),
		linearCmd(),
		exprCmd(),
		serveCmd(),
		studiesCmd(),
		profilesCmd(),
		runsCmd(),
		versionCmd(),
	)
	return cmd
}

func initCmd() *cobra.Command {
	var path string
	var force bool

	c := &cobra.Command{
		Use:   "init",
		Short: "Create a numlab workspace with a demo study and profiles",
		RunE: func(_ *cobra.Command, _ []string) error {
			root, err := usecase.NewInitWorkspace(fsworkspace.NewInitializer()).Execute(path, force)
			if err != nil {
				return err
			}

			fmt.Printf("Workspace ready at %s\n", root)
			fmt.Println("Next: numlab run -s demo")
			return nil
		},
	}

	c.Flags().StringVar(&path, "path", ".", "Directory to initialize")
	c.Flags().BoolVar(&force, "force", false, "Overwrite existing template files")
	return c
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}
