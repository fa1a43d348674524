package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/numlab/internal/infra/chart"
	"github.com/aalvaropc/numlab/internal/infra/logger"
	"github.com/aalvaropc/numlab/internal/ports"
	"github.com/aalvaropc/numlab/internal/usecase"
)

func runCmd() *cobra.Command {
	var workspace string
	var study string
	var profile string
	var server string
	var noSave bool
	var format string
	var trace bool
	var charts bool
	var chartFormat string

	c := &cobra.Command{
		Use:   "run",
		Short: "Solve every problem of a study and check its assertions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}
			defer startLogging(cmd, ws.root, false)()

			studyPath, err := resolveStudyPath(ws, study)
			if err != nil {
				return err
			}
			ws.useServer(server)

			var store ports.ArtifactStore = ws.store
			if noSave {
				store = nil
			}

			uc := usecase.NewRunStudy(ws.studies, ws.profiles, ws.solver, store,
				usecase.WithDefaults(ws.cfg.Defaults),
				usecase.WithLogger(logger.L()),
			)

			run, runID, err := uc.Execute(cmd.Context(), studyPath, profile)
			if err != nil {
				// A failed save still produced a run worth showing.
				_ = printRun(os.Stdout, run, runID, format, trace)
				return err
			}

			if err := printRun(os.Stdout, run, runID, format, trace); err != nil {
				return err
			}

			if charts {
				if chartFormat != "" {
					ws.charts = chart.New(chart.WithFormat(chartFormat))
				}
				paths, err := ws.charts.RenderRun(run, ws.chartsDir())
				if err != nil {
					return err
				}
				for _, p := range paths {
					fmt.Fprintf(os.Stderr, "chart: %s\n", p)
				}
			}

			if fails := run.Failures(); fails > 0 {
				return fmt.Errorf("run failed (%d failed problem(s))", fails)
			}
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&study, "study", "s", "", "Study name or path (required)")
	c.Flags().StringVarP(&profile, "profile", "p", "", "Profile name or path (optional; defaults to the workspace default profile)")
	c.Flags().StringVar(&server, "server", "", "Solve on a numlab server at this URL instead of locally")
	c.Flags().BoolVar(&noSave, "no-save", false, "Do not save run artifact under runs/")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	c.Flags().BoolVar(&trace, "trace", false, "Print the iteration trace of every problem")
	c.Flags().BoolVar(&charts, "chart", false, "Write convergence charts under charts/")
	c.Flags().StringVar(&chartFormat, "chart-format", "", "Chart format: png|svg|pdf|html (default png)")

	_ = c.MarkFlagRequired("study")
	return c
}
