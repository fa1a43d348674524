package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aalvaropc/numlab/internal/usecase"
)

func validateCmd() *cobra.Command {
	var workspace string
	var study string

	c := &cobra.Command{
		Use:   "validate",
		Short: "Check a study without solving it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := loadWorkspace(workspace)
			if err != nil {
				return err
			}

			studyPath, err := resolveStudyPath(ws, study)
			if err != nil {
				return err
			}

			uc := usecase.NewValidateStudy(ws.studies, ws.checker,
				usecase.WithBaseSettings(ws.cfg.Defaults.Settings),
			)
			st, err := uc.Execute(cmd.Context(), studyPath)
			if err != nil {
				return err
			}

			fmt.Printf("OK (%s, %d problem(s))\n", st.Name, len(st.Problems))
			return nil
		},
	}

	c.Flags().StringVarP(&workspace, "workspace", "w", "", "Workspace root (optional; autodetected if omitted)")
	c.Flags().StringVarP(&study, "study", "s", "", "Study name or path (required)")

	_ = c.MarkFlagRequired("study")
	return c
}
