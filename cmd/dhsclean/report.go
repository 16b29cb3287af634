package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dhsclean/internal/services"
)

func newReportCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report <cleaned.csv>",
		Short: "Print the quality report of a cleaned table",
		Long: `Print the quality report of a previously written cleaned table without
re-running the pipeline. The file header must match the output column
contract exactly.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &usageError{fmt.Errorf("report takes exactly one file, got %d", len(args))}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root, nil)
			if err != nil {
				return err
			}
			env, err := newEnvironment(cfg, root, false)
			if err != nil {
				return err
			}
			defer env.Close(cmd.Context())

			svc, err := services.NewCleaningService(cfg, env.paths, env.logger.Logger, nil, root.stdout)
			if err != nil {
				return err
			}
			_, err = svc.Report(cmd.Context(), args[0])
			return err
		},
	}
}
