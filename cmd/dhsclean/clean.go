package main

import (
	"context"

	"github.com/spf13/cobra"

	"dhsclean/internal/config"
	"dhsclean/internal/services"
)

type cleanOptions struct {
	input   string
	output  string
	xlsx    string
	metrics string
	bom     bool
}

func newCleanCmd(root *rootOptions) *cobra.Command {
	opts := &cleanOptions{}
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Run the cleaning pipeline and write the cleaned table",
		Long: `Run the cleaning pipeline over the raw export and write the cleaned table.

The output is only written when every stage succeeds; a failed run leaves any
previous output untouched. The quality report is printed to stdout and logs
go to stderr.`,
		Example: `  dhsclean clean
  dhsclean clean --input data/obesity_data_raw.csv --output data/obesity_data_cleaned.csv
  dhsclean clean --xlsx data/obesity_data_cleaned.xlsx --color never`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root, func(cfg *config.Config) {
				flags := cmd.Flags()
				if flags.Changed("input") {
					cfg.Input.Path = opts.input
				}
				if flags.Changed("output") {
					cfg.Output.CSVPath = opts.output
				}
				if flags.Changed("xlsx") {
					cfg.Output.XLSXPath = opts.xlsx
				}
				if flags.Changed("metrics") {
					cfg.Telemetry.MetricsFile = opts.metrics
				}
				if flags.Changed("bom") {
					cfg.Output.BOM = opts.bom
				}
			})
			if err != nil {
				return err
			}
			return runClean(cmd.Context(), cfg, root)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "raw export (.csv or .xlsx)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "cleaned CSV destination")
	cmd.Flags().StringVar(&opts.xlsx, "xlsx", "", "also write an XLSX copy to this path")
	cmd.Flags().StringVar(&opts.metrics, "metrics", "", "write run metrics in Prometheus text format to this path")
	cmd.Flags().BoolVar(&opts.bom, "bom", false, "prefix the cleaned CSV with a UTF-8 byte order mark")
	return cmd
}

func runClean(ctx context.Context, cfg *config.Config, root *rootOptions) error {
	env, err := newEnvironment(cfg, root, true)
	if err != nil {
		return err
	}
	defer env.Close(context.WithoutCancel(ctx))

	svc, err := services.NewCleaningService(cfg, env.paths, env.logger.Logger, env.telemetry, root.stdout)
	if err != nil {
		return err
	}
	_, err = svc.Run(ctx)
	return err
}
