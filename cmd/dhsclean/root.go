package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	apperrors "dhsclean/internal/errors"
	"dhsclean/internal/operations"
	"dhsclean/pkg/contracts"
)

// Exit codes
const (
	exitOK       = 0
	exitPipeline = 1
	exitConfig   = 2
)

// rootOptions holds the flags shared by every command
type rootOptions struct {
	configPath string
	logLevel   string
	color      string

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dhsclean",
		Short: "Clean the India DHS overweight prevalence export",
		Long: `dhsclean turns the raw DHS STATcompiler export of overweight prevalence
(children, women, men) into an analysis-ready table: contaminated rows are
removed, characteristics are split into category and subcategory, metrics are
coerced to numbers and survey years are extracted.`,
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &usageError{fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err}
	})
	cmd.SetOut(opts.stdout)
	cmd.SetErr(opts.stderr)

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: dhsclean.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.color, "color", "", "report color: auto, always, never")

	cmd.AddCommand(newCleanCmd(opts))
	cmd.AddCommand(newReportCmd(opts))
	cmd.AddCommand(newVersionCmd(opts))
	return cmd
}

// run executes the command line and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &rootOptions{stdout: stdout, stderr: stderr}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var opErr *operations.OperationError
	if errors.As(err, &opErr) && opErr.Step != "" {
		cause := opErr.Cause
		if cause == nil {
			cause = errors.New(opErr.Message)
		}
		fmt.Fprintf(stderr, "Error: stage %s failed: %v\n", opErr.Step, cause)
	} else {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}

// exitCode maps an error to the process exit code
func exitCode(err error) int {
	var usage *usageError
	switch {
	case err == nil:
		return exitOK
	case apperrors.IsType(err, apperrors.ErrTypeConfig), errors.As(err, &usage):
		return exitConfig
	default:
		return exitPipeline
	}
}

// usageError marks a command line that could not be parsed
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }
