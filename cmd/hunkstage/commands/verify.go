package commands

import (
	"context"
	"errors"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/hunkstage/pkg/unidiff"
)

// ErrVerifyFailed is returned when any verify check fails.
var ErrVerifyFailed = errors.New("diff verification failed")

func newVerifyCommand(opts *globalOptions) *cobra.Command {
	var in inputOptions

	cmd := &cobra.Command{
		Use:   "verify [file|-]",
		Short: "Check that a diff reconstructs byte for byte",
		Long: `Parse a diff, rebuild it from its files, hunks and lines and compare the
result with the input. The hunk structure is also cross-checked against an
independent diff parser.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				d, source, err := a.loadDiff(ctx, args, in, cmd.InOrStdin())
				if err != nil {
					return err
				}

				_, span := a.providers.Tracer.Start(ctx, "hunkstage.verify")
				defer span.End()

				return reportVerify(cmd.OutOrStdout(), source.label, d)
			})
		},
	}

	addInputFlags(cmd, &in)

	return cmd
}

func reportVerify(w io.Writer, source string, d unidiff.Diff) error {
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	checks := []struct {
		name string
		run  func(unidiff.Diff) error
	}{
		{"round trip", unidiff.VerifyRoundTrip},
		{"cross-check", unidiff.CrossCheck},
	}

	var errs []error

	for _, check := range checks {
		if err := check.run(d); err != nil {
			bad.Fprintf(w, "%s: %s: %v\n", source, check.name, err)
			errs = append(errs, err)

			continue
		}

		ok.Fprintf(w, "%s: %s ok (%d files, %d hunks)\n", source, check.name, d.FileCount(), d.ChunkCount())
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrVerifyFailed}, errs...)...)
	}

	return nil
}
