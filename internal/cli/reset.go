package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the original application bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReset(cmd.Context(), cmd)
		},
	}
}

func runReset(ctx context.Context, cmd *cobra.Command) error {
	rt, err := newCommandEnv(ctx, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := rt.Service.Reset(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", result.State)
	if requested, reason := rt.Exit.Requested(); requested {
		fmt.Fprintf(out, "exit requested: %s\n", reason)
	}
	return nil
}
