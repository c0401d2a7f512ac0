package cli

import (
	"context"

	"github.com/spf13/cobra"

	"livebundle/internal/app"
)

func newSessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session <session-id>",
		Short: "Join a live session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), cmd, args[0])
		},
	}
	return cmd
}

func runSession(ctx context.Context, cmd *cobra.Command, sessionID string) error {
	return runFlow(ctx, cmd, func(service app.Service) (app.ResolveResult, error) {
		return service.Resolve(ctx, app.ResolveRequest{
			SessionID:    sessionID,
			OnTransition: transitionPrinter(cmd),
		})
	})
}
