package cli

import (
	"context"

	"github.com/spf13/cobra"

	"livebundle/internal/app"
)

func newScanCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "scan <payload>",
		Short: "Handle a scanned QR code payload (s:<session-id> or <package-id>)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), cmd, opts, args[0])
		},
	}
	addFlavorFlags(cmd, &opts)
	return cmd
}

func runScan(ctx context.Context, cmd *cobra.Command, opts resolveOptions, payload string) error {
	req, err := flowRequest(cmd, opts)
	if err != nil {
		return err
	}
	return runFlow(ctx, cmd, func(service app.Service) (app.ResolveResult, error) {
		return service.Scan(ctx, app.ScanRequest{
			Payload:      payload,
			Flavor:       req.Flavor,
			ChooseFlavor: req.ChooseFlavor,
			OnTransition: req.OnTransition,
		})
	})
}
