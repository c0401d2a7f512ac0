package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"livebundle/internal/app"
	"livebundle/internal/types"
)

func newOpenCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "open <url>",
		Short: "Handle a livebundle:// deep link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpen(cmd.Context(), cmd, opts, args[0])
		},
	}
	addFlavorFlags(cmd, &opts)
	return cmd
}

func runOpen(ctx context.Context, cmd *cobra.Command, opts resolveOptions, url string) error {
	req, err := flowRequest(cmd, opts)
	if err != nil {
		return err
	}
	rt, err := newCommandEnv(ctx, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := rt.Service.OpenURL(ctx, app.OpenURLRequest{
		URL:          url,
		Flavor:       req.Flavor,
		ChooseFlavor: req.ChooseFlavor,
		OnTransition: req.OnTransition,
	})
	switch result.Intent.Kind {
	case types.IntentNone:
		fmt.Fprintf(cmd.OutOrStdout(), "ignored: %s\n", url)
	case types.IntentOpenMenu:
		if result.Status != nil {
			printStatus(cmd, *result.Status)
		}
	default:
		if result.Resolve != nil {
			printResolveResult(cmd, rt, *result.Resolve, err)
		}
	}
	return err
}
