package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"livebundle/internal/app"
	"livebundle/internal/types"
)

type resolveOptions struct {
	PackageID string
	BundleID  string
	Flavor    string
	NoPrompt  bool
}

func newInstallCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:     "install",
		Aliases: []string{"resolve"},
		Short:   "Download and install a bundle of a package",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.PackageID, "package", "", "Package id")
	cmd.Flags().StringVar(&opts.BundleID, "bundle", "", "Bundle id, skips metadata and flavor selection")
	addFlavorFlags(cmd, &opts)
	return cmd
}

func addFlavorFlags(cmd *cobra.Command, opts *resolveOptions) {
	cmd.Flags().StringVar(&opts.Flavor, "flavor", "", "Bundle flavor when a package has several (dev, prod)")
	cmd.Flags().BoolVar(&opts.NoPrompt, "no-prompt", false, "Fail instead of asking for a flavor")
	_ = viper.BindPFlag("flavor", cmd.Flags().Lookup("flavor"))
	_ = viper.BindPFlag("no_prompt", cmd.Flags().Lookup("no-prompt"))
}

func runInstall(ctx context.Context, cmd *cobra.Command, opts resolveOptions) error {
	req, err := flowRequest(cmd, opts)
	if err != nil {
		return err
	}
	req.PackageID = opts.PackageID
	req.BundleID = opts.BundleID
	return runFlow(ctx, cmd, func(service app.Service) (app.ResolveResult, error) {
		return service.Resolve(ctx, req)
	})
}

// flowRequest collects the flavor answer shared by every resolving command.
func flowRequest(cmd *cobra.Command, opts resolveOptions) (app.ResolveRequest, error) {
	flavor, err := parseFlavor(resolveString(cmd, opts.Flavor, "flavor", "flavor"))
	if err != nil {
		return app.ResolveRequest{}, err
	}
	req := app.ResolveRequest{
		Flavor:       flavor,
		OnTransition: transitionPrinter(cmd),
	}
	if !resolveBool(cmd, opts.NoPrompt, "no_prompt", "no-prompt") {
		req.ChooseFlavor = promptFlavor(cmd.InOrStdin(), cmd.ErrOrStderr())
	}
	return req, nil
}

func runFlow(ctx context.Context, cmd *cobra.Command, flow func(app.Service) (app.ResolveResult, error)) error {
	rt, err := newCommandEnv(ctx, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := flow(rt.Service)
	printResolveResult(cmd, rt, result, err)
	return err
}

func printResolveResult(cmd *cobra.Command, rt *commandEnv, result app.ResolveResult, err error) {
	out := cmd.OutOrStdout()
	switch result.State {
	case types.FlowStateInstalled:
		fmt.Fprintf(out, "installed: %s/%s\n", result.PackageID, result.BundleID)
	case types.FlowStateSessionLaunched:
		fmt.Fprintf(out, "session launched: %s\n", result.SessionID)
	case types.FlowStateFlavorSelection:
		fmt.Fprintf(out, "flavor required: %s\n", result.PackageID)
	case types.FlowStateFailed:
		fmt.Fprintf(out, "failed: %s\n", errorMessage(err))
	}
	if err != nil {
		app.EmitHints(cmd.ErrOrStderr(), app.FailureHints(err, rt.Service.Config.Platform))
	}
	if requested, reason := rt.Exit.Requested(); requested {
		fmt.Fprintf(out, "exit requested: %s\n", reason)
	}
}
