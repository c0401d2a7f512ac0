package cli

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"livebundle/internal/app"
)

type statusOptions struct {
	Output string
}

func newStatusCommand() *cobra.Command {
	opts := statusOptions{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the installed bundle or live session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text, yaml)")
	return cmd
}

func runStatus(ctx context.Context, cmd *cobra.Command, opts statusOptions) error {
	rt, err := newCommandEnv(ctx, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	status, err := rt.Service.Status(ctx)
	if err != nil {
		return err
	}
	switch opts.Output {
	case "yaml":
		data, err := yaml.Marshal(status)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to encode status").
				WithCause(err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	case "text", "":
		printStatus(cmd, status)
		return nil
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("unknown output format: %s", opts.Output))
}

func printStatus(cmd *cobra.Command, status app.StatusResult) {
	out := cmd.OutOrStdout()
	installed := status.Installed
	switch {
	case installed.IsSessionStarted:
		fmt.Fprintf(out, "live session: %s\n", installed.SessionHost)
	case installed.IsBundleInstalled:
		fmt.Fprintf(out, "installed: %s/%s\n", installed.PackageID, installed.BundleID)
	default:
		fmt.Fprintln(out, "original bundle")
	}
	if installed.IsSessionStarted && installed.IsBundleInstalled {
		fmt.Fprintf(out, "installed: %s/%s\n", installed.PackageID, installed.BundleID)
	}
	fmt.Fprintf(out, "platform: %s\n", status.Platform)
	fmt.Fprintf(out, "remote assets: %t\n", status.AssetSourceActive)
}
