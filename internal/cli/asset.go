package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"

	"livebundle/internal/app"
	"livebundle/internal/types"
)

type assetOptions struct {
	Hash        string
	Name        string
	Type        string
	PackagedURI string
}

func newAssetCommand() *cobra.Command {
	opts := assetOptions{}
	cmd := &cobra.Command{
		Use:   "asset",
		Short: "Show the URI an asset is loaded from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAsset(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Hash, "hash", "", "Asset content hash")
	cmd.Flags().StringVar(&opts.Name, "name", "", "Asset name")
	cmd.Flags().StringVar(&opts.Type, "type", "", "Asset file type, such as png")
	cmd.Flags().StringVar(&opts.PackagedURI, "packaged-uri", "", "URI of the asset packaged with the application")
	return cmd
}

func runAsset(ctx context.Context, cmd *cobra.Command, opts assetOptions) error {
	if strings.TrimSpace(opts.Hash) == "" || strings.TrimSpace(opts.Name) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("--hash and --name are required")
	}
	rt, err := newCommandEnv(ctx, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	packaged := opts.PackagedURI
	if packaged == "" {
		packaged = fmt.Sprintf("asset:/%s.%s", opts.Name, opts.Type)
	}
	result := rt.Service.ResolveAsset(app.AssetRequest{Asset: types.Asset{
		Hash:        opts.Hash,
		Name:        opts.Name,
		Type:        opts.Type,
		PackagedURI: packaged,
	}})
	source := "packaged"
	if result.Remote {
		source = "remote"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", result.URI, source)
	return nil
}
