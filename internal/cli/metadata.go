package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"livebundle/internal/app"
	"livebundle/internal/types"
)

type metadataOptions struct {
	Output string
}

func newMetadataCommand() *cobra.Command {
	opts := metadataOptions{}
	cmd := &cobra.Command{
		Use:       "metadata <package|session> <id>",
		Short:     "Print package or live session metadata",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"package", "session"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetadata(cmd.Context(), cmd, opts, args[0], args[1])
		},
	}
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "yaml", "Output format (yaml, json)")
	return cmd
}

func parseMetadataKind(value string) (types.MetadataKind, error) {
	switch value {
	case "package", "packages":
		return types.MetadataKindPackage, nil
	case "session", "sessions":
		return types.MetadataKindSession, nil
	}
	return "", errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("unknown metadata kind: %s", value))
}

func runMetadata(ctx context.Context, cmd *cobra.Command, opts metadataOptions, kindArg string, id string) error {
	kind, err := parseMetadataKind(kindArg)
	if err != nil {
		return err
	}
	rt, err := newCommandEnv(ctx, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := rt.Service.FetchMetadata(ctx, app.MetadataRequest{Kind: kind, ID: id})
	if err != nil {
		app.EmitHints(cmd.ErrOrStderr(), app.FailureHints(err, rt.Service.Config.Platform))
		return err
	}
	var document any = result.Session
	if result.Package != nil {
		document = result.Package
	}

	var data []byte
	switch opts.Output {
	case "json":
		data, err = json.MarshalIndent(document, "", "  ")
		data = append(data, '\n')
	case "yaml", "":
		data, err = yaml.Marshal(document)
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown output format: %s", opts.Output))
	}
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode metadata").
			WithCause(err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
