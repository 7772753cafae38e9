package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"nyoka-packages/internal/app"
	"nyoka-packages/internal/core"
)

type publishOptions struct {
	resourceOptions
	Deps []string
}

func newPublishCommand() *cobra.Command {
	opts := publishOptions{}
	cmd := &cobra.Command{
		Use:   "publish <name[@version]>",
		Short: "Upload a local resource to the remote",
		Long: "Upload a local resource to the remote. Without a version the resource is published as " +
			app.DefaultPublishVersion + ". Every --deps entry must name a version.",
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd.Context(), cmd, args[0], opts)
		},
	}
	addNamespaceFlag(cmd, &opts.resourceOptions)
	cmd.Flags().StringSliceVar(&opts.Deps, "deps", nil, "Direct dependencies as name@version (namespace inferred from the extension)")
	return cmd
}

func runPublish(ctx context.Context, cmd *cobra.Command, raw string, opts publishOptions) error {
	id, err := parseIdentifierArg(raw, opts.Namespace)
	if err != nil {
		return err
	}
	deps, err := core.ParseIdentifiers(opts.Deps, "")
	if err != nil {
		return err
	}
	result, err := newAppService(cmd).Publish(ctx, app.PublishRequest{ID: id, Deps: deps})
	if err != nil {
		return err
	}
	verb := "published"
	if result.Overwritten {
		verb = "republished"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, successStyle.Render(result.ID.String()))
	return nil
}
