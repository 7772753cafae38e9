package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"nyoka-packages/internal/app"
)

type resourceOptions struct {
	Namespace string
}

func addNamespaceFlag(cmd *cobra.Command, opts *resourceOptions) {
	cmd.Flags().StringVarP(&opts.Namespace, "namespace", "n", "", "Namespace (code, data or model); inferred from the extension when empty")
}

func newAddCommand() *cobra.Command {
	opts := resourceOptions{}
	cmd := &cobra.Command{
		Use:   "add <name[@version]>",
		Short: "Download a resource and, optionally, its dependencies",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd.Context(), cmd, args[0], opts)
		},
	}
	addNamespaceFlag(cmd, &opts)
	return cmd
}

func runAdd(ctx context.Context, cmd *cobra.Command, raw string, opts resourceOptions) error {
	id, err := parseIdentifierArg(raw, opts.Namespace)
	if err != nil {
		return err
	}
	result, err := newAppService(cmd).Add(ctx, app.AddRequest{ID: id})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, failure := range result.Failed {
		fmt.Fprintf(out, "%s %s: %s\n", errorStyle.Render("failed"), failure.ID, errorMessage(failure.Err))
	}
	if result.DependenciesSkipped {
		fmt.Fprintln(out, warningStyle.Render("dependencies were not downloaded"))
	}
	fmt.Fprintf(out, "installed %s (%d dependencies)\n", successStyle.Render(result.ID.String()), len(result.Installed))
	return nil
}

func newRemoveCommand() *cobra.Command {
	opts := resourceOptions{}
	cmd := &cobra.Command{
		Use:   "remove <name[@version]>",
		Short: "Remove a locally installed resource",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd.Context(), cmd, args[0], opts)
		},
	}
	addNamespaceFlag(cmd, &opts)
	return cmd
}

func runRemove(ctx context.Context, cmd *cobra.Command, raw string, opts resourceOptions) error {
	id, err := parseIdentifierArg(raw, opts.Namespace)
	if err != nil {
		return err
	}
	result, err := newAppService(cmd).Remove(ctx, app.RemoveRequest{ID: id})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", result.ID)
	return nil
}
