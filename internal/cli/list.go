package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"nyoka-packages/internal/app"
	"nyoka-packages/internal/shared"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [namespace]",
		Short: "List locally installed resources",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), cmd, args)
		},
	}
}

func runList(ctx context.Context, cmd *cobra.Command, args []string) error {
	ns, err := namespaceArg(args)
	if err != nil {
		return err
	}
	result, err := newAppService(cmd).List(ctx, app.ListRequest{Namespace: ns})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(result.Resources) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("no local resources"))
		return nil
	}
	fmt.Fprintln(out, renderLocalResources(result.Resources))
	return nil
}

func newAvailableCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "available [namespace]",
		Short: "List resources available on the remote",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAvailable(cmd.Context(), cmd, args)
		},
	}
}

func runAvailable(ctx context.Context, cmd *cobra.Command, args []string) error {
	ns, err := namespaceArg(args)
	if err != nil {
		return err
	}
	result, err := newAppService(cmd).Available(ctx, app.ListRequest{Namespace: ns})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(result.Entries) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("no resources available"))
		return nil
	}
	rows := make([][]string, 0, len(result.Entries))
	for _, entry := range result.Entries {
		rows = append(rows, []string{
			string(entry.Namespace),
			entry.Name,
			entry.LatestVersion,
			shared.HumanBytes(entry.ByteCount),
			installedLabel(entry.Installed, entry.InstalledVersion),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"NAMESPACE", "NAME", "LATEST", "SIZE", "INSTALLED"}, rows))
	return nil
}
