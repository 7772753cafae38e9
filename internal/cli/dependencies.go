package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"nyoka-packages/internal/app"
	"nyoka-packages/internal/core"
	"nyoka-packages/internal/shared"
	"nyoka-packages/internal/types"
)

func newDependenciesCommand() *cobra.Command {
	opts := resourceOptions{}
	cmd := &cobra.Command{
		Use:   "dependencies <name> [version]",
		Short: "Show the transitive dependencies of a resource",
		Args:  usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDependencies(cmd.Context(), cmd, args, opts)
		},
	}
	addNamespaceFlag(cmd, &opts)
	return cmd
}

func runDependencies(ctx context.Context, cmd *cobra.Command, args []string, opts resourceOptions) error {
	id, err := parseIdentifierArg(args[0], opts.Namespace)
	if err != nil {
		return err
	}
	if len(args) == 2 {
		if id.Version != "" {
			return types.NewError(types.ErrorKindInvalidIdentifier, "version given twice", nil)
		}
		if err := core.ValidateVersion(args[1]); err != nil {
			return err
		}
		id.Version = args[1]
	}
	result, err := newAppService(cmd).Dependencies(ctx, app.DependenciesRequest{ID: id})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("Dependencies of "+result.ID.String()))
	if len(result.Rows) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("no dependencies"))
		return nil
	}
	rows := make([][]string, 0, len(result.Rows))
	var total int64
	for _, row := range result.Rows {
		total += row.ByteCount
		rows = append(rows, []string{
			string(row.Namespace),
			row.Name,
			row.Version,
			directLabel(row.Direct),
			shared.HumanBytes(row.ByteCount),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"NAMESPACE", "NAME", "VERSION", "DEPENDENCY", "SIZE"}, rows))
	fmt.Fprintf(out, "%d dependencies, %s total\n", len(result.Rows), shared.HumanBytes(total))
	return nil
}
