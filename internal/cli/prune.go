package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"nyoka-packages/internal/app"
	"nyoka-packages/internal/core"
	"nyoka-packages/internal/types"
)

type pruneOptions struct {
	Keep   []string
	DryRun bool
}

func newPruneCommand() *cobra.Command {
	opts := pruneOptions{}
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove local resources outside the dependency closure of a keep list",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrune(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.Keep, "keep", nil, "Resources to keep as name[@version]; their dependencies are kept too")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Only report prune decisions without deleting")
	return cmd
}

func runPrune(ctx context.Context, cmd *cobra.Command, opts pruneOptions) error {
	keep, err := core.ParseIdentifiers(opts.Keep, "")
	if err != nil {
		return err
	}
	result, pruneErr := newAppService(cmd).PruneTo(ctx, app.PruneRequest{Keep: keep, DryRun: opts.DryRun})
	if pruneErr != nil && !types.IsKind(pruneErr, types.ErrorKindPartialFailure) {
		return pruneErr
	}
	out := cmd.OutOrStdout()
	decisions := append(append([]types.PruneDecision{}, result.Plan.Keep...), result.Plan.Remove...)
	if len(decisions) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("no local resources"))
		return nil
	}
	rows := make([][]string, 0, len(decisions))
	for _, decision := range decisions {
		rows = append(rows, []string{
			string(decision.Namespace),
			decision.Name,
			versionOrUnknown(decision.Version, decision.Version != ""),
			pruneLabel(decision.Action),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"NAMESPACE", "NAME", "VERSION", "ACTION"}, rows))
	for _, failure := range result.Failures {
		fmt.Fprintf(out, "%s %s/%s: %s\n", errorStyle.Render("failed"),
			failure.Decision.Namespace, failure.Decision.Name, errorMessage(failure.Err))
	}
	if result.DryRun {
		fmt.Fprintf(out, "dry-run: keep=%d remove=%d\n", len(result.Plan.Keep), len(result.Plan.Remove))
		return nil
	}
	fmt.Fprintf(out, "pruned resources: %d\n", len(result.Removed))
	return pruneErr
}
