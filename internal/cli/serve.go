package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"nyoka-packages/internal/adapters"
	nyokaotel "nyoka-packages/internal/observability/otel"
	"nyoka-packages/internal/server"
)

type serveOptions struct {
	ServerRoot string
	Listen     string
}

func newServeCommand() *cobra.Command {
	opts := serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the repository server",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.ServerRoot, "server-root", "", "Resource store directory")
	cmd.Flags().StringVar(&opts.Listen, "listen", ":5000", "Listen address")
	_ = viper.BindPFlag("server_root", cmd.Flags().Lookup("server-root"))
	_ = viper.BindPFlag("listen_addr", cmd.Flags().Lookup("listen"))
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, opts serveOptions) error {
	root := resolveString(cmd, opts.ServerRoot, "server_root", "server-root")
	if root == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("server root is required")
	}
	addr := resolveString(cmd, opts.Listen, "listen_addr", "listen")

	var serverOpts []server.Option
	if handle := nyokaotel.From(ctx); handle != nil {
		serverOpts = append(serverOpts, server.WithTracer(handle.Tracer))
	}
	srv := server.NewServer(adapters.NewResourceStoreFileAdapter(root), serverOpts...)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, addr)
}
