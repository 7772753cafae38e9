package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"nyoka-packages/internal/adapters"
)

const defaultConfigPath = "nyoka-packages.yaml"

type initOptions struct {
	WriteConfig bool
	ConfigPath  string
}

func newInitCommand() *cobra.Command {
	opts := initOptions{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the local resource directories",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.WriteConfig, "write-config", false, "Write the effective client settings to a config file")
	cmd.Flags().StringVar(&opts.ConfigPath, "config-path", defaultConfigPath, "Path of the config file written by --write-config")
	return cmd
}

func runInit(ctx context.Context, cmd *cobra.Command, opts initOptions) error {
	service := newAppService(cmd)
	result, err := service.Init(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(result.Created) == 0 {
		fmt.Fprintln(out, "local resource directories already exist")
	}
	for _, dir := range result.Created {
		fmt.Fprintf(out, "created %s\n", dir)
	}
	if !opts.WriteConfig {
		return nil
	}
	cfg := adapters.ClientConfig{
		RemoteURL:      viper.GetString("remote_url"),
		LocalRoot:      viper.GetString("local_root"),
		HTTPTimeoutSec: viper.GetInt("http_timeout_sec"),
		AssumeYes:      viper.GetBool("assume_yes"),
		LogLevel:       viper.GetString("log_level"),
	}
	if err := adapters.NewConfigFileAdapter().Write(opts.ConfigPath, cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote config: %s\n", opts.ConfigPath)
	return nil
}
