package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	nyokaotel "nyoka-packages/internal/observability/otel"
	"nyoka-packages/internal/types"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "NYOKA_PACKAGES"

type RootConfig struct {
	ConfigFile     string
	LogLevel       string
	RemoteURL      string
	LocalRoot      string
	AssumeYes      bool
	HTTPTimeoutSec int
	OtelEnabled    bool
	OtelEndpoint   string
}

func Execute() {
	root := newRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Error().Str("kind", string(types.KindOf(err))).Msg(errorMessage(err))
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:           "nyoka-packages",
		Short:         "Private repository for code, data and model resources",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			return setupTracing(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return shutdownTracing(cmd.Context())
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	flags.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&cfg.RemoteURL, "remote", "http://localhost:5000", "Repository server URL")
	flags.StringVar(&cfg.LocalRoot, "local-root", ".", "Local resource directory")
	flags.BoolVarP(&cfg.AssumeYes, "yes", "y", false, "Answer yes to every confirmation")
	flags.IntVar(&cfg.HTTPTimeoutSec, "http-timeout", 0, "HTTP timeout in seconds (0 = none)")
	flags.BoolVar(&cfg.OtelEnabled, "otel-enabled", false, "Export traces over OTLP")
	flags.StringVar(&cfg.OtelEndpoint, "otel-endpoint", "", "OTLP endpoint (host:port or URL)")
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("remote_url", flags.Lookup("remote"))
	_ = viper.BindPFlag("local_root", flags.Lookup("local-root"))
	_ = viper.BindPFlag("assume_yes", flags.Lookup("yes"))
	_ = viper.BindPFlag("http_timeout_sec", flags.Lookup("http-timeout"))
	_ = viper.BindPFlag("otel_enabled", flags.Lookup("otel-enabled"))
	_ = viper.BindPFlag("otel_endpoint", flags.Lookup("otel-endpoint"))

	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newAvailableCommand())
	cmd.AddCommand(newAddCommand())
	cmd.AddCommand(newRemoveCommand())
	cmd.AddCommand(newDependenciesCommand())
	cmd.AddCommand(newPublishCommand())
	cmd.AddCommand(newPruneCommand())
	cmd.AddCommand(newServeCommand())
	return cmd
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	defaults := nyokaotel.DefaultConfig()
	viper.SetDefault("otel_protocol", defaults.Protocol)
	viper.SetDefault("otel_sample_ratio", defaults.SampleRatio)

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("nyoka-packages")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/nyoka-packages")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func otelConfig() nyokaotel.Config {
	cfg := nyokaotel.DefaultConfig()
	cfg.Enabled = viper.GetBool("otel_enabled")
	cfg.Endpoint = viper.GetString("otel_endpoint")
	cfg.Protocol = viper.GetString("otel_protocol")
	cfg.Insecure = viper.GetBool("otel_insecure")
	cfg.SampleRatio = viper.GetFloat64("otel_sample_ratio")
	cfg.ServiceVersion = version
	return cfg
}

// setupTracing initializes tracing and attaches the tracer handle and the
// global logger to the command context.
func setupTracing(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	handle, err := nyokaotel.Init(ctx, otelConfig())
	if err != nil {
		return err
	}
	ctx = nyokaotel.WithHandle(ctx, handle)
	cmd.SetContext(log.Logger.WithContext(ctx))
	return nil
}

func shutdownTracing(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	handle := nyokaotel.From(ctx)
	if handle == nil || handle.Shutdown == nil {
		return nil
	}
	return handle.Shutdown(context.WithoutCancel(ctx))
}

func usageError(err error) error {
	return types.NewError(types.ErrorKindInvalidIdentifier, err.Error(), err)
}

// usageArgs reports argument count errors as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

func exitCodeForError(err error) int {
	switch types.KindOf(err) {
	case types.ErrorKindMalformedVersion, types.ErrorKindInvalidIdentifier,
		types.ErrorKindMissingDependencyVersion, types.ErrorKindUnsupportedMediaType:
		return 2
	case types.ErrorKindAborted:
		return 3
	case types.ErrorKindNotFound, types.ErrorKindNotAvailable, types.ErrorKindVersionNotFound:
		return 4
	case types.ErrorKindStoreAccess, types.ErrorKindTransfer,
		types.ErrorKindCorruptManifest, types.ErrorKindCorruptStore:
		return 5
	case types.ErrorKindDependencyResolution, types.ErrorKindPartialFailure:
		return 1
	}
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument, errbuilder.CodeAlreadyExists:
		return 2
	case errbuilder.CodePermissionDenied:
		return 3
	case errbuilder.CodeNotFound:
		return 4
	case errbuilder.CodeInternal:
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
