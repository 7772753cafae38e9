package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"nyoka-packages/internal/app"
	"nyoka-packages/internal/core"
	"nyoka-packages/internal/types"
)

func clientConfig(cmd *cobra.Command) app.Config {
	return app.Config{
		RemoteURL:      viper.GetString("remote_url"),
		LocalRoot:      viper.GetString("local_root"),
		HTTPTimeoutSec: viper.GetInt("http_timeout_sec"),
		AssumeYes:      viper.GetBool("assume_yes"),
		In:             cmd.InOrStdin(),
		Out:            cmd.OutOrStdout(),
	}
}

func newAppService(cmd *cobra.Command) app.Service {
	service := app.NewService(clientConfig(cmd))
	service.Reporter = newConsoleReporter(cmd.OutOrStdout())
	return service
}

// parseNamespace accepts an empty value as "not given".
func parseNamespace(value string) (types.Namespace, error) {
	if value == "" {
		return "", nil
	}
	ns, ok := types.ParseNamespace(value)
	if !ok {
		return "", types.NewError(types.ErrorKindInvalidIdentifier,
			fmt.Sprintf("unknown namespace %q (expected code, data or model)", value), nil)
	}
	return ns, nil
}

func parseIdentifierArg(raw string, namespace string) (types.ResourceID, error) {
	ns, err := parseNamespace(namespace)
	if err != nil {
		return types.ResourceID{}, err
	}
	return core.ParseIdentifier(raw, ns)
}

// namespaceArg reads the optional namespace filter of list and available.
func namespaceArg(args []string) (types.Namespace, error) {
	if len(args) == 0 {
		return "", nil
	}
	return parseNamespace(args[0])
}
