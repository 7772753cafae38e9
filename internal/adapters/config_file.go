package adapters

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"
)

// ClientConfig is the on-disk client configuration read back through viper.
type ClientConfig struct {
	RemoteURL      string `yaml:"remote_url"`
	LocalRoot      string `yaml:"local_root"`
	HTTPTimeoutSec int    `yaml:"http_timeout_sec"`
	AssumeYes      bool   `yaml:"assume_yes"`
	LogLevel       string `yaml:"log_level,omitempty"`
}

type ConfigFileAdapter struct{}

func NewConfigFileAdapter() ConfigFileAdapter {
	return ConfigFileAdapter{}
}

func (a ConfigFileAdapter) Write(path string, cfg ClientConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create config directory").
			WithCause(err)
	}
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode config").
			WithCause(err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write config file").
			WithCause(err)
	}
	return nil
}

func (a ConfigFileAdapter) Read(path string) (ClientConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return ClientConfig{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read config file").
			WithCause(err)
	}
	var cfg ClientConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return ClientConfig{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse config file").
			WithCause(err)
	}
	return cfg, nil
}
