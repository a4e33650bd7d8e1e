// Package config loads application configuration from the config file,
// environment variables and named profiles.
package config

import (
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/compression"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/conversations"
	"github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/telemetry"
	llmtypes "github.com/MichaelPaulukonis/job-posting-analyzer-sub000/pkg/types/llm"
)

// Config is the full application configuration.
type Config struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	Profile   string `mapstructure:"profile"`

	Generation  llmtypes.Config     `mapstructure:"generation"`
	Compression compression.Config  `mapstructure:"compression"`
	Store       conversations.Config `mapstructure:"store"`
	Tracing     telemetry.Config    `mapstructure:"tracing"`

	// Profiles are named partial configurations layered over the base
	// config when selected via the profile key or --profile flag.
	Profiles map[string]map[string]interface{} `mapstructure:"profiles"`
}

// Init wires viper to the config file and environment. Call once at
// startup before Load.
func Init() {
	viper.SetEnvPrefix("COVERLETTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.coverletter")
	viper.AddConfigPath(".")

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("store.backend", "json")
	viper.SetDefault("generation.provider", "anthropic")

	// Missing config file is fine, defaults and env apply.
	_ = viper.ReadInConfig()
}

// Load unmarshals the merged configuration and applies the selected
// profile, if any.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal configuration")
	}

	if cfg.Generation.Retry == (llmtypes.RetryConfig{}) {
		cfg.Generation.Retry = llmtypes.DefaultRetryConfig
	}

	if err := applyProfile(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyProfile layers the named profile's values over the base config.
// Only keys the profile sets are overridden.
func applyProfile(cfg *Config) error {
	name := cfg.Profile
	if name == "" || name == "default" {
		return nil
	}

	overrides, ok := cfg.Profiles[name]
	if !ok {
		return errors.Errorf("profile not found: %s", name)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ZeroFields:       false,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create profile decoder")
	}
	if err := decoder.Decode(overrides); err != nil {
		return errors.Wrapf(err, "failed to apply profile %s", name)
	}

	return nil
}
