package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/arthur-debert/portcfg/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides
const EnvPrefix = "PORTCFG_"

// Default returns the built-in configuration only.
func Default() *Config {
	cfg, err := load(koanf.New("."))
	if err != nil {
		// The embedded defaults are part of the binary.
		panic(fmt.Sprintf("invalid embedded defaults: %v", err))
	}
	return cfg
}

// Load resolves the configuration for a project. projectRoot may be empty,
// in which case no project config file is read.
func Load(projectRoot string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	files := []string{paths.UserConfigPath()}
	if projectRoot != "" {
		files = append(files, filepath.Join(projectRoot, paths.ProjectConfigFile))
	}
	for _, path := range files {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	return unmarshal(k)
}

// FromMap builds a configuration from the defaults plus the given
// dot-separated overrides. It is meant for tests and embedding callers.
func FromMap(overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}
	return unmarshal(k)
}

func load(k *koanf.Koanf) (*Config, error) {
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				expandHomeHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return &cfg, nil
}

// envKey maps PORTCFG_STATE__BACKUP_DIR to state.backup_dir.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// expandHomeHookFunc expands ~ in string values; only template_root is
// expected to use it.
func expandHomeHookFunc() mapstructure.DecodeHookFuncKind {
	return func(from, to reflect.Kind, data interface{}) (interface{}, error) {
		if from != reflect.String || to != reflect.String {
			return data, nil
		}
		return paths.ExpandHome(data.(string)), nil
	}
}
