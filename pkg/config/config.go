package config

import "github.com/arthur-debert/portcfg/pkg/types"

// Config is the resolved tool configuration.
type Config struct {
	Profiles ProfilesConfig `koanf:"profiles"`
	Defaults DefaultsConfig `koanf:"defaults"`
	State    StateConfig    `koanf:"state"`
}

// ProfilesConfig locates profile and manifest documents inside a template
// root.
type ProfilesConfig struct {
	Dir          string `koanf:"dir"`
	ManifestsDir string `koanf:"manifests_dir"`
}

// DefaultsConfig supplies values for CLI flags that were not given.
type DefaultsConfig struct {
	TemplateRoot string `koanf:"template_root"`
	Profile      string `koanf:"profile"`
	Namespace    string `koanf:"namespace"`
}

// StateConfig holds the default state locations, relative to the project
// root.
type StateConfig struct {
	StateFile    string `koanf:"state_file"`
	BackupDir    string `koanf:"backup_dir"`
	HistoryDir   string `koanf:"history_dir"`
	ConflictsDir string `koanf:"conflicts_dir"`
}

// StateDefaults converts the configured state locations to the form
// profiles use for their overrides.
func (c *Config) StateDefaults() types.StateConfig {
	return types.StateConfig{
		StateFile:    c.State.StateFile,
		BackupDir:    c.State.BackupDir,
		HistoryDir:   c.State.HistoryDir,
		ConflictsDir: c.State.ConflictsDir,
	}
}
