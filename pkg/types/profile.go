package types

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile describes where a profile's logical targets live inside a
// project and where its transaction state is kept. Profiles are immutable
// once loaded.
type Profile struct {
	Profile string            `yaml:"profile" json:"profile" validate:"required"`
	Targets map[string]string `yaml:"targets" json:"targets" validate:"required,min=1,dive,keys,required,endkeys,required"`
	State   StateConfig       `yaml:"state" json:"state"`
}

// StateConfig holds optional overrides for the state locations. Empty
// fields fall back to the configured defaults.
type StateConfig struct {
	StateFile    string `yaml:"state_file" json:"state_file,omitempty"`
	BackupDir    string `yaml:"backup_dir" json:"backup_dir,omitempty"`
	HistoryDir   string `yaml:"history_dir" json:"history_dir,omitempty"`
	ConflictsDir string `yaml:"conflicts_dir" json:"conflicts_dir,omitempty"`
}

// Manifest is the ordered list of actions installed by a profile.
type Manifest struct {
	Profile string   `yaml:"profile" json:"profile" validate:"required"`
	Actions []Action `yaml:"actions" json:"actions" validate:"required,min=1,dive"`
}

// Action is one declared unit of work: copy or merge Src (relative to the
// template root) into the profile target named by Target.
type Action struct {
	ID       string   `yaml:"id" json:"id" validate:"required"`
	Src      string   `yaml:"src" json:"src" validate:"required"`
	Target   string   `yaml:"target" json:"target" validate:"required"`
	Strategy Strategy `yaml:"strategy" json:"strategy" validate:"required"`
}

// Strategy selects how an action mutates its target. The set is closed:
// unknown names are rejected while the manifest is decoded.
type Strategy string

const (
	StrategyAppendBlock     Strategy = "append_block"
	StrategyMergeTOMLKeys   Strategy = "merge_toml_keys"
	StrategyMergeJSONKeys   Strategy = "merge_json_keys"
	StrategyMergeYAMLKeys   Strategy = "merge_yaml_keys"
	StrategySyncAdditiveDir Strategy = "sync_additive_dir"
)

// Strategies lists every supported strategy in documentation order.
var Strategies = []Strategy{
	StrategyAppendBlock,
	StrategyMergeTOMLKeys,
	StrategyMergeJSONKeys,
	StrategyMergeYAMLKeys,
	StrategySyncAdditiveDir,
}

// UnknownStrategyError reports a strategy name outside the supported set.
type UnknownStrategyError struct {
	Name string
}

func (e *UnknownStrategyError) Error() string {
	names := make([]string, len(Strategies))
	for i, s := range Strategies {
		names[i] = string(s)
	}
	return fmt.Sprintf("unsupported strategy %q (expected one of %s)", e.Name, strings.Join(names, ", "))
}

// ParseStrategy converts a manifest strategy tag into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range Strategies {
		if string(s) == name {
			return s, nil
		}
	}
	return "", &UnknownStrategyError{Name: name}
}

// String returns the manifest tag of the strategy
func (s Strategy) String() string {
	return string(s)
}

// UnmarshalYAML rejects unknown strategy tags at decode time.
func (s *Strategy) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseStrategy(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// UnmarshalText rejects unknown strategy tags at decode time.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
