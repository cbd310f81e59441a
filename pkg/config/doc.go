// Package config handles tool configuration for portcfg.
//
// Configuration is layered with koanf, later sources overriding earlier
// ones:
//
//  1. built-in defaults (embedded/defaults.toml)
//  2. the user config file, $XDG_CONFIG_HOME/portcfg/config.toml
//  3. .portcfg.toml in the project root
//  4. PORTCFG_* environment variables, with "__" separating the section
//     from the key (PORTCFG_STATE__BACKUP_DIR sets state.backup_dir)
//
// Profiles carry their own state overrides; those are applied on top of
// the configured state defaults by the paths package.
package config
