package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/portcfg/pkg/errors"
	"github.com/arthur-debert/portcfg/pkg/types"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for portcfg
	EnvConfigDir = "PORTCFG_CONFIG_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default locations. The state defaults are relative to the project root.
const (
	AppDirName = "portcfg"

	// UserConfigFile is the name of the per-user config file
	UserConfigFile = "config.toml"

	// ProjectConfigFile is read from the project root when present
	ProjectConfigFile = ".portcfg.toml"

	DefaultStateFile    = ".codex/portable/state.json"
	DefaultBackupDir    = ".codex/portable/backups"
	DefaultHistoryDir   = ".codex/portable/history"
	DefaultConflictsDir = ".codex/portable/conflicts"

	// backupFilesDir is the subdirectory of a transaction backup that
	// mirrors the project tree.
	backupFilesDir = "files"
)

// Namespace placeholders accepted in profile target templates
var namespacePlaceholders = []string{"{namespace}", "{skill_namespace}"}

// DefaultState returns the built-in state layout.
func DefaultState() types.StateConfig {
	return types.StateConfig{
		StateFile:    DefaultStateFile,
		BackupDir:    DefaultBackupDir,
		HistoryDir:   DefaultHistoryDir,
		ConflictsDir: DefaultConflictsDir,
	}
}

// Layout holds the absolute state locations for one project.
type Layout struct {
	ProjectRoot  string
	StateFile    string
	BackupDir    string
	HistoryDir   string
	ConflictsDir string
}

// NewLayout resolves the state locations for projectRoot. Non-empty fields
// of override win over defaults, and empty defaults fall back to the
// built-in locations. Every location must resolve inside the project.
func NewLayout(projectRoot string, defaults, override types.StateConfig) (*Layout, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for project root")
	}

	builtin := DefaultState()
	pick := func(name, over, def, fallback string) (string, error) {
		value := over
		if value == "" {
			value = def
		}
		if value == "" {
			value = fallback
		}
		resolved, err := Resolve(root, value)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrInvalidInput, "state location %s", name)
		}
		if resolved == root {
			return "", errors.Newf(errors.ErrInvalidInput, "state location %s cannot be the project root", name)
		}
		return resolved, nil
	}

	l := &Layout{ProjectRoot: root}
	if l.StateFile, err = pick("state_file", override.StateFile, defaults.StateFile, builtin.StateFile); err != nil {
		return nil, err
	}
	if l.BackupDir, err = pick("backup_dir", override.BackupDir, defaults.BackupDir, builtin.BackupDir); err != nil {
		return nil, err
	}
	if l.HistoryDir, err = pick("history_dir", override.HistoryDir, defaults.HistoryDir, builtin.HistoryDir); err != nil {
		return nil, err
	}
	if l.ConflictsDir, err = pick("conflicts_dir", override.ConflictsDir, defaults.ConflictsDir, builtin.ConflictsDir); err != nil {
		return nil, err
	}
	return l, nil
}

// TxnBackupDir is the backup root for one transaction.
func (l *Layout) TxnBackupDir(txnID string) string {
	return filepath.Join(l.BackupDir, txnID)
}

// TxnConflictDir is where one transaction stages conflicting sources.
func (l *Layout) TxnConflictDir(txnID string) string {
	return filepath.Join(l.ConflictsDir, txnID)
}

// HistoryFile is the immutable record of one transaction.
func (l *Layout) HistoryFile(kind types.Kind, txnID string) string {
	return filepath.Join(l.HistoryDir, fmt.Sprintf("%s-%s.json", kind, txnID))
}

// Rel returns path relative to the project root in slash form.
func (l *Layout) Rel(path string) string {
	rel, err := Rel(l.ProjectRoot, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return rel
}

// BackupPath is where a project file is copied inside a transaction
// backup root.
func BackupPath(backupRoot, relPath string) string {
	return filepath.Join(backupRoot, backupFilesDir, filepath.FromSlash(relPath))
}

// ConflictPath is where a conflicting source is staged for relPath. The
// project-relative path is flattened into a single file name.
func ConflictPath(conflictRoot, relPath string) string {
	return filepath.Join(conflictRoot, strings.ReplaceAll(filepath.ToSlash(relPath), "/", "__"))
}

// ExpandTarget substitutes the namespace into a profile target template.
func ExpandTarget(template, namespace string) string {
	out := template
	for _, placeholder := range namespacePlaceholders {
		out = strings.ReplaceAll(out, placeholder, namespace)
	}
	return out
}

// ConfigDir returns the per-user config directory for portcfg.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// UserConfigPath returns the path of the per-user config file.
func UserConfigPath() string {
	return filepath.Join(ConfigDir(), UserConfigFile)
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~user is not expanded
	return path
}
