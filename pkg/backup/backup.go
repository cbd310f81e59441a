// Package backup snapshots project files before they are overwritten and
// restores recorded changes in reverse order.
package backup

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/portcfg/pkg/errors"
	"github.com/arthur-debert/portcfg/pkg/filesystem"
	"github.com/arthur-debert/portcfg/pkg/logging"
	"github.com/arthur-debert/portcfg/pkg/paths"
	"github.com/arthur-debert/portcfg/pkg/types"
)

// Store writes the backups of one transaction.
type Store struct {
	fs          types.FS
	projectRoot string
	root        string
}

// NewStore creates a store that mirrors project files under backupRoot.
func NewStore(fsys types.FS, projectRoot, backupRoot string) *Store {
	return &Store{fs: fsys, projectRoot: projectRoot, root: backupRoot}
}

// Root is the transaction's backup directory.
func (s *Store) Root() string {
	return s.root
}

// Backup copies file, with its mode and modification time, into the store
// and returns the copy's project-relative path. A file already backed up
// by this transaction keeps its first snapshot, which is the state before
// the transaction touched it.
func (s *Store) Backup(file string) (string, error) {
	rel, err := paths.Rel(s.projectRoot, file)
	if err != nil {
		return "", err
	}
	dst := paths.BackupPath(s.root, rel)
	backupRel, err := paths.Rel(s.projectRoot, dst)
	if err != nil {
		return "", err
	}

	exists, err := filesystem.Exists(s.fs, dst)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to check backup %s", backupRel)
	}
	if exists {
		return backupRel, nil
	}

	if err := filesystem.CopyFile(s.fs, file, dst); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "failed to back up %s", rel)
	}

	logger := logging.GetLogger("backup")
	logger.Debug().
		Str("path", rel).
		Str("backup", backupRel).
		Msg("Backed up file")
	return backupRel, nil
}

// restoreStep is one change resolved to absolute paths.
type restoreStep struct {
	change types.Change
	target string
	source string
}

// Restore undoes changes in reverse order. Created files are deleted (a
// file that is already gone is fine) and their emptied parent directories
// pruned up to the project root; updated files get their backup copied
// back. Every path and every backup is checked before the first file is
// touched. It returns how many files were restored and removed.
func Restore(fsys types.FS, projectRoot string, changes []types.Change) (restored, removed int, err error) {
	logger := logging.GetLogger("backup")

	steps, err := checkRestore(fsys, projectRoot, changes)
	if err != nil {
		return 0, 0, err
	}

	for _, step := range steps {
		change := step.change
		switch change.Operation {
		case types.OperationCreated:
			if err := fsys.Remove(step.target); err != nil {
				if stderrors.Is(err, fs.ErrNotExist) {
					continue
				}
				return restored, removed, errors.Wrapf(err, errors.ErrFileWrite, "failed to remove %s", change.Path)
			}
			removed++
			if err := filesystem.PruneEmptyParents(fsys, filepath.Dir(step.target), projectRoot); err != nil {
				return restored, removed, errors.Wrapf(err, errors.ErrFileWrite, "failed to prune parents of %s", change.Path)
			}
			logger.Debug().Str("path", change.Path).Msg("Removed created file")

		case types.OperationUpdated:
			if err := filesystem.CopyFile(fsys, step.source, step.target); err != nil {
				return restored, removed, errors.Wrapf(err, errors.ErrFileWrite, "failed to restore %s", change.Path)
			}
			restored++
			logger.Debug().Str("path", change.Path).Str("backup", *change.Backup).Msg("Restored file")
		}
	}
	return restored, removed, nil
}

// checkRestore resolves changes in restore order and fails on the first
// one that cannot be undone.
func checkRestore(fsys types.FS, projectRoot string, changes []types.Change) ([]restoreStep, error) {
	steps := make([]restoreStep, 0, len(changes))
	for i := len(changes) - 1; i >= 0; i-- {
		change := changes[i]
		target, err := paths.Resolve(projectRoot, change.Path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrStateLoad, "invalid change path %q", change.Path)
		}
		step := restoreStep{change: change, target: target}

		switch change.Operation {
		case types.OperationCreated:
		case types.OperationUpdated:
			if change.Backup == nil || *change.Backup == "" {
				return nil, errors.Newf(errors.ErrBackupMissing, "Missing backup for updated file: %s", change.Path)
			}
			source, err := paths.Resolve(projectRoot, *change.Backup)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrStateLoad, "invalid backup path %q", *change.Backup)
			}
			exists, err := filesystem.Exists(fsys, source)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to check backup %s", *change.Backup)
			}
			if !exists {
				return nil, errors.Newf(errors.ErrBackupMissing, "Backup file missing: %s", *change.Backup)
			}
			step.source = source
		default:
			return nil, errors.Newf(errors.ErrStateLoad, "Unsupported change operation: %s", change.Operation).
				WithAction(change.ActionID)
		}
		steps = append(steps, step)
	}
	return steps, nil
}
