package strategies

import (
	"bytes"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/portcfg/pkg/errors"
	"github.com/arthur-debert/portcfg/pkg/filesystem"
	"github.com/arthur-debert/portcfg/pkg/internal/hashutil"
	"github.com/arthur-debert/portcfg/pkg/types"
)

// SyncAdditiveDir copies every file of the source tree that is missing or
// different in the destination tree. Files only present in the
// destination are left alone. Copies keep the source mode and
// modification time.
func SyncAdditiveDir(ctx *Context, src, dst string) (Outcome, error) {
	var out Outcome

	info, err := ctx.FS.Stat(src)
	if err != nil || !info.IsDir() {
		return out, errors.Newf(errors.ErrSourceNotFound, "Source directory not found: %s", src)
	}
	if dstInfo, err := ctx.FS.Stat(dst); err == nil && !dstInfo.IsDir() {
		return out, errors.Newf(errors.ErrTargetInvalid, "Target is not a directory: %s", ctx.rel(dst))
	}

	files, err := sourceFiles(ctx.FS, src)
	if err != nil {
		return out, err
	}

	for _, rel := range files {
		from := filepath.Join(src, filepath.FromSlash(rel))
		to := filepath.Join(dst, filepath.FromSlash(rel))

		data, err := readSource(ctx.FS, from)
		if err != nil {
			return out, err
		}
		existing, exists, err := readDestination(ctx, to)
		if err != nil {
			return out, err
		}

		if exists && bytes.Equal(existing, data) {
			continue
		}

		change := types.Change{
			Path:      ctx.rel(to),
			Operation: types.OperationCreated,
			ActionID:  ctx.ActionID,
			Checksum:  hashutil.Checksum(data),
		}
		if exists {
			backupRel, err := ctx.Backups.Backup(to)
			if err != nil {
				return out, err
			}
			change.Operation = types.OperationUpdated
			change.Backup = &backupRel
		}
		out.Changes = append(out.Changes, change)

		if err := filesystem.CopyFile(ctx.FS, from, to); err != nil {
			return out, errors.Wrapf(err, errors.ErrFileWrite, "failed to copy %s", change.Path)
		}
		ctx.logger().Debug().
			Str("path", change.Path).
			Str("operation", string(change.Operation)).
			Msg("Synced file")
	}
	return out, nil
}

// sourceFiles lists the regular files under root as slash paths, in the
// walk's lexical order. Symlinks to files are followed.
func sourceFiles(fsys types.FS, root string) ([]string, error) {
	var files []string
	err := fsys.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !info.Mode().IsRegular() {
			target, err := fsys.Stat(path)
			if err != nil {
				if stderrors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if !target.Mode().IsRegular() {
				return nil
			}
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrSourceInvalid, "failed to walk %s", root)
	}
	return files, nil
}
