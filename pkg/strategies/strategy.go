package strategies

import (
	stderrors "errors"
	"io/fs"

	"github.com/arthur-debert/portcfg/pkg/backup"
	"github.com/arthur-debert/portcfg/pkg/errors"
	"github.com/arthur-debert/portcfg/pkg/filesystem"
	"github.com/arthur-debert/portcfg/pkg/internal/hashutil"
	"github.com/arthur-debert/portcfg/pkg/logging"
	"github.com/arthur-debert/portcfg/pkg/paths"
	"github.com/arthur-debert/portcfg/pkg/registry"
	"github.com/arthur-debert/portcfg/pkg/types"
	"github.com/rs/zerolog"
)

// Context carries what a strategy needs besides its source and
// destination.
type Context struct {
	FS          types.FS
	ProjectRoot string
	Namespace   string
	ActionID    string
	Backups     *backup.Store
	// ConflictDir is the transaction's conflict staging directory
	ConflictDir string
}

// Outcome is what one strategy run did.
type Outcome struct {
	Changes  []types.Change
	Conflict *types.Conflict
}

// Func is the uniform strategy contract.
type Func func(ctx *Context, src, dst string) (Outcome, error)

var strategies = registry.New[types.Strategy, Func]()

func init() {
	registry.MustRegister(strategies, types.StrategyAppendBlock, AppendBlock)
	registry.MustRegister(strategies, types.StrategyMergeTOMLKeys, MergeTOMLKeys)
	registry.MustRegister(strategies, types.StrategyMergeJSONKeys, MergeJSONKeys)
	registry.MustRegister(strategies, types.StrategyMergeYAMLKeys, MergeYAMLKeys)
	registry.MustRegister(strategies, types.StrategySyncAdditiveDir, SyncAdditiveDir)
}

// Lookup returns the implementation of s.
func Lookup(s types.Strategy) (Func, error) {
	fn, err := strategies.Get(s)
	if err != nil {
		return nil, errors.Newf(errors.ErrUnsupportedStrategy, "Unsupported strategy: %s", s)
	}
	return fn, nil
}

// Supported reports whether s has an implementation.
func Supported(s types.Strategy) bool {
	return strategies.Has(s)
}

// Names lists the registered strategies in sorted order.
func Names() []types.Strategy {
	return strategies.List()
}

func (c *Context) logger() *zerolog.Logger {
	logger := logging.GetLogger("strategies").With().Str("action", c.ActionID).Logger()
	return &logger
}

func (c *Context) rel(path string) string {
	rel, err := paths.Rel(c.ProjectRoot, path)
	if err != nil {
		return path
	}
	return rel
}

// create records dst as created and writes data to it. The change is
// recorded first so a failed write is still undone.
func (c *Context) create(out *Outcome, dst string, data []byte, perm fs.FileMode) error {
	out.Changes = append(out.Changes, types.Change{
		Path:      c.rel(dst),
		Operation: types.OperationCreated,
		ActionID:  c.ActionID,
		Checksum:  hashutil.Checksum(data),
	})
	if err := filesystem.WriteFileAtomic(c.FS, dst, data, perm); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", c.rel(dst))
	}
	c.logger().Debug().Str("path", c.rel(dst)).Msg("Created file")
	return nil
}

// update backs dst up, records the change and replaces its content,
// keeping its permission bits.
func (c *Context) update(out *Outcome, dst string, data []byte) error {
	info, err := c.FS.Stat(dst)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", c.rel(dst))
	}
	backupRel, err := c.Backups.Backup(dst)
	if err != nil {
		return err
	}
	out.Changes = append(out.Changes, types.Change{
		Path:      c.rel(dst),
		Operation: types.OperationUpdated,
		Backup:    &backupRel,
		ActionID:  c.ActionID,
		Checksum:  hashutil.Checksum(data),
	})
	if err := filesystem.WriteFileAtomic(c.FS, dst, data, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", c.rel(dst))
	}
	c.logger().Debug().Str("path", c.rel(dst)).Str("backup", backupRel).Msg("Updated file")
	return nil
}

// conflict stages data for dst and returns the conflict record. The
// destination itself is not touched.
func (c *Context) conflict(dst, reason string, data []byte) (*types.Conflict, error) {
	rel := c.rel(dst)
	staged := paths.ConflictPath(c.ConflictDir, rel)
	if err := filesystem.WriteFileAtomic(c.FS, staged, data, 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "failed to stage conflict for %s", rel)
	}
	c.logger().Warn().Str("path", rel).Str("reason", reason).Msg("Conflict detected, destination left untouched")
	return &types.Conflict{
		Path:            rel,
		Reason:          reason,
		SuggestedSource: c.rel(staged),
		ActionID:        c.ActionID,
	}, nil
}

// readSource reads a template source file.
func readSource(fsys types.FS, src string) ([]byte, error) {
	data, err := fsys.ReadFile(src)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Newf(errors.ErrSourceNotFound, "Source not found: %s", src)
		}
		return nil, errors.Wrapf(err, errors.ErrSourceInvalid, "failed to read source %s", src)
	}
	return data, nil
}

// readDestination returns the destination content, or nil and false when
// it does not exist.
func readDestination(c *Context, dst string) ([]byte, bool, error) {
	info, err := c.FS.Stat(dst)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", c.rel(dst))
	}
	if info.IsDir() {
		return nil, false, errors.Newf(errors.ErrTargetInvalid, "Target is a directory: %s", c.rel(dst))
	}
	data, err := c.FS.ReadFile(dst)
	if err != nil {
		return nil, false, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", c.rel(dst))
	}
	return data, true, nil
}
