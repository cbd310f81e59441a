package core

import (
	"path/filepath"
	"time"

	"github.com/arthur-debert/portcfg/pkg/config"
	"github.com/arthur-debert/portcfg/pkg/errors"
	"github.com/arthur-debert/portcfg/pkg/filesystem"
	"github.com/arthur-debert/portcfg/pkg/paths"
	"github.com/arthur-debert/portcfg/pkg/profile"
	"github.com/arthur-debert/portcfg/pkg/types"
)

// env is the resolved environment of one engine operation.
type env struct {
	fs   types.FS
	cfg  *config.Config
	root string
	now  func() time.Time
}

func newEnv(fsys types.FS, cfg *config.Config, projectRoot string, now func() time.Time) (*env, error) {
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if now == nil {
		now = time.Now
	}

	if projectRoot == "" {
		return nil, errors.New(errors.ErrInvalidInput, "project root is required")
	}
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid project root %s", projectRoot)
	}
	info, err := fsys.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidInput, "Project root is not a directory: %s", root)
	}

	return &env{fs: fsys, cfg: cfg, root: root, now: now}, nil
}

// layout resolves the state locations. When a profile is named its state
// overrides apply, which requires the template root it lives in.
func (e *env) layout(templateRoot, profileName string) (*paths.Layout, error) {
	var override types.StateConfig
	if profileName != "" {
		if templateRoot == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "template root is required to read profile %s", profileName)
		}
		root, err := filepath.Abs(templateRoot)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid template root %s", templateRoot)
		}
		p, _, err := profile.NewLoader(e.fs, root, e.cfg).Load(profileName)
		if err != nil {
			return nil, err
		}
		override = p.State
	}
	return paths.NewLayout(e.root, e.cfg.StateDefaults(), override)
}

// timestamp is the second-precision UTC time stored on transactions.
func timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
