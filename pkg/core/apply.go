package core

import (
	"path/filepath"
	"time"

	"github.com/arthur-debert/portcfg/pkg/backup"
	"github.com/arthur-debert/portcfg/pkg/config"
	"github.com/arthur-debert/portcfg/pkg/errors"
	"github.com/arthur-debert/portcfg/pkg/filesystem"
	"github.com/arthur-debert/portcfg/pkg/ledger"
	"github.com/arthur-debert/portcfg/pkg/logging"
	"github.com/arthur-debert/portcfg/pkg/paths"
	"github.com/arthur-debert/portcfg/pkg/profile"
	"github.com/arthur-debert/portcfg/pkg/strategies"
	"github.com/arthur-debert/portcfg/pkg/types"
)

// ApplyOptions contains the inputs of one apply.
type ApplyOptions struct {
	ProjectRoot  string
	TemplateRoot string
	Profile      string
	Namespace    string

	// DryRun runs the apply against an in-memory overlay of the disk. It
	// only takes effect when FS is nil.
	DryRun bool

	FS     types.FS
	Config *config.Config
	Now    func() time.Time
}

// ApplyResult describes a committed apply.
type ApplyResult struct {
	TxnID     string
	Changes   []types.Change
	Conflicts []types.Conflict
	// StateFile and HistoryFile are relative to the project root
	StateFile   string
	HistoryFile string
	DryRun      bool
	Transaction *types.Transaction
}

// step is one action checked and ready to run.
type step struct {
	action types.Action
	run    strategies.Func
	src    string
	dst    string
}

// actionRun is what running the steps produced. Failure is set when a step
// failed; Changes then holds everything done before and during it.
type actionRun struct {
	Changes      []types.Change
	Conflicts    []types.Conflict
	Failure      error
	FailedAction string
}

// Apply installs a profile into a project as one transaction.
func Apply(opts ApplyOptions) (*ApplyResult, error) {
	logger := logging.GetLogger("core.apply")

	fsys := opts.FS
	if fsys == nil && opts.DryRun {
		fsys = filesystem.NewDryRun()
	}
	e, err := newEnv(fsys, opts.Config, opts.ProjectRoot, opts.Now)
	if err != nil {
		return nil, err
	}
	if opts.TemplateRoot == "" {
		return nil, errors.New(errors.ErrInvalidInput, "template root is required")
	}
	if opts.Namespace == "" {
		return nil, errors.New(errors.ErrInvalidInput, "namespace is required")
	}
	templateRoot, err := filepath.Abs(opts.TemplateRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid template root %s", opts.TemplateRoot)
	}

	logger.Info().
		Str("projectRoot", e.root).
		Str("templateRoot", templateRoot).
		Str("profile", opts.Profile).
		Str("namespace", opts.Namespace).
		Bool("dryRun", opts.DryRun).
		Msg("Starting apply")

	p, m, err := profile.NewLoader(e.fs, templateRoot, e.cfg).Load(opts.Profile)
	if err != nil {
		return nil, err
	}
	if err := profile.Validate(p, m); err != nil {
		return nil, err
	}
	steps, err := plan(e.root, templateRoot, opts.Namespace, p, m)
	if err != nil {
		return nil, err
	}

	layout, err := paths.NewLayout(e.root, e.cfg.StateDefaults(), p.State)
	if err != nil {
		return nil, err
	}
	led, err := ledger.Load(e.fs, layout.StateFile)
	if err != nil {
		return nil, err
	}

	started := e.now()
	txnID := ledger.NewTxnID(started, led)
	base := strategies.Context{
		FS:          e.fs,
		ProjectRoot: e.root,
		Namespace:   opts.Namespace,
		Backups:     backup.NewStore(e.fs, e.root, layout.TxnBackupDir(txnID)),
		ConflictDir: layout.TxnConflictDir(txnID),
	}

	run := runActions(base, steps)
	if run.Failure != nil {
		return nil, abortApply(e.fs, layout, txnID, run.Changes, run.Failure, run.FailedAction)
	}

	txn := &types.Transaction{
		TxnID:        txnID,
		Kind:         types.KindApply,
		CreatedAt:    timestamp(started),
		Profile:      opts.Profile,
		Namespace:    opts.Namespace,
		TemplateRoot: templateRoot,
		Changes:      run.Changes,
		Conflicts:    run.Conflicts,
	}

	historyFile := layout.HistoryFile(types.KindApply, txnID)
	if err := ledger.WriteHistory(e.fs, historyFile, txn); err != nil {
		return nil, abortApply(e.fs, layout, txnID, run.Changes, err, errors.NoAction)
	}
	led.Append(txn)
	if err := led.Save(); err != nil {
		_ = e.fs.Remove(historyFile)
		return nil, abortApply(e.fs, layout, txnID, run.Changes, err, errors.NoAction)
	}

	logger.Info().
		Str("txnId", txnID).
		Int("changes", len(run.Changes)).
		Int("conflicts", len(run.Conflicts)).
		Msg("Apply committed")

	return &ApplyResult{
		TxnID:       txnID,
		Changes:     run.Changes,
		Conflicts:   run.Conflicts,
		StateFile:   layout.Rel(layout.StateFile),
		HistoryFile: layout.Rel(historyFile),
		DryRun:      opts.DryRun && opts.FS == nil,
		Transaction: txn,
	}, nil
}

// plan resolves every action's strategy, source and destination. Nothing
// is written until the whole manifest passes.
func plan(projectRoot, templateRoot, namespace string, p *types.Profile, m *types.Manifest) ([]step, error) {
	steps := make([]step, 0, len(m.Actions))
	for _, action := range m.Actions {
		if !strategies.Supported(action.Strategy) {
			return nil, errors.Newf(errors.ErrUnsupportedStrategy, "Unsupported strategy: %s", action.Strategy).
				WithAction(action.ID)
		}
		run, err := strategies.Lookup(action.Strategy)
		if err != nil {
			return nil, err
		}

		template, ok := p.Targets[action.Target]
		if !ok {
			return nil, errors.Newf(errors.ErrUnknownTarget, "Unknown target '%s' in action '%s'", action.Target, action.ID).
				WithAction(action.ID)
		}
		dst, err := paths.Resolve(projectRoot, paths.ExpandTarget(template, namespace))
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrTargetInvalid, "Invalid target '%s' in action '%s'", action.Target, action.ID).
				WithAction(action.ID)
		}
		src, err := paths.Resolve(templateRoot, action.Src)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrSourceInvalid, "Invalid source in action '%s'", action.ID).
				WithAction(action.ID)
		}

		steps = append(steps, step{action: action, run: run, src: src, dst: dst})
	}
	return steps, nil
}

// runActions runs the steps in order and stops at the first failure.
func runActions(base strategies.Context, steps []step) actionRun {
	logger := logging.GetLogger("core.apply")
	var run actionRun

	for _, s := range steps {
		ctx := base
		ctx.ActionID = s.action.ID

		logger.Debug().
			Str("action", s.action.ID).
			Str("strategy", s.action.Strategy.String()).
			Str("target", s.dst).
			Msg("Running action")

		out, err := s.run(&ctx, s.src, s.dst)
		run.Changes = append(run.Changes, out.Changes...)
		if out.Conflict != nil {
			run.Conflicts = append(run.Conflicts, *out.Conflict)
		}
		if err != nil {
			run.Failure = err
			run.FailedAction = s.action.ID
			return run
		}
	}
	return run
}

// abortApply undoes changes after a failure and builds the error
// returned to the caller. Backups are only discarded once every change
// was restored.
func abortApply(fsys types.FS, layout *paths.Layout, txnID string, changes []types.Change, cause error, actionID string) error {
	logger := logging.GetLogger("core.apply")
	logger.Warn().
		Err(cause).
		Str("txnId", txnID).
		Str("action", actionID).
		Int("changes", len(changes)).
		Msg("Apply failed, restoring project")

	_, _, unwindErr := backup.Restore(fsys, layout.ProjectRoot, changes)
	if unwindErr == nil {
		unwindErr = discardTxnDirs(fsys, layout, txnID)
	}
	if unwindErr != nil {
		logger.Error().Err(unwindErr).Str("txnId", txnID).Msg("Auto-rollback failed")
		return errors.Wrapf(cause, errors.ErrUnwindFailed, "Apply failed at action '%s', auto-rollback failed", actionID).
			WithAction(actionID).
			WithUnwind(unwindErr)
	}
	return errors.Wrapf(cause, errors.ErrApplyFailed, "Apply failed at action '%s'", actionID).
		WithAction(actionID)
}

// discardTxnDirs removes the backup and conflict directories of a
// transaction that never committed, then prunes state directories left
// empty.
func discardTxnDirs(fsys types.FS, layout *paths.Layout, txnID string) error {
	for _, dir := range []string{layout.TxnBackupDir(txnID), layout.TxnConflictDir(txnID)} {
		if err := fsys.RemoveAll(dir); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to remove %s", layout.Rel(dir))
		}
	}
	for _, dir := range []string{layout.BackupDir, layout.ConflictsDir, layout.HistoryDir, filepath.Dir(layout.StateFile)} {
		if err := filesystem.PruneEmptyParents(fsys, dir, layout.ProjectRoot); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to prune %s", layout.Rel(dir))
		}
	}
	return nil
}
