package core

import (
	"time"

	"github.com/arthur-debert/portcfg/pkg/backup"
	"github.com/arthur-debert/portcfg/pkg/config"
	"github.com/arthur-debert/portcfg/pkg/errors"
	"github.com/arthur-debert/portcfg/pkg/ledger"
	"github.com/arthur-debert/portcfg/pkg/logging"
	"github.com/arthur-debert/portcfg/pkg/types"
)

// RollbackOptions contains the inputs of one rollback. TemplateRoot and
// Profile are only needed when the profile keeps its state somewhere other
// than the configured defaults.
type RollbackOptions struct {
	ProjectRoot string
	// TxnID selects the apply to undo; empty means the latest open one
	TxnID        string
	TemplateRoot string
	Profile      string

	FS     types.FS
	Config *config.Config
	Now    func() time.Time
}

// RollbackResult describes a committed rollback.
type RollbackResult struct {
	RollbackTxn string
	RollbackOf  string
	Restored    int
	Removed     int
	// StateFile is relative to the project root
	StateFile   string
	HistoryFile string
}

// Rollback undoes one apply transaction.
func Rollback(opts RollbackOptions) (*RollbackResult, error) {
	logger := logging.GetLogger("core.rollback")

	e, err := newEnv(opts.FS, opts.Config, opts.ProjectRoot, opts.Now)
	if err != nil {
		return nil, err
	}
	layout, err := e.layout(opts.TemplateRoot, opts.Profile)
	if err != nil {
		return nil, err
	}
	led, err := ledger.Load(e.fs, layout.StateFile)
	if err != nil {
		return nil, err
	}

	var target *types.Transaction
	if opts.TxnID != "" {
		target, err = led.FindApply(opts.TxnID)
		if err != nil {
			return nil, errors.Newf(errors.ErrTxnNotFound, "Transaction not found: %s", opts.TxnID)
		}
		if target.RolledBack {
			return nil, errors.Newf(errors.ErrAlreadyRolledBack, "Transaction already rolled back: %s", opts.TxnID)
		}
	} else {
		target, err = led.LatestOpenApply()
		if err != nil {
			return nil, errors.New(errors.ErrNoRollbackCandidate, "No rollback candidate found")
		}
	}

	logger.Info().
		Str("txnId", target.TxnID).
		Int("changes", len(target.Changes)).
		Msg("Starting rollback")

	restored, removed, err := backup.Restore(e.fs, e.root, target.Changes)
	if err != nil {
		return nil, err
	}

	now := e.now()
	rolledBackAt := timestamp(now)
	target.RolledBack = true
	target.RolledBackAt = &rolledBackAt

	event := &types.Transaction{
		TxnID:      ledger.NewTxnID(now, led),
		Kind:       types.KindRollback,
		RollbackOf: target.TxnID,
		CreatedAt:  rolledBackAt,
		Restored:   restored,
		Removed:    removed,
	}
	led.Append(event)
	if err := led.Save(); err != nil {
		return nil, err
	}

	historyFile := layout.HistoryFile(types.KindRollback, event.TxnID)
	if err := ledger.WriteHistory(e.fs, historyFile, event); err != nil {
		return nil, err
	}

	logger.Info().
		Str("txnId", event.TxnID).
		Str("rollbackOf", target.TxnID).
		Int("restored", restored).
		Int("removed", removed).
		Msg("Rollback committed")

	return &RollbackResult{
		RollbackTxn: event.TxnID,
		RollbackOf:  target.TxnID,
		Restored:    restored,
		Removed:     removed,
		StateFile:   layout.Rel(layout.StateFile),
		HistoryFile: layout.Rel(historyFile),
	}, nil
}
