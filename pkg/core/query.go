package core

import (
	stderrors "errors"
	"io/fs"

	"github.com/arthur-debert/portcfg/pkg/config"
	"github.com/arthur-debert/portcfg/pkg/errors"
	"github.com/arthur-debert/portcfg/pkg/internal/hashutil"
	"github.com/arthur-debert/portcfg/pkg/ledger"
	"github.com/arthur-debert/portcfg/pkg/paths"
	"github.com/arthur-debert/portcfg/pkg/types"
)

// QueryOptions locates the ledger read by History, Show and Status.
type QueryOptions struct {
	ProjectRoot  string
	TemplateRoot string
	Profile      string

	FS     types.FS
	Config *config.Config
}

// HistoryResult lists every recorded transaction, oldest first.
type HistoryResult struct {
	StateFile    string               `json:"state_file"`
	Transactions []*types.Transaction `json:"transactions"`
}

// DriftState compares a recorded change with the file on disk.
type DriftState string

const (
	// DriftIntact means the file still holds what the transaction wrote
	DriftIntact DriftState = "intact"
	// DriftModified means the file was changed afterwards
	DriftModified DriftState = "modified"
	// DriftMissing means the file is gone
	DriftMissing DriftState = "missing"
	// DriftUnknown is reported for changes recorded without a checksum
	DriftUnknown DriftState = "unknown"
)

// FileStatus is the drift state of one change.
type FileStatus struct {
	Path      string          `json:"path"`
	Operation types.Operation `json:"operation"`
	ActionID  string          `json:"action_id"`
	State     DriftState      `json:"state"`
}

// TransactionStatus is the drift report of one open apply.
type TransactionStatus struct {
	TxnID     string       `json:"txn_id"`
	Profile   string       `json:"profile,omitempty"`
	Namespace string       `json:"namespace,omitempty"`
	Files     []FileStatus `json:"files"`
	Conflicts int          `json:"conflicts"`
}

// StatusReport covers every apply that can still be rolled back.
type StatusReport struct {
	StateFile    string              `json:"state_file"`
	Transactions []TransactionStatus `json:"transactions"`
}

func (o QueryOptions) open() (*env, *paths.Layout, *ledger.Ledger, error) {
	e, err := newEnv(o.FS, o.Config, o.ProjectRoot, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	layout, err := e.layout(o.TemplateRoot, o.Profile)
	if err != nil {
		return nil, nil, nil, err
	}
	led, err := ledger.Load(e.fs, layout.StateFile)
	if err != nil {
		return nil, nil, nil, err
	}
	return e, layout, led, nil
}

// History returns the project's ledger.
func History(opts QueryOptions) (*HistoryResult, error) {
	_, layout, led, err := opts.open()
	if err != nil {
		return nil, err
	}
	return &HistoryResult{
		StateFile:    layout.Rel(layout.StateFile),
		Transactions: led.Transactions(),
	}, nil
}

// Show returns one transaction of any kind.
func Show(opts QueryOptions, txnID string) (*types.Transaction, error) {
	if txnID == "" {
		return nil, errors.New(errors.ErrInvalidInput, "transaction id is required")
	}
	_, _, led, err := opts.open()
	if err != nil {
		return nil, err
	}
	return led.Find(txnID)
}

// Status reports, for every open apply, whether the files it wrote still
// hold what it wrote.
func Status(opts QueryOptions) (*StatusReport, error) {
	e, layout, led, err := opts.open()
	if err != nil {
		return nil, err
	}

	report := &StatusReport{
		StateFile:    layout.Rel(layout.StateFile),
		Transactions: []TransactionStatus{},
	}
	for _, txn := range led.OpenApplies() {
		status := TransactionStatus{
			TxnID:     txn.TxnID,
			Profile:   txn.Profile,
			Namespace: txn.Namespace,
			Files:     make([]FileStatus, 0, len(txn.Changes)),
			Conflicts: len(txn.Conflicts),
		}
		for _, change := range txn.Changes {
			state, err := drift(e, change)
			if err != nil {
				return nil, err
			}
			status.Files = append(status.Files, FileStatus{
				Path:      change.Path,
				Operation: change.Operation,
				ActionID:  change.ActionID,
				State:     state,
			})
		}
		report.Transactions = append(report.Transactions, status)
	}
	return report, nil
}

func drift(e *env, change types.Change) (DriftState, error) {
	path, err := paths.Resolve(e.root, change.Path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrStateLoad, "invalid change path %q", change.Path)
	}
	sum, err := hashutil.FileChecksum(e.fs, path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return DriftMissing, nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", change.Path)
	}
	switch {
	case change.Checksum == "":
		return DriftUnknown, nil
	case change.Checksum == sum:
		return DriftIntact, nil
	default:
		return DriftModified, nil
	}
}
