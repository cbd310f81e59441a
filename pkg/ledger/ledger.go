package ledger

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io/fs"

	"github.com/arthur-debert/portcfg/pkg/errors"
	"github.com/arthur-debert/portcfg/pkg/filesystem"
	"github.com/arthur-debert/portcfg/pkg/logging"
	"github.com/arthur-debert/portcfg/pkg/types"
)

// document is the on-disk shape of the ledger.
type document struct {
	Transactions []*types.Transaction `json:"transactions"`
}

// Ledger is the in-memory view of one state file.
type Ledger struct {
	fs   types.FS
	path string
	doc  document
}

// Load reads the ledger at path. A missing file is an empty ledger; a file
// that does not decode fails with STATE_LOAD.
func Load(fsys types.FS, path string) (*Ledger, error) {
	l := &Ledger{fs: fsys, path: path}

	data, err := fsys.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			l.doc.Transactions = []*types.Transaction{}
			return l, nil
		}
		return nil, errors.Wrapf(err, errors.ErrStateLoad, "failed to read state file %s", path)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&l.doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStateLoad, "corrupt state file %s", path)
	}
	if l.doc.Transactions == nil {
		l.doc.Transactions = []*types.Transaction{}
	}
	for i, txn := range l.doc.Transactions {
		if txn == nil || txn.TxnID == "" {
			return nil, errors.Newf(errors.ErrStateLoad, "corrupt state file %s: transaction %d has no id", path, i)
		}
	}

	logger := logging.GetLogger("ledger")
	logger.Debug().
		Str("path", path).
		Int("transactions", len(l.doc.Transactions)).
		Msg("Loaded ledger")
	return l, nil
}

// Path is the state file location.
func (l *Ledger) Path() string {
	return l.path
}

// Save writes the ledger atomically.
func (l *Ledger) Save() error {
	data, err := Marshal(l.doc)
	if err != nil {
		return errors.Wrapf(err, errors.ErrStateSave, "failed to encode state file")
	}
	if err := filesystem.WriteFileAtomic(l.fs, l.path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrStateSave, "failed to write state file %s", l.path)
	}
	logger := logging.GetLogger("ledger")
	logger.Debug().
		Str("path", l.path).
		Int("transactions", len(l.doc.Transactions)).
		Msg("Saved ledger")
	return nil
}

// Append adds txn at the end of the ledger. It is not persisted until
// Save.
func (l *Ledger) Append(txn *types.Transaction) {
	l.doc.Transactions = append(l.doc.Transactions, txn)
}

// Transactions returns every transaction, oldest first.
func (l *Ledger) Transactions() []*types.Transaction {
	return l.doc.Transactions
}

// Find returns the transaction with id, of any kind.
func (l *Ledger) Find(id string) (*types.Transaction, error) {
	for _, txn := range l.doc.Transactions {
		if txn.TxnID == id {
			return txn, nil
		}
	}
	return nil, errors.Newf(errors.ErrTxnNotFound, "Transaction not found: %s", id)
}

// FindApply returns the apply transaction with id.
func (l *Ledger) FindApply(id string) (*types.Transaction, error) {
	for _, txn := range l.doc.Transactions {
		if txn.TxnID == id && txn.Kind == types.KindApply {
			return txn, nil
		}
	}
	return nil, errors.Newf(errors.ErrTxnNotFound, "Apply transaction not found: %s", id)
}

// LatestOpenApply returns the most recent apply that has not been rolled
// back.
func (l *Ledger) LatestOpenApply() (*types.Transaction, error) {
	for i := len(l.doc.Transactions) - 1; i >= 0; i-- {
		if txn := l.doc.Transactions[i]; txn.IsOpenApply() {
			return txn, nil
		}
	}
	return nil, errors.New(errors.ErrNoRollbackCandidate, "No apply transaction available for rollback")
}

// OpenApplies returns the applies that have not been rolled back, oldest
// first.
func (l *Ledger) OpenApplies() []*types.Transaction {
	var open []*types.Transaction
	for _, txn := range l.doc.Transactions {
		if txn.IsOpenApply() {
			open = append(open, txn)
		}
	}
	return open
}

// Has reports whether a transaction with id exists.
func (l *Ledger) Has(id string) bool {
	_, err := l.Find(id)
	return err == nil
}

// Marshal renders v the way every state document is written: two-space
// indent with a trailing newline.
func Marshal(v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
