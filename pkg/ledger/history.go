package ledger

import (
	"github.com/arthur-debert/portcfg/pkg/errors"
	"github.com/arthur-debert/portcfg/pkg/filesystem"
	"github.com/arthur-debert/portcfg/pkg/logging"
	"github.com/arthur-debert/portcfg/pkg/types"
)

// WriteHistory writes the immutable record of txn to path. An existing
// record is never replaced.
func WriteHistory(fsys types.FS, path string, txn *types.Transaction) error {
	exists, err := filesystem.Exists(fsys, path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrHistoryWrite, "failed to check history record %s", path)
	}
	if exists {
		return errors.Newf(errors.ErrHistoryWrite, "History record already exists: %s", path)
	}

	data, err := Marshal(txn)
	if err != nil {
		return errors.Wrapf(err, errors.ErrHistoryWrite, "failed to encode history record")
	}
	if err := filesystem.WriteFileAtomic(fsys, path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrHistoryWrite, "failed to write history record %s", path)
	}

	logger := logging.GetLogger("ledger")
	logger.Debug().
		Str("path", path).
		Str("txn_id", txn.TxnID).
		Str("kind", string(txn.Kind)).
		Msg("Wrote history record")
	return nil
}
