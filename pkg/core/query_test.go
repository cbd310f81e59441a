// pkg/core/query_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Memory filesystem
// PURPOSE: Test the read-only history, show and status operations

package core_test

import (
	"testing"

	"github.com/arthur-debert/portcfg/pkg/core"
	"github.com/arthur-debert/portcfg/pkg/errors"
	"github.com/arthur-debert/portcfg/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAndShow(t *testing.T) {
	f := newFixture(t, codexManifest)

	history, err := core.History(f.queryOptions())
	require.NoError(t, err)
	assert.Empty(t, history.Transactions)
	assert.Equal(t, ".codex/portable/state.json", history.StateFile)

	applied := f.apply()
	rolled, err := core.Rollback(f.rollbackOptions(""))
	require.NoError(t, err)

	history, err = core.History(f.queryOptions())
	require.NoError(t, err)
	require.Len(t, history.Transactions, 2)
	assert.Equal(t, applied.TxnID, history.Transactions[0].TxnID)
	assert.Equal(t, rolled.RollbackTxn, history.Transactions[1].TxnID)

	txn, err := core.Show(f.queryOptions(), rolled.RollbackTxn)
	require.NoError(t, err)
	assert.Equal(t, types.KindRollback, txn.Kind)
	assert.Equal(t, 3, txn.Removed)

	_, err = core.Show(f.queryOptions(), "missing")
	assert.Equal(t, errors.ErrTxnNotFound, errors.GetErrorCode(err))

	_, err = core.Show(f.queryOptions(), "")
	assert.Equal(t, errors.ErrInvalidInput, errors.GetErrorCode(err))
}

func TestStatusReportsDrift(t *testing.T) {
	f := newFixture(t, codexManifest)
	applied := f.apply()

	f.project("AGENTS.md", "edited by hand\n")
	require.NoError(t, f.fs.Remove(projectRoot+"/"+skillFile))

	report, err := core.Status(f.queryOptions())
	require.NoError(t, err)
	require.Len(t, report.Transactions, 1)

	status := report.Transactions[0]
	assert.Equal(t, applied.TxnID, status.TxnID)
	assert.Equal(t, "codex-ios", status.Profile)
	assert.Equal(t, 0, status.Conflicts)

	states := map[string]core.DriftState{}
	for _, file := range status.Files {
		states[file.Path] = file.State
	}
	assert.Equal(t, map[string]core.DriftState{
		"AGENTS.md":          core.DriftModified,
		".codex/config.toml": core.DriftIntact,
		skillFile:            core.DriftMissing,
	}, states)
}

func TestStatusSkipsRolledBackTransactions(t *testing.T) {
	f := newFixture(t, codexManifest)
	f.apply()
	_, err := core.Rollback(f.rollbackOptions(""))
	require.NoError(t, err)

	report, err := core.Status(f.queryOptions())
	require.NoError(t, err)
	assert.Empty(t, report.Transactions)
}
