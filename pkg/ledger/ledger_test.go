// pkg/ledger/ledger_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Memory filesystem
// PURPOSE: Test ledger persistence, lookups, history records and
// transaction id allocation

package ledger_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/arthur-debert/portcfg/pkg/errors"
	"github.com/arthur-debert/portcfg/pkg/filesystem"
	"github.com/arthur-debert/portcfg/pkg/ledger"
	"github.com/arthur-debert/portcfg/pkg/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statePath = "/project/.codex/portable/state.json"

func TestLoadMissingIsEmpty(t *testing.T) {
	fs := filesystem.NewMemory()

	l, err := ledger.Load(fs, statePath)
	require.NoError(t, err)
	assert.Empty(t, l.Transactions())
	assert.Equal(t, statePath, l.Path())

	_, err = l.LatestOpenApply()
	assert.True(t, errors.IsErrorCode(err, errors.ErrNoRollbackCandidate))
}

func TestLoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{transactions"},
		{"wrong shape", `{"transactions": {"a": 1}}`},
		{"missing id", `{"transactions": [{"kind": "apply"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := filesystem.NewMemory()
			require.NoError(t, fs.MkdirAll("/project/.codex/portable", 0755))
			require.NoError(t, fs.WriteFile(statePath, []byte(tt.content), 0644))

			_, err := ledger.Load(fs, statePath)
			assert.True(t, errors.IsErrorCode(err, errors.ErrStateLoad), "got %v", err)
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	fs := filesystem.NewMemory()
	l, err := ledger.Load(fs, statePath)
	require.NoError(t, err)

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	l.Append(&types.Transaction{
		TxnID:     "20240102T030405000000Z",
		Kind:      types.KindApply,
		CreatedAt: created,
		Profile:   "codex-ios",
		Namespace: "super-dev",
		Changes: []types.Change{
			{Path: "AGENTS.md", Operation: types.OperationCreated, ActionID: "agents-block"},
		},
	})
	require.NoError(t, l.Save())

	data, err := fs.ReadFile(statePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "{\n  \"transactions\": [\n")
	assert.Contains(t, string(data), `"created_at": "2024-01-02T03:04:05Z"`)
	assert.Contains(t, string(data), `"backup": null`)
	assert.Equal(t, byte('\n'), data[len(data)-1])

	reloaded, err := ledger.Load(fs, statePath)
	require.NoError(t, err)
	require.Len(t, reloaded.Transactions(), 1)
	txn := reloaded.Transactions()[0]
	assert.Equal(t, "codex-ios", txn.Profile)
	assert.True(t, txn.CreatedAt.Equal(created))
	assert.Nil(t, txn.Changes[0].Backup)
}

func TestLookups(t *testing.T) {
	fs := filesystem.NewMemory()
	l, err := ledger.Load(fs, statePath)
	require.NoError(t, err)

	l.Append(&types.Transaction{TxnID: "1", Kind: types.KindApply})
	l.Append(&types.Transaction{TxnID: "2", Kind: types.KindApply})
	l.Append(&types.Transaction{TxnID: "3", Kind: types.KindRollback, RollbackOf: "2"})
	l.Transactions()[1].RolledBack = true

	latest, err := l.LatestOpenApply()
	require.NoError(t, err)
	assert.Equal(t, "1", latest.TxnID)

	open := l.OpenApplies()
	require.Len(t, open, 1)
	assert.Equal(t, "1", open[0].TxnID)

	_, err = l.FindApply("3")
	assert.True(t, errors.IsErrorCode(err, errors.ErrTxnNotFound), "rollbacks are not apply transactions")

	txn, err := l.Find("3")
	require.NoError(t, err)
	assert.Equal(t, types.KindRollback, txn.Kind)

	assert.True(t, l.Has("2"))
	assert.False(t, l.Has("9"))
}

func TestWriteHistoryRefusesOverwrite(t *testing.T) {
	fs := filesystem.NewMemory()
	path := "/project/.codex/portable/history/apply-1.json"
	txn := &types.Transaction{TxnID: "1", Kind: types.KindApply}

	require.NoError(t, ledger.WriteHistory(fs, path, txn))
	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"txn_id": "1"`)

	err = ledger.WriteHistory(fs, path, txn)
	assert.True(t, errors.IsErrorCode(err, errors.ErrHistoryWrite))
}

func TestTxnIDFormat(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 123456789, time.UTC)
	id := ledger.FormatTxnID(now)
	assert.Equal(t, "20240102T030405123456Z", id)

	parsed, err := ledger.ParseTxnID(id)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(now.Truncate(time.Microsecond)))
}

func TestNewTxnIDIsStrictlyIncreasing(t *testing.T) {
	fs := filesystem.NewMemory()
	l, err := ledger.Load(fs, statePath)
	require.NoError(t, err)

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	first := ledger.NewTxnID(now, l)
	assert.Equal(t, "20240102T030405000000Z", first)
	l.Append(&types.Transaction{TxnID: first, Kind: types.KindApply})

	second := ledger.NewTxnID(now, l)
	assert.Equal(t, "20240102T030405000001Z", second)
	l.Append(&types.Transaction{TxnID: second, Kind: types.KindApply})

	earlier := ledger.NewTxnID(now.Add(-time.Hour), l)
	assert.Equal(t, "20240102T030405000002Z", earlier, "clock going backwards still sorts last")

	later := ledger.NewTxnID(now.Add(time.Second), l)
	assert.Equal(t, "20240102T030406000000Z", later)
}

func TestLedgerLogsComponentEvents(t *testing.T) {
	var buf bytes.Buffer
	origLogger, origLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.Logger = origLogger
		zerolog.SetGlobalLevel(origLevel)
	})

	fs := filesystem.NewMemory()
	l, err := ledger.Load(fs, statePath)
	require.NoError(t, err)
	txn := &types.Transaction{TxnID: "20240501T120000000000Z", Kind: types.KindApply, CreatedAt: time.Now().UTC()}
	l.Append(txn)
	require.NoError(t, l.Save())
	require.NoError(t, ledger.WriteHistory(fs, "/project/.codex/portable/history/apply-"+txn.TxnID+".json", txn))
	_, err = ledger.Load(fs, statePath)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"component":"ledger"`)
	assert.Contains(t, out, "Loaded ledger")
	assert.Contains(t, out, "Saved ledger")
	assert.Contains(t, out, "Wrote history record")
}
