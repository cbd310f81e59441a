package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/arthur-debert/portcfg/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseStrategy(t *testing.T) {
	for _, s := range types.Strategies {
		got, err := types.ParseStrategy(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := types.ParseStrategy("overwrite_everything")
	require.Error(t, err)
	var unknown *types.UnknownStrategyError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "overwrite_everything", unknown.Name)
	assert.Contains(t, err.Error(), "append_block")
}

func TestActionDecodeRejectsUnknownStrategy(t *testing.T) {
	var action types.Action
	err := yaml.Unmarshal([]byte(`{"id": "a", "src": "x", "target": "t", "strategy": "replace"}`), &action)
	require.Error(t, err)
	var unknown *types.UnknownStrategyError
	assert.ErrorAs(t, err, &unknown)

	err = yaml.Unmarshal([]byte("id: a\nsrc: x\ntarget: t\nstrategy: merge_toml_keys\n"), &action)
	require.NoError(t, err)
	assert.Equal(t, types.StrategyMergeTOMLKeys, action.Strategy)
}

func TestChangeJSONKeepsNullBackup(t *testing.T) {
	backup := ".codex/portable/backups/1/files/AGENTS.md"
	data, err := json.Marshal([]types.Change{
		{Path: "a.md", Operation: types.OperationCreated, ActionID: "a"},
		{Path: "AGENTS.md", Operation: types.OperationUpdated, Backup: &backup, ActionID: "b"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"path": "a.md", "operation": "created", "backup": null, "action_id": "a"},
		{"path": "AGENTS.md", "operation": "updated", "backup": ".codex/portable/backups/1/files/AGENTS.md", "action_id": "b"}
	]`, string(data))
}

func TestIsOpenApply(t *testing.T) {
	now := time.Now()
	assert.True(t, (&types.Transaction{Kind: types.KindApply}).IsOpenApply())
	assert.False(t, (&types.Transaction{Kind: types.KindApply, RolledBack: true, RolledBackAt: &now}).IsOpenApply())
	assert.False(t, (&types.Transaction{Kind: types.KindRollback}).IsOpenApply())
}

func TestTransactionJSONShapes(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	data, err := json.Marshal(&types.Transaction{
		TxnID:     "20240102T030405000000Z",
		Kind:      types.KindApply,
		CreatedAt: created,
		Profile:   "codex-ios",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"txn_id": "20240102T030405000000Z",
		"kind": "apply",
		"created_at": "2024-01-02T03:04:05Z",
		"profile": "codex-ios",
		"rolled_back": false,
		"changes": [],
		"conflicts": []
	}`, string(data))

	data, err = json.Marshal(types.Transaction{
		TxnID:      "20240102T030406000000Z",
		Kind:       types.KindRollback,
		CreatedAt:  created,
		RollbackOf: "20240102T030405000000Z",
		Restored:   0,
		Removed:    2,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"txn_id": "20240102T030406000000Z",
		"kind": "rollback",
		"rollback_of": "20240102T030405000000Z",
		"created_at": "2024-01-02T03:04:05Z",
		"restored": 0,
		"removed": 2
	}`, string(data))

	var back types.Transaction
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, types.KindRollback, back.Kind)
	assert.Equal(t, 2, back.Removed)
}
