// pkg/ui/ui_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test format parsing and the json, text and terminal renderers

package ui_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/arthur-debert/portcfg/pkg/core"
	"github.com/arthur-debert/portcfg/pkg/errors"
	"github.com/arthur-debert/portcfg/pkg/types"
	"github.com/arthur-debert/portcfg/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  ui.Format
	}{
		{"", ui.FormatAuto},
		{"auto", ui.FormatAuto},
		{"term", ui.FormatTerminal},
		{"terminal", ui.FormatTerminal},
		{"text", ui.FormatText},
		{"PLAIN", ui.FormatText},
		{"json", ui.FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ui.ParseFormat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ui.ParseFormat("xml")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "term", ui.FormatTerminal.String())
	assert.Equal(t, "unknown", ui.Format(42).String())
}

func TestDetectFormatForNonTerminal(t *testing.T) {
	assert.Equal(t, ui.FormatText, ui.DetectFormat(&bytes.Buffer{}))
}

func sampleHistory() *core.HistoryResult {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	backup := ".codex/portable/backups/20240501T120000000000Z/files/AGENTS.md"
	return &core.HistoryResult{
		StateFile: ".codex/portable/state.json",
		Transactions: []*types.Transaction{
			{
				TxnID:      "20240501T120000000000Z",
				Kind:       types.KindApply,
				CreatedAt:  created,
				Profile:    "codex-ios",
				Namespace:  "super-dev",
				RolledBack: true,
				Changes: []types.Change{
					{Path: "AGENTS.md", Operation: types.OperationUpdated, Backup: &backup, ActionID: "agents-block"},
				},
				Conflicts: []types.Conflict{
					{Path: ".codex/config.toml", Reason: types.ReasonTOMLInvalid, SuggestedSource: "x", ActionID: "codex-config"},
				},
			},
			{
				TxnID:      "20240501T120000000001Z",
				Kind:       types.KindRollback,
				CreatedAt:  created,
				RollbackOf: "20240501T120000000000Z",
				Restored:   1,
			},
		},
	}
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatJSON, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderHistory(sampleHistory()))

	var decoded struct {
		StateFile    string                   `json:"state_file"`
		Transactions []map[string]interface{} `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, ".codex/portable/state.json", decoded.StateFile)
	require.Len(t, decoded.Transactions, 2)
	assert.Equal(t, "rollback", decoded.Transactions[1]["kind"])
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatAuto, &buf)
	require.NoError(t, err)

	history := sampleHistory()
	require.NoError(t, r.RenderHistory(history))
	out := buf.String()
	assert.Contains(t, out, "20240501T120000000000Z  apply")
	assert.Contains(t, out, "1 changes, 1 conflicts  (rolled back)")
	assert.Contains(t, out, "restored 1, removed 0  (rollback of 20240501T120000000000Z)")

	buf.Reset()
	require.NoError(t, r.RenderTransaction(history.Transactions[0]))
	out = buf.String()
	assert.Contains(t, out, "# Transaction 20240501T120000000000Z")
	assert.Contains(t, out, "| `AGENTS.md` | updated | agents-block |")
	assert.Contains(t, out, "## Conflicts")

	buf.Reset()
	require.NoError(t, r.RenderStatus(&core.StatusReport{
		Transactions: []core.TransactionStatus{{
			TxnID:     "20240501T120000000000Z",
			Profile:   "codex-ios",
			Namespace: "super-dev",
			Files: []core.FileStatus{
				{Path: "AGENTS.md", State: core.DriftModified},
			},
		}},
	}))
	assert.Contains(t, buf.String(), "  modified  AGENTS.md")
}

func TestTextRendererEmpty(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatText, &buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderHistory(&core.HistoryResult{StateFile: "state.json"}))
	require.NoError(t, r.RenderStatus(&core.StatusReport{}))
	assert.Equal(t, "No transactions recorded in state.json\nNo open apply transactions\n", buf.String())
}

func TestTerminalRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := ui.NewRenderer(ui.FormatTerminal, &buf)
	require.NoError(t, err)

	history := sampleHistory()
	require.NoError(t, r.RenderHistory(history))
	assert.Contains(t, buf.String(), "20240501T120000000001Z")

	buf.Reset()
	require.NoError(t, r.RenderTransaction(history.Transactions[1]))
	assert.NotEmpty(t, buf.String())

	buf.Reset()
	require.NoError(t, r.RenderStatus(&core.StatusReport{
		Transactions: []core.TransactionStatus{{
			TxnID:     "20240501T120000000000Z",
			Conflicts: 2,
			Files:     []core.FileStatus{{Path: "AGENTS.md", State: core.DriftMissing}},
		}},
	}))
	assert.Contains(t, buf.String(), "AGENTS.md")
	assert.Contains(t, buf.String(), "2 unresolved conflicts")
}
