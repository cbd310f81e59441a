// Package ui renders engine results for people and for scripts.
//
// Every renderer handles the same three results: the transaction history,
// a single transaction and the drift status report. JSON output is stable
// and meant for tooling; text output is plain and greppable; terminal
// output adds color, tables and markdown rendering.
package ui

import (
	"fmt"
	"io"

	"github.com/arthur-debert/portcfg/pkg/core"
	"github.com/arthur-debert/portcfg/pkg/types"
)

// Renderer writes engine results in one output format.
type Renderer interface {
	RenderHistory(history *core.HistoryResult) error
	RenderTransaction(txn *types.Transaction) error
	RenderStatus(report *core.StatusReport) error
}

// NewRenderer creates a renderer for format writing to w. FormatAuto is
// resolved with DetectFormat.
func NewRenderer(format Format, w io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		return NewRenderer(DetectFormat(w), w)
	case FormatTerminal:
		return newTerminalRenderer(w), nil
	case FormatText:
		return &textRenderer{w: w}, nil
	case FormatJSON:
		return newJSONRenderer(w), nil
	default:
		return nil, fmt.Errorf("unknown format: %v", format)
	}
}

// state describes where a transaction stands.
func state(txn *types.Transaction) string {
	switch {
	case txn.Kind == types.KindRollback:
		return "rollback of " + txn.RollbackOf
	case txn.RolledBack:
		return "rolled back"
	default:
		return "open"
	}
}

// counts summarizes what a transaction did.
func counts(txn *types.Transaction) string {
	if txn.Kind == types.KindRollback {
		return fmt.Sprintf("restored %d, removed %d", txn.Restored, txn.Removed)
	}
	return fmt.Sprintf("%d changes, %d conflicts", len(txn.Changes), len(txn.Conflicts))
}

const timeLayout = "2006-01-02 15:04:05Z07:00"
