package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/portcfg/pkg/core"
	"github.com/arthur-debert/portcfg/pkg/types"
)

// textRenderer writes plain, uncolored text.
type textRenderer struct {
	w io.Writer
}

func (r *textRenderer) RenderHistory(history *core.HistoryResult) error {
	if len(history.Transactions) == 0 {
		_, err := fmt.Fprintf(r.w, "No transactions recorded in %s\n", history.StateFile)
		return err
	}
	for _, txn := range history.Transactions {
		profile := txn.Profile
		if profile == "" {
			profile = "-"
		}
		_, err := fmt.Fprintf(r.w, "%s  %-8s  %s  %-12s  %s  (%s)\n",
			txn.TxnID, txn.Kind, txn.CreatedAt.Format(timeLayout), profile, counts(txn), state(txn))
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *textRenderer) RenderTransaction(txn *types.Transaction) error {
	_, err := io.WriteString(r.w, transactionMarkdown(txn))
	return err
}

func (r *textRenderer) RenderStatus(report *core.StatusReport) error {
	if len(report.Transactions) == 0 {
		_, err := fmt.Fprintln(r.w, "No open apply transactions")
		return err
	}
	for _, txn := range report.Transactions {
		if _, err := fmt.Fprintf(r.w, "%s  %s (%s)  %d conflicts\n", txn.TxnID, txn.Profile, txn.Namespace, txn.Conflicts); err != nil {
			return err
		}
		for _, file := range txn.Files {
			if _, err := fmt.Fprintf(r.w, "  %-9s %s\n", file.State, file.Path); err != nil {
				return err
			}
		}
	}
	return nil
}

// transactionMarkdown describes one transaction as a markdown document.
func transactionMarkdown(txn *types.Transaction) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Transaction %s\n\n", txn.TxnID)
	fmt.Fprintf(&b, "- **Kind:** %s\n", txn.Kind)
	fmt.Fprintf(&b, "- **Created:** %s\n", txn.CreatedAt.Format(timeLayout))
	fmt.Fprintf(&b, "- **State:** %s\n", state(txn))

	if txn.Kind == types.KindRollback {
		fmt.Fprintf(&b, "- **Restored:** %d\n", txn.Restored)
		fmt.Fprintf(&b, "- **Removed:** %d\n", txn.Removed)
		return b.String()
	}

	fmt.Fprintf(&b, "- **Profile:** %s\n", txn.Profile)
	fmt.Fprintf(&b, "- **Namespace:** %s\n", txn.Namespace)
	if txn.TemplateRoot != "" {
		fmt.Fprintf(&b, "- **Template root:** `%s`\n", txn.TemplateRoot)
	}
	if txn.RolledBackAt != nil {
		fmt.Fprintf(&b, "- **Rolled back at:** %s\n", txn.RolledBackAt.Format(timeLayout))
	}

	b.WriteString("\n## Changes\n\n")
	if len(txn.Changes) == 0 {
		b.WriteString("No files changed.\n")
	} else {
		b.WriteString("| Path | Operation | Action | Backup |\n|---|---|---|---|\n")
		for _, change := range txn.Changes {
			backup := "-"
			if change.Backup != nil {
				backup = "`" + *change.Backup + "`"
			}
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", change.Path, change.Operation, change.ActionID, backup)
		}
	}

	if len(txn.Conflicts) > 0 {
		b.WriteString("\n## Conflicts\n\n| Path | Reason | Suggested source |\n|---|---|---|\n")
		for _, conflict := range txn.Conflicts {
			fmt.Fprintf(&b, "| `%s` | %s | `%s` |\n", conflict.Path, conflict.Reason, conflict.SuggestedSource)
		}
	}
	return b.String()
}
