package ui

import (
	"fmt"
	"io"

	"github.com/arthur-debert/portcfg/pkg/core"
	"github.com/arthur-debert/portcfg/pkg/types"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"
)

// terminalRenderer adds color, tables and rendered markdown.
type terminalRenderer struct {
	w      io.Writer
	styles styles
}

type styles struct {
	header   lipgloss.Style
	muted    lipgloss.Style
	intact   lipgloss.Style
	modified lipgloss.Style
	missing  lipgloss.Style
}

func newTerminalRenderer(w io.Writer) *terminalRenderer {
	r := lipgloss.NewRenderer(w)
	return &terminalRenderer{
		w: w,
		styles: styles{
			header:   r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#1A56DB", Dark: "#76A9FA"}),
			muted:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}),
			intact:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}),
			modified: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}),
			missing:  r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}),
		},
	}
}

func (r *terminalRenderer) RenderHistory(history *core.HistoryResult) error {
	if len(history.Transactions) == 0 {
		_, err := fmt.Fprintln(r.w, r.styles.muted.Render("No transactions recorded in "+history.StateFile))
		return err
	}

	data := pterm.TableData{{"Transaction", "Kind", "Created", "Profile", "Summary", "State"}}
	for _, txn := range history.Transactions {
		data = append(data, []string{
			txn.TxnID,
			string(txn.Kind),
			txn.CreatedAt.Format(timeLayout),
			txn.Profile,
			counts(txn),
			r.txnState(txn),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.w, table)
	return err
}

func (r *terminalRenderer) RenderTransaction(txn *types.Transaction) error {
	markdown := transactionMarkdown(txn)
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		_, err = io.WriteString(r.w, markdown)
		return err
	}
	rendered, err := renderer.Render(markdown)
	if err != nil {
		rendered = markdown
	}
	_, err = io.WriteString(r.w, rendered)
	return err
}

func (r *terminalRenderer) RenderStatus(report *core.StatusReport) error {
	if len(report.Transactions) == 0 {
		_, err := fmt.Fprintln(r.w, r.styles.muted.Render("No open apply transactions"))
		return err
	}
	for _, txn := range report.Transactions {
		title := fmt.Sprintf("%s  %s (%s)", txn.TxnID, txn.Profile, txn.Namespace)
		if _, err := fmt.Fprintln(r.w, r.styles.header.Render(title)); err != nil {
			return err
		}
		for _, file := range txn.Files {
			if _, err := fmt.Fprintf(r.w, "  %s %s\n", r.drift(file.State), file.Path); err != nil {
				return err
			}
		}
		if txn.Conflicts > 0 {
			line := fmt.Sprintf("  %d unresolved conflicts", txn.Conflicts)
			if _, err := fmt.Fprintln(r.w, r.styles.modified.Render(line)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *terminalRenderer) txnState(txn *types.Transaction) string {
	s := state(txn)
	if txn.IsOpenApply() {
		return r.styles.intact.Render(s)
	}
	return r.styles.muted.Render(s)
}

func (r *terminalRenderer) drift(s core.DriftState) string {
	label := fmt.Sprintf("%-9s", s)
	switch s {
	case core.DriftIntact:
		return r.styles.intact.Render(label)
	case core.DriftModified:
		return r.styles.modified.Render(label)
	case core.DriftMissing:
		return r.styles.missing.Render(label)
	default:
		return r.styles.muted.Render(label)
	}
}
