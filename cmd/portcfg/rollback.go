package portcfg

import (
	"github.com/arthur-debert/portcfg/pkg/core"
	"github.com/spf13/cobra"
)

// rollbackLine is the success output of rollback.
type rollbackLine struct {
	Status      string `json:"status"`
	RollbackTxn string `json:"rollback_txn"`
	RollbackOf  string `json:"rollback_of"`
	Restored    int    `json:"restored"`
	Removed     int    `json:"removed"`
	StateFile   string `json:"state_file"`
	HistoryFile string `json:"history_file"`
}

func newRollbackCmd() *cobra.Command {
	var (
		projectRoot string
		txnID       string
		state       stateFlags
	)

	cmd := &cobra.Command{
		Use:     "rollback",
		Short:   MsgRollbackShort,
		Long:    MsgRollbackLong,
		GroupID: "txn",
		Args:    cobra.NoArgs,
		Example: `  portcfg rollback
  portcfg rollback --txn-id 20240501T120000000000Z`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(projectRoot)
			if err != nil {
				return err
			}

			result, err := core.Rollback(core.RollbackOptions{
				ProjectRoot:  projectRoot,
				TxnID:        txnID,
				TemplateRoot: state.templateRoot(cfg),
				Profile:      state.profile,
				Config:       cfg,
			})
			if err != nil {
				return err
			}

			return printStatusLine(cmd.OutOrStdout(), rollbackLine{
				Status:      "ok",
				RollbackTxn: result.RollbackTxn,
				RollbackOf:  result.RollbackOf,
				Restored:    result.Restored,
				Removed:     result.Removed,
				StateFile:   result.StateFile,
				HistoryFile: result.HistoryFile,
			})
		},
	}

	cmd.Flags().StringVar(&projectRoot, "project-root", ".", MsgFlagProjectRoot)
	cmd.Flags().StringVar(&txnID, "txn-id", "", MsgFlagTxnID)
	state.register(cmd)

	return cmd
}
