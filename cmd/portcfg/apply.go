package portcfg

import (
	"github.com/arthur-debert/portcfg/pkg/core"
	"github.com/spf13/cobra"
)

// applyLine is the success output of apply.
type applyLine struct {
	Status      string `json:"status"`
	TxnID       string `json:"txn_id"`
	Changes     int    `json:"changes"`
	Conflicts   int    `json:"conflicts"`
	StateFile   string `json:"state_file"`
	HistoryFile string `json:"history_file"`
	DryRun      bool   `json:"dry_run,omitempty"`
}

func newApplyCmd() *cobra.Command {
	var (
		projectRoot  string
		templateRoot string
		profile      string
		namespace    string
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:     "apply",
		Short:   MsgApplyShort,
		Long:    MsgApplyLong,
		GroupID: "txn",
		Args:    cobra.NoArgs,
		Example: `  portcfg apply --template-root ~/src/agent-templates
  portcfg apply --project-root ./app --profile codex-ios --namespace super-dev --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(projectRoot)
			if err != nil {
				return err
			}
			if templateRoot == "" {
				templateRoot = cfg.Defaults.TemplateRoot
			}
			if profile == "" {
				profile = cfg.Defaults.Profile
			}
			if namespace == "" {
				namespace = cfg.Defaults.Namespace
			}

			result, err := core.Apply(core.ApplyOptions{
				ProjectRoot:  projectRoot,
				TemplateRoot: templateRoot,
				Profile:      profile,
				Namespace:    namespace,
				DryRun:       dryRun,
				Config:       cfg,
			})
			if err != nil {
				return err
			}

			return printStatusLine(cmd.OutOrStdout(), applyLine{
				Status:      "ok",
				TxnID:       result.TxnID,
				Changes:     len(result.Changes),
				Conflicts:   len(result.Conflicts),
				StateFile:   result.StateFile,
				HistoryFile: result.HistoryFile,
				DryRun:      result.DryRun,
			})
		},
	}

	cmd.Flags().StringVar(&projectRoot, "project-root", ".", MsgFlagProjectRoot)
	cmd.Flags().StringVar(&templateRoot, "template-root", "", MsgFlagTemplateRoot)
	cmd.Flags().StringVar(&profile, "profile", "", MsgFlagProfile)
	cmd.Flags().StringVar(&namespace, "namespace", "", MsgFlagNamespace)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)

	return cmd
}
