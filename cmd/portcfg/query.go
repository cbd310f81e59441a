package portcfg

import (
	"github.com/arthur-debert/portcfg/pkg/config"
	"github.com/arthur-debert/portcfg/pkg/core"
	"github.com/arthur-debert/portcfg/pkg/ui"
	"github.com/spf13/cobra"
)

// stateFlags select a profile whose own state locations replace the
// configured ones. Without --profile the configured locations are used.
type stateFlags struct {
	template string
	profile  string
}

func (s *stateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.template, "template-root", "", MsgFlagTemplateRoot)
	cmd.Flags().StringVar(&s.profile, "profile", "", MsgFlagStateProfile)
}

func (s *stateFlags) templateRoot(cfg *config.Config) string {
	if s.profile == "" {
		return ""
	}
	if s.template == "" {
		return cfg.Defaults.TemplateRoot
	}
	return s.template
}

// queryFlags are shared by the read-only commands.
type queryFlags struct {
	projectRoot string
	format      string
	state       stateFlags
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&q.projectRoot, "project-root", ".", MsgFlagProjectRoot)
	cmd.Flags().StringVar(&q.format, "format", "auto", MsgFlagFormat)
	q.state.register(cmd)
}

func (q *queryFlags) prepare(cmd *cobra.Command) (core.QueryOptions, ui.Renderer, error) {
	format, err := ui.ParseFormat(q.format)
	if err != nil {
		return core.QueryOptions{}, nil, err
	}
	renderer, err := ui.NewRenderer(format, cmd.OutOrStdout())
	if err != nil {
		return core.QueryOptions{}, nil, err
	}
	cfg, err := loadConfig(q.projectRoot)
	if err != nil {
		return core.QueryOptions{}, nil, err
	}
	return core.QueryOptions{
		ProjectRoot:  q.projectRoot,
		TemplateRoot: q.state.templateRoot(cfg),
		Profile:      q.state.profile,
		Config:       cfg,
	}, renderer, nil
}

func newHistoryCmd() *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:     "history",
		Short:   MsgHistoryShort,
		GroupID: "inspect",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, renderer, err := flags.prepare(cmd)
			if err != nil {
				return err
			}
			history, err := core.History(opts)
			if err != nil {
				return err
			}
			return renderer.RenderHistory(history)
		},
	}
	flags.register(cmd)
	return cmd
}

func newShowCmd() *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:     "show <txn-id>",
		Short:   MsgShowShort,
		GroupID: "inspect",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, renderer, err := flags.prepare(cmd)
			if err != nil {
				return err
			}
			txn, err := core.Show(opts, args[0])
			if err != nil {
				return err
			}
			return renderer.RenderTransaction(txn)
		},
	}
	flags.register(cmd)
	return cmd
}

func newStatusCmd() *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		GroupID: "inspect",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, renderer, err := flags.prepare(cmd)
			if err != nil {
				return err
			}
			report, err := core.Status(opts)
			if err != nil {
				return err
			}
			return renderer.RenderStatus(report)
		},
	}
	flags.register(cmd)
	return cmd
}
