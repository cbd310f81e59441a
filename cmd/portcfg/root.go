package portcfg

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/arthur-debert/portcfg/internal/version"
	"github.com/arthur-debert/portcfg/pkg/cobrax/topics"
	"github.com/arthur-debert/portcfg/pkg/config"
	"github.com/arthur-debert/portcfg/pkg/errors"
	"github.com/arthur-debert/portcfg/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "portcfg",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			logging.LogCommand(cmd.Name(), args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)

	rootCmd.AddGroup(&cobra.Group{ID: "txn", Title: "TRANSACTIONS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "inspect", Title: "INSPECTION:"})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newRollbackCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newVersionCmd())

	var renderer topics.Renderer = &topics.PlainRenderer{}
	if stdoutIsTerminal() {
		renderer = topics.NewGlamourRenderer()
	}
	if _, err := topics.Install(rootCmd, topicsFS(), topics.Options{Renderer: renderer}); err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

// Run executes the CLI and returns the process exit code. Failures are
// reported as a single "portcfg <command> error: <message>" line.
func Run(args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return 0
	}

	name := "portcfg"
	if cmd != nil && cmd != rootCmd {
		name += " " + cmd.Name()
	}
	log.Error().Err(err).Str("command", name).Msg("Command failed")
	fmt.Fprintf(stderr, "%s error: %s\n", name, errorMessage(err))
	return 1
}

// errorMessage is the user-facing text of err, without the error code.
func errorMessage(err error) string {
	var pcErr *errors.PortableConfigError
	if !stderrors.As(err, &pcErr) {
		return err.Error()
	}
	msg := pcErr.Message
	if pcErr.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, pcErr.Wrapped)
	}
	if pcErr.Unwind != nil {
		msg = fmt.Sprintf("%s; unwind failed: %v", msg, pcErr.Unwind)
	}
	return msg
}

// loadConfig resolves the layered configuration for a project.
func loadConfig(projectRoot string) (*config.Config, error) {
	cfg, err := config.Load(projectRoot)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, MsgErrLoadConfig)
	}
	return cfg, nil
}

// printStatusLine writes one compact JSON object led by "status":"ok".
func printStatusLine(w io.Writer, fields interface{}) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode result")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
