package portcfg

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort     = "Install and roll back portable agent configuration"
	MsgApplyShort    = "Apply a profile to a project as one transaction"
	MsgRollbackShort = "Roll back an apply transaction"
	MsgHistoryShort  = "List the transactions recorded for a project"
	MsgShowShort     = "Show one recorded transaction"
	MsgStatusShort   = "Report drift of files written by open applies"
	MsgVersionShort  = "Print version information"

	// Flag descriptions
	MsgFlagVerbose      = "Increase verbosity (-v info, -vv debug, -vvv trace)"
	MsgFlagProjectRoot  = "Project directory to change"
	MsgFlagTemplateRoot = "Template root holding profiles, manifests and sources (default from config)"
	MsgFlagProfile      = "Profile to apply (default from config)"
	MsgFlagStateProfile = "Profile whose state locations to use"
	MsgFlagNamespace    = "Namespace substituted into targets (default from config)"
	MsgFlagDryRun       = "Run against an in-memory copy and leave the disk untouched"
	MsgFlagTxnID        = "Transaction to roll back (default: latest open apply)"
	MsgFlagFormat       = "Output format: auto, term, text or json"

	// Error messages
	MsgErrNoCommand  = "no command specified"
	MsgErrLoadConfig = "failed to load configuration"

	// Version output
	MsgVersionFormat = "portcfg %s (commit %s, built %s)\n"
)

// Long messages
const (
	MsgRootLong = `portcfg installs profile-driven configuration (agent instructions,
tool config files and skill directories) into a project.

Every apply is a transaction: files it changes are backed up first and the
transaction is recorded in a ledger inside the project. A failed apply is
undone automatically; a committed one can be rolled back later.`

	MsgApplyLong = `Apply runs every action of the profile's manifest in order.

Existing user content is preserved: managed blocks are replaced in place,
structured config files only gain missing keys and skill directories only
gain new or changed files. Files that cannot be merged are reported as
conflicts and left untouched.

On success a single JSON line describing the transaction is printed.`

	MsgRollbackLong = `Rollback restores every file changed by an apply transaction to its
state before the apply. Files the apply created are removed.

Without --txn-id the most recent apply that has not been rolled back is
selected.`
)

// MsgUsageTemplate is the custom usage template
const MsgUsageTemplate = `{{boldUpper "usage"}}:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

{{boldUpper "aliases"}}:
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

{{boldUpper "examples"}}:
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

{{boldUpper "commands"}}:{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{boldUpper "flags"}}:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

{{boldUpper "global flags"}}:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}
`
