package cmd

import (
	"errors"
	"os"

	"mdb/internal/cli"
	"mdb/internal/session"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates authentication is required but not available.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the OAuth flow or a credential check failed.
	ExitCodeAuthFailed = 3
)

// version is injected by main via SetVersion.
var version = "dev"

// runtimeOptions are appended to every runtime built by a command. Tests use
// it to point commands at fake backends and browsers.
var runtimeOptions []cli.RuntimeOption

// rootCmd represents the base command for the mdb application.
var rootCmd = newRootCmd()

// newRootCmd builds the complete command tree. Each call returns a fresh
// tree with its own flag state.
func newRootCmd() *cobra.Command {
	flags := &cli.CommandFlags{}

	cmd := &cobra.Command{
		Use:   "mdb",
		Short: "Command-line client for the MDB community forum",
		Long: `mdb signs you in to an MDB backend with Google or GitHub and lets you
browse and post to its forum from the terminal.

Configuration is read from ~/.config/mdb/config.yaml; MDB_BACKEND_URL and
MDB_TOKEN_STORE override the backend and token storage.`,
		// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.ValidateOutputFormat(flags.OutputFormat)
		},
	}

	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "Configuration directory (default ~/.config/mdb)")
	cmd.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	cli.RegisterOutputFlags(cmd, flags)

	cmd.AddCommand(newAuthCmd(flags))
	cmd.AddCommand(newForumCmd(flags))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// SetVersion sets the version reported by --version and mdb version.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return version
}

// Execute is the main entry point for the CLI application. It is called
// by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mdb version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var authRequired *cli.AuthRequiredError
	if errors.As(err, &authRequired) || errors.Is(err, session.ErrNoToken) {
		return ExitCodeAuthRequired
	}

	var authFailed *cli.AuthFailedError
	if errors.As(err, &authFailed) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

// loadRuntime builds the runtime for one command invocation.
func loadRuntime(flags *cli.CommandFlags) (*cli.Runtime, error) {
	return cli.NewRuntime(*flags, runtimeOptions...)
}
