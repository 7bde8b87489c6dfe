package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"mdb/internal/cli"

	"github.com/spf13/cobra"
)

// newAuthCmd creates the auth command group.
func newAuthCmd(flags *cli.CommandFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication with the MDB backend",
		Long: `Manage authentication for mdb commands.

Reading the forum works without an account; creating threads and posts
requires a login through Google or GitHub.

Examples:
  mdb auth login --provider github     # Sign in with GitHub
  mdb auth login --provider google     # Sign in with Google
  mdb auth status                      # Show authentication status
  mdb auth whoami                      # Show current identity
  mdb auth logout                      # Sign out`,
	}

	cmd.AddCommand(newAuthLoginCmd(flags))
	cmd.AddCommand(newAuthLogoutCmd(flags))
	cmd.AddCommand(newAuthStatusCmd(flags))
	cmd.AddCommand(newAuthWhoamiCmd(flags))
	return cmd
}

func newAuthLogoutCmd(flags *cli.CommandFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		Long: `Sign out of the MDB backend.

The stored token is removed immediately. The backend is then told about the
logout; if it cannot be reached the local logout still stands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}

			progress := cli.StartProgress(cmd.ErrOrStderr(), "Signing out...", flags.Quiet || flags.OutputFormat != cli.OutputTable)
			result := <-rt.Session.Logout(cmd.Context())
			progress.Stop()

			printer := cli.NewPrinter(cmd.OutOrStdout(), *flags)
			if printer.Structured() {
				return printer.Object(result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}
}

func newAuthWhoamiCmd(flags *cli.CommandFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show current authenticated identity",
		Long: `Show the user the stored token belongs to, as verified by the backend.

Exits with code 2 when no valid login exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}

			if !rt.Session.IsAuthenticated() {
				return &cli.AuthRequiredError{Backend: rt.Config.BackendURL}
			}
			user := rt.Session.Hydrate(cmd.Context())
			if user == nil {
				return verificationError(rt)
			}

			printer := cli.NewPrinter(cmd.OutOrStdout(), *flags)
			if printer.Structured() {
				return printer.Object(user)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> via %s\n", user.Username, user.Email, user.Provider)
			return nil
		},
	}
}

// verificationError explains why a held token could not be turned into a
// user. A rejected token has already been cleared by the session.
func verificationError(rt *cli.Runtime) error {
	if !rt.Session.IsAuthenticated() {
		return &cli.AuthFailedError{
			Backend: rt.Config.BackendURL,
			Reason:  errors.New("the stored token was rejected and has been removed"),
		}
	}
	return fmt.Errorf("could not verify the stored token with %s", rt.Config.BackendURL)
}

func writeField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

func providerList() string {
	return strings.Join([]string{"github", "google"}, ", ")
}
