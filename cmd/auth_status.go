package cmd

import (
	"fmt"
	"strings"

	"mdb/internal/cli"
	"mdb/pkg/auth"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newAuthStatusCmd(flags *cli.CommandFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Long: `Show whether a token is stored and whether the backend accepts it.

A token the backend rejects is removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(flags)
			if err != nil {
				return err
			}

			st := auth.Status{
				Backend:    rt.Config.BackendURL,
				TokenStore: string(rt.Session.StoreKind()),
				HasToken:   rt.Session.IsAuthenticated(),
			}
			if st.HasToken {
				progress := cli.StartProgress(cmd.ErrOrStderr(), "Verifying token...", flags.Quiet || flags.OutputFormat != cli.OutputTable)
				st.User = rt.Session.Hydrate(cmd.Context())
				progress.Stop()
			}
			st.State = auth.Resolve(st.HasToken, st.User, rt.Session.IsAuthenticated())

			printer := cli.NewPrinter(cmd.OutOrStdout(), *flags)
			if printer.Structured() {
				return printer.Object(st)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "MDB Authentication Status")
			fmt.Fprintln(out)
			writeField(out, "Backend", st.Backend)
			writeField(out, "Token store", st.TokenStore)
			writeField(out, "Status", formatAuthState(st.State))
			if st.User != nil {
				writeField(out, "User", fmt.Sprintf("%s <%s>", st.User.Username, st.User.Email))
				writeField(out, "Provider", st.User.Provider)
				if len(st.User.Roles) > 0 {
					writeField(out, "Roles", strings.Join(st.User.Roles, ", "))
				}
			}
			if st.State.NeedsLogin() {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Run 'mdb auth login --provider github' to sign in.")
			}
			return nil
		},
	}
}

func formatAuthState(state auth.State) string {
	switch state {
	case auth.StateAuthenticated:
		return text.FgGreen.Sprint("Authenticated")
	case auth.StateRejected:
		return text.FgYellow.Sprint("Token rejected")
	case auth.StateUnverified:
		return text.FgRed.Sprint("Token stored, could not be verified")
	default:
		return text.FgYellow.Sprint("Not authenticated")
	}
}
