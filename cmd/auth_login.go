package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"mdb/internal/callback"
	"mdb/internal/cli"
	"mdb/internal/session"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

type loginOptions struct {
	provider  string
	noBrowser bool
	timeout   time.Duration
}

func newAuthLoginCmd(flags *cli.CommandFlags) *cobra.Command {
	opts := &loginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with Google or GitHub",
		Long: `Sign in to the MDB backend through an OAuth provider.

A temporary listener is started on 127.0.0.1 at the configured callback
port and the browser is sent to the provider. After approving access the
backend redirects back to the listener, which stores the token.

Examples:
  mdb auth login --provider github
  mdb auth login --provider google --no-browser`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogin(cmd, flags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.provider, "provider", "github", "OAuth provider ("+providerList()+")")
	cmd.Flags().BoolVar(&opts.noBrowser, "no-browser", false, "Print the authorization URL instead of opening a browser")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", callback.Timeout, "How long to wait for the browser to complete the login")
	return cmd
}

func runAuthLogin(cmd *cobra.Command, flags *cli.CommandFlags, opts *loginOptions) error {
	out := cmd.OutOrStdout()

	rtOpts := runtimeOptions
	if opts.noBrowser {
		rtOpts = append(append([]cli.RuntimeOption{}, runtimeOptions...), cli.WithRuntimeNavigator(&printNavigator{out: out}))
	}
	rt, err := cli.NewRuntime(*flags, rtOpts...)
	if err != nil {
		return err
	}

	// Reject unknown providers before a port is bound.
	if _, err := rt.Session.AuthorizationURL(opts.provider); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	var serverOpts []callback.ServerOption
	sink, cookieMode := rt.CookieSink()
	if cookieMode {
		serverOpts = append(serverOpts, callback.WithCookieSink(sink))
	}
	server := callback.NewServer(rt.Config.CallbackPort, callback.NewHandler(rt.Session, cookieMode), serverOpts...)

	callbackURL, err := server.Start(ctx)
	if err != nil {
		return &cli.AuthFailedError{Backend: rt.Config.BackendURL, Reason: err}
	}
	defer server.Stop()

	if !flags.Quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "Waiting for the OAuth callback on %s\n", callbackURL)
	}

	if err := rt.Session.Login(opts.provider); err != nil {
		return &cli.AuthFailedError{Backend: rt.Config.BackendURL, Reason: err}
	}

	progress := cli.StartProgress(cmd.ErrOrStderr(), "Waiting for browser login...", flags.Quiet)
	outcome, err := server.Wait(ctx)
	progress.Stop()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("no callback received within %s", opts.timeout)
		}
		return &cli.AuthFailedError{Backend: rt.Config.BackendURL, Reason: err}
	}

	if !outcome.Succeeded() {
		return &cli.AuthFailedError{Backend: rt.Config.BackendURL, Reason: outcomeError(outcome)}
	}
	if outcome.User == nil {
		return &cli.AuthFailedError{
			Backend: rt.Config.BackendURL,
			Reason:  errors.New("the backend did not accept the new token"),
		}
	}

	printer := cli.NewPrinter(out, *flags)
	if printer.Structured() {
		return printer.Object(outcome.User)
	}
	fmt.Fprintf(out, "%s Logged in as %s (%s)\n", text.FgGreen.Sprint("✓"), outcome.User.Username, outcome.User.Email)
	return nil
}

func outcomeError(outcome callback.Outcome) error {
	switch {
	case outcome.ProviderError != "":
		return fmt.Errorf("provider reported %q", outcome.ProviderError)
	case outcome.ErrorCode == callback.ErrorNoToken:
		return errors.New("no token was received in the callback")
	default:
		return errors.New("the token could not be stored")
	}
}

// printNavigator shows the authorization URL instead of launching a browser.
type printNavigator struct {
	out io.Writer
}

func (n *printNavigator) Navigate(url string) error {
	fmt.Fprintf(n.out, "Open this URL in your browser to continue:\n\n  %s\n\n", url)
	return nil
}

var _ session.Navigator = (*printNavigator)(nil)
