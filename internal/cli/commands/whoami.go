package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/session"
)

// NewWhoamiCmd creates the whoami command. It prints the cached user
// first, then asks the backend and prints the confirmed identity.
func NewWhoamiCmd() *cobra.Command {
	var apiURL string
	var offline bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd.Context(), cmd.OutOrStdout(), apiURL, offline)
		},
	}

	addAPIFlag(cmd, &apiURL)
	cmd.Flags().BoolVar(&offline, "offline", false, "Only print the cached user")

	return cmd
}

func runWhoami(ctx context.Context, out io.Writer, apiURL string, offline bool) error {
	sess, err := openSession(ctx, apiURL)
	if err != nil {
		return err
	}

	cached, err := session.LoadSnapshot(ctx, sess.store, cliSessionID)
	if err != nil {
		return err
	}
	if cached != nil {
		fmt.Fprintf(out, "Cached: %s\n", describeUser(cached))
	} else {
		fmt.Fprintln(out, "Cached: none")
	}

	if offline {
		return nil
	}

	state, err := sess.provider.RefetchUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to reach the backend: %w", err)
	}
	if err := sess.saveCookies(ctx); err != nil {
		return err
	}

	if state.User == nil {
		if len(state.Errors) > 0 {
			fmt.Fprintf(out, "Not signed in: %s\n", joinErrors(state.Errors))
		} else {
			fmt.Fprintln(out, "Not signed in")
		}
		return nil
	}

	fmt.Fprintf(out, "Signed in: %s\n", describeUser(state.User))
	return nil
}
