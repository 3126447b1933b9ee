package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/session"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out of BloodBridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd.Context(), cmd.OutOrStdout(), apiURL)
		},
	}

	addAPIFlag(cmd, &apiURL)
	return cmd
}

func runLogout(ctx context.Context, out io.Writer, apiURL string) error {
	sess, err := openSession(ctx, apiURL)
	if err != nil {
		return err
	}

	if err := sess.provider.Logout(ctx); err != nil {
		var rejected *session.LogoutRejectedError
		if errors.As(err, &rejected) {
			return fmt.Errorf("logout failed: backend answered %d, you are still signed in", rejected.Status)
		}
		return fmt.Errorf("logout failed: %w", err)
	}

	if err := session.SaveCookies(ctx, sess.store, cliSessionID, nil); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	fmt.Fprintln(out, "✓ Logged out")
	return nil
}
