package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/models"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var apiURL, username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to BloodBridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), cmd.OutOrStdout(), apiURL, username, password)
		},
	}

	addAPIFlag(cmd, &apiURL)
	cmd.Flags().StringVar(&username, "username", "", "Username (or set BLOODBRIDGE_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set BLOODBRIDGE_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(ctx context.Context, out io.Writer, apiURL, username, password string) error {
	if username == "" {
		username = os.Getenv("BLOODBRIDGE_USERNAME")
	}
	if password == "" {
		password = os.Getenv("BLOODBRIDGE_PASSWORD")
	}

	if username == "" {
		return fmt.Errorf("username is required (use --username flag or BLOODBRIDGE_USERNAME env var)")
	}

	if password == "" {
		if !term.IsTerminal(int(syscall.Stdin)) {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or BLOODBRIDGE_PASSWORD env var)")
		}
		fmt.Fprint(out, "Password: ")
		bytePassword, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(bytePassword)
		fmt.Fprintln(out)
	}

	sess, err := openSession(ctx, apiURL)
	if err != nil {
		return err
	}

	resp, err := sess.api.Authenticate(ctx, models.Credentials{UserName: username, Password: password})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if resp.HasErrors {
		return fmt.Errorf("login failed: %s", joinErrors(resp.Errors))
	}
	if !resp.Data {
		return fmt.Errorf("login failed: invalid username or password")
	}

	if err := sess.saveCookies(ctx); err != nil {
		return err
	}

	state, err := sess.provider.RefetchUser(ctx)
	if err != nil {
		return fmt.Errorf("logged in, but failed to load the current user: %w", err)
	}
	if state.User == nil {
		return fmt.Errorf("logged in, but the backend did not return a user: %s", joinErrors(state.Errors))
	}

	fmt.Fprintln(out, "✓ Login successful!")
	fmt.Fprintf(out, "  User: %s\n", describeUser(state.User))
	return nil
}
