package commands

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/cli/userconfig"
)

// NewUseAPICmd creates the use-api command, which stores the default API
// address in the user config
func NewUseAPICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use-api <url>",
		Short: "Set the default BloodBridge API address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimRight(strings.TrimSpace(args[0]), "/")
			u, err := url.Parse(raw)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("invalid API address %q: scheme and host are required", args[0])
			}

			if err := userconfig.SetAPIBaseURL(raw); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Using %s\n", raw)
			return nil
		},
	}
}
