package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bloodbridge-dev/bloodbridge-web/internal/cli/commands"
	"github.com/bloodbridge-dev/bloodbridge-web/internal/logger"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "bloodbridge",
	Short: "BloodBridge - Blood donation and inventory management",
	Long: `BloodBridge CLI - Check and manage your BloodBridge session from the terminal.

The CLI keeps its session in ~/.config/bloodbridge/session.json and talks to
the same API as the web front-end.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Logs go to stderr so command output stays clean
		level := os.Getenv("LOG_LEVEL")
		if level == "" {
			level = "warn"
		}
		logger.InitWriter(os.Stderr, level, "console")
	},
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bloodbridge version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewUseAPICmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
