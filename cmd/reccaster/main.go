// Reccaster announces a list of process records to RecSync servers.
//
// It listens for UDP announcements from recceiver servers, connects to the
// announced address, uploads the configured record catalog and keeps the
// session alive by answering pings. When a session fails it returns to
// listening and reconnects to the next announcement.
//
// Usage:
//
//	reccaster [command] [flags]
//
// See 'reccaster --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/reccaster/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "reccaster",
	Short: "RecSync client that uploads a record catalog",
	Long: `A RecSync client for process record catalogs.

Reccaster waits for a RecSync server to announce itself over UDP, then
connects, uploads every record listed in the configuration file and keeps
the connection alive until the server goes away.

Create a starting configuration with 'reccaster init'.`,
	Version:      version.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the user config directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "reccaster %s\n", version.Full())
	},
}
