// Phonedump-server is the standalone report server for phone dumps.
//
// It serves a directory of Android dump files as a JSON API: dump and
// app listings, per-app metadata, and permission reports, plus a
// websocket endpoint streaming per-section parse progress. The same
// server is available as 'phonedump serve'; this binary exists for
// deployments that only need the API.
//
// Usage:
//
//	phonedump-server server [flags]
//
// See 'phonedump-server server --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvoss/phonedump/internal/server"
	"github.com/nvoss/phonedump/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "phonedump-server",
	Short: "Phone Dump Report Server",
	Long: `A standalone JSON API server over a directory of phone dumps.

Dumps parse lazily on first access and stay cached for the life of the
process. For interactive review and dump parsing, use the separate
'phonedump' utility.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}

// Server command and flags
var (
	host           string
	port           int
	dumpDir        string
	permissionsCSV string
	certPath       string
	keyPath        string
	logLevel       string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the report server",
	Long: `Start the report server over a directory of Android dumps.

Each "<name>.txt" file in the dump directory is served as one dump.
Permission reports join against the catalog given with --permissions;
without a catalog, reports carry raw permission names only.

HTTPS is enabled when both --cert and --key are provided.`,
	Example: `  # Serve ./dumps on the default port
  phonedump-server server --dump-dir ./dumps

  # Custom port with debug logging
  phonedump-server server --dump-dir ./dumps --port 8443 --log-level debug

  # HTTPS with your own certificate
  phonedump-server server --dump-dir ./dumps --cert fullchain.pem --key privkey.pem`,
	RunE: runServer,
}

func init() {
	serverCmd.Flags().StringVar(&host, "host", "0.0.0.0", "Host/IP to bind to")
	serverCmd.Flags().IntVar(&port, "port", 8080, "Port to listen on")
	serverCmd.Flags().StringVar(&dumpDir, "dump-dir", "dumps", "Directory of dump files")
	serverCmd.Flags().StringVar(&permissionsCSV, "permissions", "", "Android permission catalog CSV")
	serverCmd.Flags().StringVar(&certPath, "cert", "", "TLS certificate file")
	serverCmd.Flags().StringVar(&keyPath, "key", "", "TLS private key file")
	serverCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServer(cmd *cobra.Command, args []string) error {
	srv, err := server.New(&server.Config{
		Host:           host,
		Port:           port,
		DumpDir:        dumpDir,
		PermissionsCSV: permissionsCSV,
		CertPath:       certPath,
		KeyPath:        keyPath,
		LogLevel:       logLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("phonedump-server %s (commit: %s)\n", version.Version, version.Commit)
	},
}
