// Phonedump is a forensic triage tool for consensual phone scans.
//
// It parses Android dumpsys snapshots and iOS app-list exports into
// normalized records: installed packages, permission grants, usage
// history, and per-app permission reports. Dumps are read from files
// collected ahead of time; phonedump never talks to the phone itself
// beyond optional mDNS discovery of network-paired iOS devices.
//
// Usage:
//
//	phonedump [command] [flags]
//
// See 'phonedump --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvoss/phonedump/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "phonedump",
	Short: "Phone Dump Triage Utility",
	Long: `A utility for reviewing consensually collected phone dumps.

Parses Android dumpsys snapshots and iOS app-list exports, lists the
installed apps they contain, and builds per-app permission reports
joining grants against a human-friendly permission catalog.

Run 'phonedump browse <dump>' for the interactive app browser, or see
the individual commands for scripted output.`,
	Version: version.Version,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("phonedump %s (commit: %s)\n", version.Version, version.Commit)
	},
}
