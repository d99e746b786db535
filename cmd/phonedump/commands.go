package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvoss/phonedump/internal/android"
	"github.com/nvoss/phonedump/internal/catalog"
	"github.com/nvoss/phonedump/internal/config"
	"github.com/nvoss/phonedump/internal/discovery"
	"github.com/nvoss/phonedump/internal/ios"
	"github.com/nvoss/phonedump/internal/report"
	"github.com/nvoss/phonedump/internal/server"
	"github.com/nvoss/phonedump/internal/tui"
)

// Dump command flags
var (
	platform        string
	serial          string
	appFilter       string
	permissionsCSV  string
	iosPermissions  string
	deviceIDsJSON   string
	discoverTimeout int
	noteText        string
	noteFlag        bool
)

// Serve command flags
var (
	serveHost     string
	servePort     int
	serveDumpDir  string
	serveCert     string
	serveKey      string
	serveLogLevel string
)

func init() {
	// Common flags for dump commands (persistent on root)
	rootCmd.PersistentFlags().StringVar(&platform, "platform", "android", "Dump platform (android, ios)")
	rootCmd.PersistentFlags().StringVar(&permissionsCSV, "permissions", "", "Android permission catalog CSV (default from config)")
	rootCmd.PersistentFlags().StringVar(&iosPermissions, "ios-permissions", "", "iOS TCC permission catalog JSON (default from config)")
	rootCmd.PersistentFlags().StringVar(&deviceIDsJSON, "device-ids", "", "iOS model identifier catalog JSON (default from config)")

	// Add subcommands directly to root
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(appsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(serveCmd)
}

// preferences loads the user preference block, falling back to empty
// defaults when no config file exists yet.
func preferences() *config.Preferences {
	reg, err := config.LoadRegistry()
	if err != nil || reg.Preferences == nil {
		return &config.Preferences{}
	}
	return reg.Preferences
}

// firstNonEmpty resolves a flag value against its config default
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// openAndroid opens an Android dump honoring configured installers and
// timestamp layout.
func openAndroid(path string, opts *android.Options) (*android.Dump, error) {
	prefs := preferences()
	if opts == nil {
		opts = &android.Options{}
	}
	opts.TimestampLayout = prefs.TimestampLayout
	if len(prefs.ApprovedInstallers) > 0 {
		opts.ApprovedInstallers = append(
			append([]string{}, android.DefaultApprovedInstallers...),
			prefs.ApprovedInstallers...,
		)
	}
	return android.Open(path, opts)
}

// openIOS opens an iOS dump with the configured TCC and model catalogs
func openIOS(path string) (*ios.Dump, error) {
	prefs := preferences()

	var store *catalog.Store
	if p := firstNonEmpty(iosPermissions, prefs.IOSPermissionsJSON); p != "" {
		store = catalog.NewStore(&catalog.FileBackend{Path: p})
	}

	var models map[string]string
	if p := firstNonEmpty(deviceIDsJSON, prefs.DeviceIdentifiersJSON); p != "" {
		var err error
		models, err = catalog.LoadDeviceIdentifiers(p)
		if err != nil {
			return nil, fmt.Errorf("failed to load device identifiers: %w", err)
		}
	}

	return ios.Open(path, store, models)
}

// androidCatalog loads the Android permission catalog if one is
// configured. A missing catalog is not an error; reports then carry
// raw permission names only.
func androidCatalog() ([]catalog.AndroidPermission, error) {
	path := firstNonEmpty(permissionsCSV, preferences().AndroidPermissionsCSV)
	if path == "" {
		return nil, nil
	}
	return catalog.LoadAndroidPermissions(path)
}

// parseCmd parses a dump and reports what it contains
var parseCmd = &cobra.Command{
	Use:   "parse <dump-file>",
	Short: "Parse a phone dump and show its contents",
	Long: `Parse a phone dump file and print a summary of what it contains.

Android dumps parse section by section; each section is reported as it
completes. The parsed document is cached next to the dump file, so
later commands against the same dump skip the parse entirely.

With --serial, the scan is recorded in the device registry so the dump
stays associated with the phone it came from.`,
	Example: `  # Parse an Android dumpsys snapshot
  phonedump parse dumps/pixel4.txt

  # Parse an iOS app-list export
  phonedump parse --platform ios dumps/iphone.json

  # Parse and record the scan against a device serial
  phonedump parse --serial R58M12ABCDE dumps/pixel4.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&serial, "serial", "", "Device serial to record the scan under")
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]

	switch platform {
	case "android":
		d, err := openAndroid(path, &android.Options{
			OnSection: func(section string, lines int) {
				fmt.Printf("  parsed %-30s %d lines\n", section, lines)
			},
		})
		if err != nil {
			return fmt.Errorf("parse failed: %w", err)
		}
		fmt.Printf("\nParsed %d sections from %s\n", len(d.Sections()), d.Path())
		fmt.Printf("Apps: %d installed, %d system, %d offstore\n",
			len(d.AllApps()), len(d.SystemApps()), len(d.OffstoreApps()))

	case "ios":
		d, err := openIOS(path)
		if err != nil {
			return fmt.Errorf("parse failed: %w", err)
		}
		fmt.Printf("Parsed %d apps from %s (%s)\n", d.Len(), d.Path(), d.DeviceName())

	default:
		return fmt.Errorf("unknown platform %q (expected android or ios)", platform)
	}

	if serial != "" {
		reg, err := config.GetGlobalRegistry()
		if err != nil {
			return fmt.Errorf("failed to load device registry: %w", err)
		}
		reg.UpdateDeviceScan(serial, platform, path)
		if err := config.SaveGlobal(); err != nil {
			return fmt.Errorf("failed to save device registry: %w", err)
		}
		fmt.Printf("Recorded scan for device %s\n", serial)
	}

	return nil
}

// appsCmd lists the apps a dump contains
var appsCmd = &cobra.Command{
	Use:   "apps <dump-file>",
	Short: "List installed apps found in a dump",
	Long: `List the apps installed on the phone a dump was taken from.

Android dumps support filtering to system apps (preloaded by the OEM)
or offstore apps (sideloaded, not from a recognized store installer).
Apps flagged in the device registry are marked in the listing when
--serial is given.`,
	Example: `  # All apps in an Android dump
  phonedump apps dumps/pixel4.txt

  # Only sideloaded apps
  phonedump apps --filter offstore dumps/pixel4.txt

  # iOS dump, marking apps flagged under a registered device
  phonedump apps --platform ios --serial 00008030-001A dumps/iphone.json`,
	Args: cobra.ExactArgs(1),
	RunE: runApps,
}

func init() {
	appsCmd.Flags().StringVar(&appFilter, "filter", "all", "App filter (all, system, offstore)")
	appsCmd.Flags().StringVar(&serial, "serial", "", "Device serial to read flags from")
}

func runApps(cmd *cobra.Command, args []string) error {
	var apps []string
	var title string

	switch platform {
	case "android":
		d, err := openAndroid(args[0], nil)
		if err != nil {
			return err
		}
		switch appFilter {
		case "all":
			apps, title = d.AllApps(), "Installed apps"
		case "system":
			apps, title = d.SystemApps(), "System apps"
		case "offstore":
			apps, title = d.OffstoreApps(), "Offstore apps"
		default:
			return fmt.Errorf("unknown filter %q (expected all, system, or offstore)", appFilter)
		}

	case "ios":
		d, err := openIOS(args[0])
		if err != nil {
			return err
		}
		switch appFilter {
		case "all":
			apps, title = d.InstalledApps(), "Installed apps"
		case "system":
			apps, title = d.SystemApps(), "System apps"
		default:
			return fmt.Errorf("unknown filter %q for ios (expected all or system)", appFilter)
		}

	default:
		return fmt.Errorf("unknown platform %q (expected android or ios)", platform)
	}

	fmt.Print(report.NewRenderer().AppList(title, apps, flaggedApps()))
	return nil
}

// flaggedApps reads flagged app ids for --serial from the registry.
// Returns nil when no serial was given or the device is unknown.
func flaggedApps() map[string]bool {
	if serial == "" {
		return nil
	}
	reg, err := config.LoadRegistry()
	if err != nil {
		return nil
	}
	device := reg.GetDevice(serial)
	if device == nil {
		return nil
	}
	flagged := make(map[string]bool)
	for appID, note := range device.AppNotes {
		if note.Flagged {
			flagged[appID] = true
		}
	}
	return flagged
}

// reportCmd builds a per-app permission report
var reportCmd = &cobra.Command{
	Use:   "report <dump-file> <app-id>",
	Short: "Show the permission report for one app",
	Long: `Build the permission report for a single app in a dump.

For Android, grants from the package record are joined against app-ops
usage events and the human-friendly permission catalog; permissions
without a catalog entry are listed separately. For iOS, the report
covers entitlements and TCC grants with their catalog labels.

Output is styled when stdout is a terminal and plain text when piped.`,
	Example: `  # Android permission report
  phonedump report dumps/pixel4.txt com.example.app

  # iOS app report
  phonedump report --platform ios dumps/iphone.json com.example.app

  # Pipe the plain rendering to a pager
  phonedump report dumps/pixel4.txt com.example.app | less`,
	Args: cobra.ExactArgs(2),
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	renderer := report.NewRenderer()

	switch platform {
	case "android":
		d, err := openAndroid(args[0], nil)
		if err != nil {
			return err
		}
		perms, err := androidCatalog()
		if err != nil {
			return fmt.Errorf("failed to load permission catalog: %w", err)
		}
		rep, err := d.PermissionReportFor(args[1], perms)
		if err != nil {
			return err
		}
		fmt.Print(renderer.AndroidReport(rep))

	case "ios":
		d, err := openIOS(args[0])
		if err != nil {
			return err
		}
		info, err := d.Info(args[1])
		if err != nil {
			return err
		}
		fmt.Print(renderer.IOSApp(d.DeviceName(), info))

	default:
		return fmt.Errorf("unknown platform %q (expected android or ios)", platform)
	}

	return nil
}

// browseCmd launches the interactive app browser
var browseCmd = &cobra.Command{
	Use:   "browse <dump-file>",
	Short: "Browse a dump's apps interactively",
	Long: `Launch the interactive terminal browser over a dump.

The browser lists every installed app; selecting one opens its
permission report in a scrollable pane. Type / to filter the list.`,
	Example: `  # Browse an Android dump
  phonedump browse dumps/pixel4.txt

  # Browse an iOS dump
  phonedump browse --platform ios dumps/iphone.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	var source tui.Source

	switch platform {
	case "android":
		d, err := openAndroid(args[0], nil)
		if err != nil {
			return err
		}
		perms, err := androidCatalog()
		if err != nil {
			return fmt.Errorf("failed to load permission catalog: %w", err)
		}
		source = tui.NewAndroidSource(d, perms)

	case "ios":
		d, err := openIOS(args[0])
		if err != nil {
			return err
		}
		source = tui.NewIOSSource(d)

	default:
		return fmt.Errorf("unknown platform %q (expected android or ios)", platform)
	}

	return tui.Run(source)
}

// devicesCmd discovers network-paired iOS devices
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Discover iOS devices on the network",
	Long: `Scan for iOS devices using mDNS/DNS-SD discovery.

Devices with WiFi sync enabled advertise the lockdown service over
Bonjour; this command listens for those broadcasts and displays each
device's MAC address, hostname, and lockdown endpoint. Dumps still
have to be collected with platform tooling; discovery only confirms
which paired devices are reachable.`,
	Example: `  # Scan with the configured timeout
  phonedump devices

  # Quick 3-second scan
  phonedump devices --timeout 3`,
	RunE: runDevices,
}

func init() {
	devicesCmd.Flags().IntVar(&discoverTimeout, "timeout", 0, "Scan timeout in seconds (default from config)")
}

func runDevices(cmd *cobra.Command, args []string) error {
	timeout := discoverTimeout
	if timeout <= 0 {
		timeout = preferences().DiscoverTimeout
	}
	if timeout <= 0 {
		timeout = int(discovery.DefaultScanTimeout / time.Second)
	}

	fmt.Printf("Scanning for iOS devices (timeout: %ds)...\n\n", timeout)

	devices, err := discovery.ScanForDevices(time.Duration(timeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	fmt.Print(report.NewRenderer().Devices(devices))
	return nil
}

// noteCmd annotates an app under a registered device
var noteCmd = &cobra.Command{
	Use:   "note <serial> <app-id>",
	Short: "Attach a reviewer note to an app",
	Long: `Attach a note to one app under a registered device.

Notes live in the local device registry, not in the dump. Flagged apps
are marked in 'phonedump apps --serial' listings so follow-ups stand
out across review sessions.`,
	Example: `  # Record a note
  phonedump note R58M12ABCDE com.example.app --text "asked client about this"

  # Flag an app for follow-up
  phonedump note R58M12ABCDE com.example.app --text "unknown installer" --flag`,
	Args: cobra.ExactArgs(2),
	RunE: runNote,
}

func init() {
	noteCmd.Flags().StringVar(&noteText, "text", "", "Note text")
	noteCmd.Flags().BoolVar(&noteFlag, "flag", false, "Flag the app for follow-up")
}

func runNote(cmd *cobra.Command, args []string) error {
	reg, err := config.GetGlobalRegistry()
	if err != nil {
		return fmt.Errorf("failed to load device registry: %w", err)
	}

	reg.SetAppNote(args[0], args[1], noteText, noteFlag)
	if err := config.SaveGlobal(); err != nil {
		return fmt.Errorf("failed to save device registry: %w", err)
	}

	fmt.Printf("Noted %s on device %s\n", args[1], args[0])
	return nil
}

// serveCmd runs the report API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve parsed dumps over HTTP",
	Long: `Start the report server over a directory of Android dumps.

The server exposes a JSON API for dump listings, app listings, and
permission reports, plus a websocket endpoint streaming per-section
parse progress. HTTPS is enabled when both --cert and --key are set.`,
	Example: `  # Serve the configured dump directory on the default port
  phonedump serve

  # Serve a specific directory with debug logging
  phonedump serve --dump-dir ./dumps --port 8080 --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "127.0.0.1", "Host/IP to bind to")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveDumpDir, "dump-dir", "", "Directory of dump files (default from config)")
	serveCmd.Flags().StringVar(&serveCert, "cert", "", "TLS certificate file")
	serveCmd.Flags().StringVar(&serveKey, "key", "", "TLS private key file")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	prefs := preferences()

	dumpDir := firstNonEmpty(serveDumpDir, prefs.DumpDir)
	if dumpDir == "" {
		return fmt.Errorf("no dump directory: pass --dump-dir or set dump_dir in the config")
	}

	srv, err := server.New(&server.Config{
		Host:           serveHost,
		Port:           servePort,
		DumpDir:        dumpDir,
		PermissionsCSV: firstNonEmpty(permissionsCSV, prefs.AndroidPermissionsCSV),
		CertPath:       serveCert,
		KeyPath:        serveKey,
		LogLevel:       serveLogLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
