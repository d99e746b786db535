package tui

import (
	"github.com/nvoss/phonedump/internal/android"
	"github.com/nvoss/phonedump/internal/catalog"
	"github.com/nvoss/phonedump/internal/ios"
	"github.com/nvoss/phonedump/internal/report"
)

// AppEntry is one installed app as shown in the browser list
type AppEntry struct {
	// ID is the app's bundle or package identifier
	ID string

	// Note is the secondary line under the id (e.g. "system app")
	Note string

	// Flagged marks apps worth a closer look (offstore installs)
	Flagged bool
}

// Source feeds the browser: a listing of installed apps and a rendered
// report for any one of them. Android and iOS dumps both satisfy it.
type Source interface {
	// Label identifies the dump (path or device name) for the header
	Label() string

	// Apps lists every installed app
	Apps() []AppEntry

	// Report renders the detail view for one app
	Report(appID string) (string, error)
}

// androidSource adapts an Android dump to the browser
type androidSource struct {
	dump     *android.Dump
	perms    []catalog.AndroidPermission
	renderer *report.Renderer
}

// NewAndroidSource wraps an Android dump and its permission catalog as a
// browser source
func NewAndroidSource(dump *android.Dump, perms []catalog.AndroidPermission) Source {
	return &androidSource{
		dump:     dump,
		perms:    perms,
		renderer: &report.Renderer{Styled: true, Width: MinTerminalWidth},
	}
}

func (s *androidSource) Label() string {
	return s.dump.Path()
}

func (s *androidSource) Apps() []AppEntry {
	system := make(map[string]bool)
	for _, app := range s.dump.SystemApps() {
		system[app] = true
	}
	offstore := make(map[string]bool)
	for _, app := range s.dump.OffstoreApps() {
		offstore[app] = true
	}

	apps := s.dump.AllApps()
	entries := make([]AppEntry, 0, len(apps))
	for _, app := range apps {
		entry := AppEntry{ID: app}
		switch {
		case offstore[app]:
			entry.Note = "offstore install"
			entry.Flagged = true
		case system[app]:
			entry.Note = "system app"
		default:
			entry.Note = "store install"
		}
		entries = append(entries, entry)
	}
	return entries
}

func (s *androidSource) Report(appID string) (string, error) {
	rep, err := s.dump.PermissionReportFor(appID, s.perms)
	if err != nil {
		return "", err
	}
	return s.renderer.AndroidReport(rep), nil
}

// iosSource adapts an iOS dump to the browser
type iosSource struct {
	dump     *ios.Dump
	renderer *report.Renderer
}

// NewIOSSource wraps an iOS dump as a browser source
func NewIOSSource(dump *ios.Dump) Source {
	return &iosSource{
		dump:     dump,
		renderer: &report.Renderer{Styled: true, Width: MinTerminalWidth},
	}
}

func (s *iosSource) Label() string {
	return s.dump.DeviceName()
}

func (s *iosSource) Apps() []AppEntry {
	system := make(map[string]bool)
	for _, app := range s.dump.SystemApps() {
		system[app] = true
	}

	titles := s.dump.InstalledAppTitles()
	apps := s.dump.InstalledApps()
	entries := make([]AppEntry, 0, len(apps))
	for _, app := range apps {
		entry := AppEntry{ID: app, Note: titles[app]}
		if system[app] {
			if entry.Note != "" {
				entry.Note += " · system app"
			} else {
				entry.Note = "system app"
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

func (s *iosSource) Report(appID string) (string, error) {
	info, err := s.dump.Info(appID)
	if err != nil {
		return "", err
	}
	return s.renderer.IOSApp(s.dump.DeviceName(), info), nil
}
