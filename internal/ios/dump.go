package ios

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/nvoss/phonedump/internal/catalog"
	"github.com/nvoss/phonedump/internal/logging"
)

// ErrUnknownApp means the requested bundle id is not in the app list
var ErrUnknownApp = errors.New("app not present in dump")

// DeviceInfo is the hardware block of an iOS export
type DeviceInfo struct {
	DeviceClass    string `json:"DeviceClass"`
	ProductType    string `json:"ProductType"`
	ModelNumber    string `json:"ModelNumber"`
	RegionInfo     string `json:"RegionInfo"`
	ProductVersion string `json:"ProductVersion"`
}

// Dump is one parsed iOS app-list export
type Dump struct {
	path   string
	apps   []map[string]any
	device DeviceInfo

	perms  *catalog.Store
	models map[string]string
}

type rawDump struct {
	Apps    map[string]map[string]any `json:"apps"`
	DevInfo DeviceInfo                `json:"devinfo"`
}

// Open loads the export at path. perms is the self-extending permission
// catalog; a nil store resolves permissions against an empty in-memory
// catalog, so labels fall back to the TCC-key defaults and nothing is
// persisted. models maps ProductType to a marketing name and may be nil,
// in which case device names fall back to the raw hardware fields.
func Open(path string, perms *catalog.Store, models map[string]string) (*Dump, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ios dump: %w", err)
	}
	if perms == nil {
		perms = catalog.NewStore(catalog.NewMemoryBackend(nil))
	}
	var raw rawDump
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse ios dump %s: %w", path, err)
	}

	d := &Dump{
		path:   path,
		device: raw.DevInfo,
		perms:  perms,
		models: models,
	}

	// The JSON table is keyed by bundle id; iterate it in sorted order so
	// app listings are stable across runs.
	bundleIDs := make([]string, 0, len(raw.Apps))
	for id := range raw.Apps {
		bundleIDs = append(bundleIDs, id)
	}
	sort.Strings(bundleIDs)
	for _, id := range bundleIDs {
		app := raw.Apps[id]
		if app == nil {
			app = map[string]any{}
		}
		if _, ok := app["appId"]; !ok {
			// Older exports omit appId; the bundle identifier is the
			// same thing.
			app["appId"] = stringField(app, "CFBundleIdentifier")
		}
		d.apps = append(d.apps, app)
	}

	logging.Debug("Loaded ios dump",
		zap.String("path", path),
		zap.Int("apps", len(d.apps)),
	)
	return d, nil
}

// Path returns the path the dump was opened with
func (d *Dump) Path() string {
	return d.path
}

// Len returns the number of apps in the export
func (d *Dump) Len() int {
	return len(d.apps)
}

// InstalledApps returns every appId in the export
func (d *Dump) InstalledApps() []string {
	var out []string
	for _, app := range d.apps {
		if id := stringField(app, "appId"); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// InstalledAppTitles maps each appId to its executable name, the closest
// thing the export has to a display title
func (d *Dump) InstalledAppTitles() map[string]string {
	out := make(map[string]string, len(d.apps))
	for _, app := range d.apps {
		if id := stringField(app, "appId"); id != "" {
			out[id] = stringField(app, "CFBundleExecutable")
		}
	}
	return out
}

// SystemApps returns the appIds whose ApplicationType is System
func (d *Dump) SystemApps() []string {
	var out []string
	for _, app := range d.apps {
		if stringField(app, "ApplicationType") != "System" {
			continue
		}
		if id := stringField(app, "CFBundleIdentifier"); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// find returns the raw metadata for a bundle id, or nil
func (d *Dump) find(appID string) map[string]any {
	for _, app := range d.apps {
		if stringField(app, "CFBundleIdentifier") == appID {
			return app
		}
	}
	return nil
}

// stringField reads a string value from raw app metadata; non-string
// values read as empty
func stringField(app map[string]any, key string) string {
	s, _ := app[key].(string)
	return s
}
