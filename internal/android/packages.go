package android

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/nvoss/phonedump/internal/dumptree"
	"github.com/nvoss/phonedump/internal/logging"
)

// packageKeyRe matches the header key of one package record, e.g.
// "Package [com.example.app] (1a2b3c". Key cleanup strips the trailing
// parenthesis, so the pattern ends at the hash.
var packageKeyRe = regexp.MustCompile(`^Package \[(.*?)\] \((.*)$`)

// Package is the per-app summary extracted from the package section.
// Fields that the dump did not report are empty strings.
type Package struct {
	// AppID is the application package name, e.g. "com.example.app"
	AppID string

	// Key is the record's full header key inside the package section,
	// retained so callers can reach the raw subtree via Section
	Key string

	Flags                string
	InstallerPackageName string
	UserID               string
	FirstInstallTime     string
	LastUpdateTime       string
	VersionCode          string
	VersionName          string
}

// packages builds (once) the appId index from the package section.
// Dumps without a usable package section produce an empty index; queries
// against it report ErrUnknownApp or ErrNoPackageSection as appropriate.
func (d *Dump) packages() map[string]*Package {
	if d.pkgs != nil {
		return d.pkgs
	}
	d.pkgs = make(map[string]*Package)

	section := d.Section("package")
	if section == nil {
		logging.Warn("Dump has no package section", zap.String("path", d.path))
		return d.pkgs
	}
	records := section.Child("Packages")
	if records == nil || records.Kind() != dumptree.KindMap {
		logging.Warn("Package section has no Packages table", zap.String("path", d.path))
		return d.pkgs
	}

	for _, key := range records.Keys() {
		m := packageKeyRe.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		rec, _ := records.Get(key)
		pkg := &Package{
			AppID:                m[1],
			Key:                  key,
			Flags:                leafOf(rec, "flags"),
			InstallerPackageName: leafOf(rec, "installerPackageName"),
			UserID:               leafOf(rec, "userId"),
			FirstInstallTime:     leafOf(rec, "firstInstallTime"),
			LastUpdateTime:       leafOf(rec, "lastUpdateTime"),
			VersionCode:          leafOf(rec, "versionCode"),
			VersionName:          leafOf(rec, "versionName"),
		}
		if pkg.FirstInstallTime == "" {
			// Multi-user dumps report install times per user instead of
			// on the record itself; user 0 is the device owner.
			pkg.FirstInstallTime = userZeroField(rec, "firstInstallTime")
		}
		if pkg.LastUpdateTime == "" {
			pkg.LastUpdateTime = userZeroField(rec, "lastUpdateTime")
		}
		d.pkgs[pkg.AppID] = pkg
		d.pkgOrder = append(d.pkgOrder, pkg.AppID)
	}
	logging.Debug("Indexed package records",
		zap.String("path", d.path),
		zap.Int("count", len(d.pkgs)),
	)
	return d.pkgs
}

// AllApps returns every appId in the dump, in document order
func (d *Dump) AllApps() []string {
	d.packages()
	return append([]string(nil), d.pkgOrder...)
}

// SystemApps returns appIds whose package record carries the SYSTEM flag
func (d *Dump) SystemApps() []string {
	pkgs := d.packages()
	var out []string
	for _, appID := range d.pkgOrder {
		if strings.Contains(pkgs[appID].Flags, "SYSTEM") {
			out = append(out, appID)
		}
	}
	return out
}

// OffstoreApps returns user-installed appIds that did not arrive through
// an approved installer. These are the records a triage review looks at
// first.
func (d *Dump) OffstoreApps() []string {
	pkgs := d.packages()
	approved := d.approvedInstallers()
	var out []string
	for _, appID := range d.pkgOrder {
		pkg := pkgs[appID]
		if strings.Contains(pkg.Flags, "SYSTEM") {
			continue
		}
		if approved[pkg.InstallerPackageName] {
			continue
		}
		out = append(out, appID)
	}
	return out
}

// AppInfo is the full per-app detail view: package metadata plus the three
// permission lists and the usage figures resolved from the other sections.
type AppInfo struct {
	AppID            string
	UserID           string
	FirstInstallTime string
	LastUpdateTime   string
	VersionCode      string
	VersionName      string

	InstallPermissions  []string
	DeclaredPermissions []string
	RuntimePermissions  []string

	// DataUsed and BackgroundDataAllowed degrade to "unknown" when the
	// network-stats section is absent or unreadable
	DataUsed              string
	BackgroundDataAllowed string

	// BatteryUsage degrades to "0 (mAh)" when battery stats carry no
	// entry for the app's uid
	BatteryUsage string
}

// Info resolves the detail record for one appId. Unknown appIds return
// ErrUnknownApp; a dump without a package section returns
// ErrNoPackageSection.
func (d *Dump) Info(appID string) (*AppInfo, error) {
	pkgs := d.packages()
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPackageSection, d.path)
	}
	pkg, ok := pkgs[appID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownApp, appID)
	}

	rec := d.Section("package").Child("Packages").Child(pkg.Key)
	info := &AppInfo{
		AppID:            pkg.AppID,
		UserID:           pkg.UserID,
		FirstInstallTime: pkg.FirstInstallTime,
		LastUpdateTime:   pkg.LastUpdateTime,
		VersionCode:      pkg.VersionCode,
		VersionName:      pkg.VersionName,

		InstallPermissions:  permissionNames(rec, "install permissions"),
		DeclaredPermissions: permissionNames(rec, "declared permissions"),
		RuntimePermissions:  permissionNames(rec, "runtime permissions"),
	}

	info.DataUsed, info.BackgroundDataAllowed = d.dataUsage(pkg)
	info.BatteryUsage = d.batteryUsage(pkg)
	return info, nil
}

// leafOf reads one scalar field from a record. Both flattened "name=value"
// entries and plain "name: value" entries land as map leaves, so one
// lookup covers them.
func leafOf(rec *dumptree.Node, key string) string {
	if rec == nil {
		return ""
	}
	child := rec.Child(key)
	if child == nil || child.Kind() != dumptree.KindLeaf {
		return ""
	}
	return child.Value()
}

// userZeroField reads a field from the record's "User 0" sub-block
func userZeroField(rec *dumptree.Node, key string) string {
	if rec == nil || rec.Kind() != dumptree.KindMap {
		return ""
	}
	for _, k := range rec.Keys() {
		if !strings.HasPrefix(k, "User 0") {
			continue
		}
		user, _ := rec.Get(k)
		if v := leafOf(user, key); v != "" {
			return v
		}
	}
	return ""
}

// permissionNames flattens one of a record's permission blocks into bare
// permission names. Entries arrive either as list items or as map keys,
// each shaped like "android.permission.CAMERA: granted=true"; everything
// after the first colon is annotation.
func permissionNames(rec *dumptree.Node, block string) []string {
	if rec == nil {
		return nil
	}
	node := rec.Child(block)
	if node == nil {
		return nil
	}
	var out []string
	appendName := func(s string) {
		name := strings.TrimSpace(strings.SplitN(s, ":", 2)[0])
		if name != "" {
			out = append(out, name)
		}
	}
	switch node.Kind() {
	case dumptree.KindList:
		for _, e := range node.Elems() {
			if e.Kind() == dumptree.KindLeaf {
				appendName(e.Value())
			}
		}
	case dumptree.KindMap:
		for _, k := range node.Keys() {
			appendName(k)
		}
	case dumptree.KindLeaf:
		appendName(node.Value())
	}
	return out
}
