package ios

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nvoss/phonedump/internal/logging"
)

// AppInfo is the per-app detail view for an iOS export. iOS exposes no
// usage counters to end users, so the usage fields carry instructions for
// reading the numbers on the device itself.
type AppInfo struct {
	AppID   string
	Title   string
	Version string

	Permissions []Permission

	InstallDateAdvice  string
	BatteryUsageAdvice string
	DataUsageAdvice    string
}

// Info resolves the detail record for one bundle id. Permissions are only
// resolved for recognized application types; an unrecognized type yields
// metadata with an empty permission list.
func (d *Dump) Info(appID string) (*AppInfo, error) {
	app := d.find(appID)
	if app == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownApp, appID)
	}

	info := &AppInfo{
		AppID:   appID,
		Title:   stringField(app, "CFBundleExecutable"),
		Version: stringField(app, "CFBundleVersion"),
	}

	switch strings.ToLower(stringField(app, "ApplicationType")) {
	case "system", "user", "hidden":
		perms, err := d.permissionsOf(app)
		if err != nil {
			return nil, err
		}
		info.Permissions = perms
	default:
		logging.Warn("Unrecognized application type, skipping permissions",
			zap.String("appId", appID),
			zap.String("type", stringField(app, "ApplicationType")),
		)
	}

	deviceClass := d.device.DeviceClass
	if deviceClass == "" {
		deviceClass = "iPhone/iPad"
	}
	info.InstallDateAdvice = fmt.Sprintf(
		"Apple does not officially record iOS app installation dates. To view when "+
			"%[1]q was *last used*: [Settings -> General -> %[2]s Storage]. To view the "+
			"*purchase date* of %[1]q, follow these instructions: "+
			"https://www.ipvtechresearch.org/post/guides/apple/. These are the "+
			"closest possible approximations to installation date available to end-users.",
		info.Title, deviceClass,
	)
	info.BatteryUsageAdvice = fmt.Sprintf(
		"To see recent battery usage of %q: [Settings -> Battery -> Battery Usage].",
		info.Title,
	)
	info.DataUsageAdvice = fmt.Sprintf(
		"To see recent data usage (not including Wifi) of %q: [Settings -> Cellular -> Cellular Data].",
		info.Title,
	)
	return info, nil
}

// DeviceName renders a human-readable device description, e.g.
// "iPhone 12 Pro (running iOS 16.2)". Hardware not present in the
// identifier catalog falls back to the raw model fields.
func (d *Dump) DeviceName() string {
	model, ok := d.models[d.device.ProductType]
	if !ok {
		model = fmt.Sprintf("%s (Model %s %s)",
			d.device.DeviceClass, d.device.ModelNumber, d.device.RegionInfo)
	}
	return fmt.Sprintf("%s (running iOS %s)", model, d.device.ProductVersion)
}

// Device returns the export's raw hardware block
func (d *Dump) Device() DeviceInfo {
	return d.device
}
