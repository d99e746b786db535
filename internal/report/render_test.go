package report

import (
	"strings"
	"testing"

	"github.com/nvoss/phonedump/internal/android"
	"github.com/nvoss/phonedump/internal/catalog"
	"github.com/nvoss/phonedump/internal/discovery"
	"github.com/nvoss/phonedump/internal/ios"
)

func testReport() *android.PermissionReport {
	return &android.PermissionReport{
		AppID: "com.example.app",
		HumanFriendly: []android.PermissionRow{
			{
				AndroidPermission: catalog.AndroidPermission{
					Permission: "android.permission.CAMERA",
					Label:      "take pictures and videos",
				},
				PermissionAbbrv: "CAMERA",
				AppID:           "com.example.app",
				Op:              "CAMERA",
				Mode:            "0",
				Timestamp:       "2020-05-24 18:23:43",
				TimeAgo:         "+15m2s867ms",
			},
			{
				AndroidPermission: catalog.AndroidPermission{
					Permission: "android.permission.INTERNET",
					Label:      "have full network access",
				},
				PermissionAbbrv: "INTERNET",
				AppID:           "com.example.app",
				Op:              "Unknown permission",
				Mode:            "Unknown permission",
				Timestamp:       "Unknown permission",
				TimeAgo:         "Unknown permission",
			},
		},
		UnknownOps: []android.PermissionEvent{
			{AppID: "com.example.app", Op: "WAKE_LOCK", Mode: "0", TimeAgo: "+2d1h3m"},
		},
		UncataloguedPermissions: []string{"com.example.permission.CUSTOM"},
		Stats: android.ReportStats{
			TotalPermissions:  3,
			HFPermissions:     2,
			RecentPermissions: 2,
			NotHFOps:          1,
			NotHFPermissions:  1,
			VersionCode:       "1241441",
			VersionName:       "18.9.0.100",
			FirstInstallTime:  "2019-09-29 15:36:13",
			LastUpdateTime:    "2020-05-24 18:23:43",
		},
	}
}

func TestRenderer_AndroidReport_Plain(t *testing.T) {
	r := &Renderer{Styled: false, Width: MinTerminalWidth}
	out := r.AndroidReport(testReport())

	wantFragments := []string{
		"com.example.app",
		"18.9.0.100 (1241441)",
		"2019-09-29 15:36:13",
		"3 total, 2 recognized",
		"take pictures and videos",
		"allowed, +15m2s867ms ago",
		"have full network access",
		"never used recently",
		"WAKE_LOCK",
		"com.example.permission.CUSTOM",
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(out, fragment) {
			t.Errorf("AndroidReport() missing %q in output:\n%s", fragment, out)
		}
	}

	if strings.Contains(out, "\x1b[") {
		t.Error("AndroidReport() plain output contains ANSI escape sequences")
	}
}

func TestRenderer_AndroidReport_Styled(t *testing.T) {
	r := &Renderer{Styled: true, Width: 80}
	out := r.AndroidReport(testReport())

	if !strings.Contains(out, "com.example.app") {
		t.Errorf("AndroidReport() styled output missing app id:\n%s", out)
	}
	if !strings.Contains(out, "take pictures and videos") {
		t.Error("AndroidReport() styled output missing permission label")
	}
}

func TestRenderer_AndroidAppInfo(t *testing.T) {
	r := &Renderer{Styled: false, Width: MinTerminalWidth}
	info := &android.AppInfo{
		AppID:                 "com.example.app",
		UserID:                "10083",
		FirstInstallTime:      "2019-09-29 15:36:13",
		LastUpdateTime:        "2020-05-24 18:23:43",
		VersionCode:           "1241441",
		VersionName:           "18.9.0.100",
		DataUsed:              "3.00 MB",
		BackgroundDataAllowed: "yes",
		BatteryUsage:          "2.66 (mAh)",
	}

	out := r.AndroidAppInfo(info)
	for _, fragment := range []string{"10083", "3.00 MB", "yes", "2.66 (mAh)"} {
		if !strings.Contains(out, fragment) {
			t.Errorf("AndroidAppInfo() missing %q in output:\n%s", fragment, out)
		}
	}
}

func TestRenderer_AppList(t *testing.T) {
	r := &Renderer{Styled: false, Width: MinTerminalWidth}
	apps := []string{"com.android.settings", "com.example.sideloaded"}
	flagged := map[string]bool{"com.example.sideloaded": true}

	out := r.AppList("Installed apps", apps, flagged)

	if !strings.Contains(out, "Installed apps (2)") {
		t.Errorf("AppList() missing title with count:\n%s", out)
	}
	if !strings.Contains(out, FlaggedMarker+" com.example.sideloaded") {
		t.Errorf("AppList() flagged app not marked:\n%s", out)
	}
	if strings.Contains(out, FlaggedMarker+" com.android.settings") {
		t.Errorf("AppList() unflagged app carries flag marker:\n%s", out)
	}
}

func TestRenderer_IOSApp(t *testing.T) {
	r := &Renderer{Styled: false, Width: MinTerminalWidth}
	info := &ios.AppInfo{
		AppID:   "com.apple.mobilesafari",
		Title:   "MobileSafari",
		Version: "8617.1.17.10.9",
		Permissions: []ios.Permission{
			{Label: "Camera", Reason: "permission granted by system"},
		},
		InstallDateAdvice: "Check Settings for the install date.",
	}

	out := r.IOSApp("iPhone 11 Pro (running iOS 16.2)", info)
	for _, fragment := range []string{
		"MobileSafari (com.apple.mobilesafari)",
		"iPhone 11 Pro (running iOS 16.2)",
		"Camera - permission granted by system",
		"Check Settings for the install date.",
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("IOSApp() missing %q in output:\n%s", fragment, out)
		}
	}
}

func TestRenderer_Devices(t *testing.T) {
	r := &Renderer{Styled: false, Width: MinTerminalWidth}

	out := r.Devices(nil)
	if !strings.Contains(out, "No devices found") {
		t.Errorf("Devices() empty scan missing fallback line:\n%s", out)
	}

	devices := []*discovery.Device{
		{MAC: "aa:bb:cc:dd:ee:ff", Hostname: "Alices-iPhone.local.", IP: "192.168.4.16", Port: 62078},
	}
	out = r.Devices(devices)
	for _, fragment := range []string{"Alices-iPhone", "192.168.4.16:62078", "aa:bb:cc:dd:ee:ff"} {
		if !strings.Contains(out, fragment) {
			t.Errorf("Devices() missing %q in output:\n%s", fragment, out)
		}
	}
}

func TestModeLabel(t *testing.T) {
	tests := []struct {
		mode     string
		expected string
	}{
		{"0", "allowed"},
		{"1", "ignored"},
		{"2", "denied"},
		{"3", "default"},
		{"7", "7"},
		{"Unknown permission", "Unknown permission"},
	}

	for _, tt := range tests {
		if got := ModeLabel(tt.mode); got != tt.expected {
			t.Errorf("ModeLabel(%q) = %q, want %q", tt.mode, got, tt.expected)
		}
	}
}

func TestVersionLine(t *testing.T) {
	tests := []struct {
		name     string
		vname    string
		vcode    string
		expected string
	}{
		{"both", "18.9.0.100", "1241441", "18.9.0.100 (1241441)"},
		{"name only", "18.9.0.100", "", "18.9.0.100"},
		{"code only", "", "1241441", "1241441"},
		{"neither", "", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := versionLine(tt.vname, tt.vcode); got != tt.expected {
				t.Errorf("versionLine(%q, %q) = %q, want %q", tt.vname, tt.vcode, got, tt.expected)
			}
		})
	}
}
