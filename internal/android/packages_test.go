package android

import (
	"errors"
	"testing"
)

func TestAllApps(t *testing.T) {
	d, err := Open(writeDump(t, baseDump), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	want := []string{
		"com.amazon.mShop.android.shopping",
		"com.example.sideloaded",
		"com.android.settings",
	}
	got := d.AllApps()
	if len(got) != len(want) {
		t.Fatalf("AllApps() = %v, want %v", got, want)
	}
	for i, appID := range want {
		if got[i] != appID {
			t.Errorf("AllApps()[%d] = %q, want %q", i, got[i], appID)
		}
	}
}

func TestSystemApps(t *testing.T) {
	d, err := Open(writeDump(t, baseDump), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	got := d.SystemApps()
	if len(got) != 1 || got[0] != "com.android.settings" {
		t.Errorf("SystemApps() = %v, want [com.android.settings]", got)
	}
}

func TestOffstoreApps(t *testing.T) {
	d, err := Open(writeDump(t, baseDump), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	got := d.OffstoreApps()
	if len(got) != 1 || got[0] != "com.example.sideloaded" {
		t.Fatalf("OffstoreApps() = %v, want [com.example.sideloaded]", got)
	}

	// Store-installed and system apps must never be classified offstore.
	for _, appID := range got {
		if appID == "com.amazon.mShop.android.shopping" {
			t.Error("app installed by com.android.vending classified as offstore")
		}
		if appID == "com.android.settings" {
			t.Error("SYSTEM app classified as offstore")
		}
	}
}

func TestOffstoreAppsCustomInstallers(t *testing.T) {
	opts := &Options{ApprovedInstallers: []string{"com.other.store"}}
	d, err := Open(writeDump(t, baseDump), opts)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	// With the default list overridden, the Play-installed app counts as
	// offstore too.
	got := d.OffstoreApps()
	if len(got) != 2 {
		t.Errorf("OffstoreApps() = %v, want both non-system apps", got)
	}
}

func TestInfoKnownApp(t *testing.T) {
	d, err := Open(writeDump(t, baseDump), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	info, err := d.Info("com.amazon.mShop.android.shopping")
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}

	if info.FirstInstallTime != "2019-09-29 15:36:13" {
		t.Errorf("FirstInstallTime = %q, want 2019-09-29 15:36:13", info.FirstInstallTime)
	}
	if info.LastUpdateTime != "2020-05-24 18:23:43" {
		t.Errorf("LastUpdateTime = %q, want 2020-05-24 18:23:43", info.LastUpdateTime)
	}
	if info.UserID != "10083" {
		t.Errorf("UserID = %q, want 10083", info.UserID)
	}
	if info.VersionCode != "1241441" {
		t.Errorf("VersionCode = %q, want 1241441", info.VersionCode)
	}
	if info.VersionName != "18.9.0.100" {
		t.Errorf("VersionName = %q, want 18.9.0.100", info.VersionName)
	}

	wantInstall := []string{
		"android.permission.INTERNET",
		"android.permission.CAMERA",
		"android.permission.ACCESS_COARSE_LOCATION",
	}
	if len(info.InstallPermissions) != len(wantInstall) {
		t.Fatalf("InstallPermissions = %v, want %v", info.InstallPermissions, wantInstall)
	}
	for i, p := range wantInstall {
		if info.InstallPermissions[i] != p {
			t.Errorf("InstallPermissions[%d] = %q, want %q", i, info.InstallPermissions[i], p)
		}
	}
	if len(info.RuntimePermissions) != 1 || info.RuntimePermissions[0] != "android.permission.READ_CONTACTS" {
		t.Errorf("RuntimePermissions = %v, want [android.permission.READ_CONTACTS]", info.RuntimePermissions)
	}

	// Usage sections are absent from this fixture, so the documented
	// degraded defaults apply.
	if info.DataUsed != "unknown" {
		t.Errorf("DataUsed = %q, want unknown", info.DataUsed)
	}
	if info.BackgroundDataAllowed != "unknown" {
		t.Errorf("BackgroundDataAllowed = %q, want unknown", info.BackgroundDataAllowed)
	}
	if info.BatteryUsage != "0 (mAh)" {
		t.Errorf("BatteryUsage = %q, want 0 (mAh)", info.BatteryUsage)
	}
}

func TestInfoUserZeroFallback(t *testing.T) {
	d, err := Open(writeDump(t, baseDump), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	info, err := d.Info("com.android.settings")
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.FirstInstallTime != "2009-01-01 00:00:00" {
		t.Errorf("FirstInstallTime = %q, want the User 0 value", info.FirstInstallTime)
	}
	if info.LastUpdateTime != "2009-01-02 00:00:00" {
		t.Errorf("LastUpdateTime = %q, want the User 0 value", info.LastUpdateTime)
	}
}

func TestInfoUnknownApp(t *testing.T) {
	d, err := Open(writeDump(t, baseDump), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	_, err = d.Info("com.does.not.exist")
	if !errors.Is(err, ErrUnknownApp) {
		t.Errorf("Info() error = %v, want ErrUnknownApp", err)
	}
}

func TestInfoNoPackageSection(t *testing.T) {
	d, err := Open(writeDump(t, "DUMP OF SERVICE meminfo\n  Total PSS: 12345\n"), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	_, err = d.Info("com.example.app")
	if !errors.Is(err, ErrNoPackageSection) {
		t.Errorf("Info() error = %v, want ErrNoPackageSection", err)
	}
}
