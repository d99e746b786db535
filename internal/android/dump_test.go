package android

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nvoss/phonedump/internal/dumptree"
)

// baseDump is a trimmed device snapshot with the package and app-ops
// sections only; usage sections are deliberately absent so the degraded
// defaults are exercised.
const baseDump = `DUMP OF SERVICE package
Packages:
  Package [com.amazon.mShop.android.shopping] (1a2b3c):
    userId=10083
    versionCode=1241441
    versionName=18.9.0.100
    installerPackageName=com.android.vending
    firstInstallTime=2019-09-29 15:36:13
    lastUpdateTime=2020-05-24 18:23:43
    flags=[ HAS_CODE ALLOW_CLEAR_USER_DATA ]
    install permissions:
      android.permission.INTERNET: granted=true
      android.permission.CAMERA: granted=true
      android.permission.ACCESS_COARSE_LOCATION: granted=true
    runtime permissions:
      android.permission.READ_CONTACTS: granted=true
  Package [com.example.sideloaded] (9f8e7d):
    userId=10099
    firstInstallTime=2020-01-01 00:00:00
    lastUpdateTime=2020-01-02 00:00:00
    install permissions:
      android.permission.READ_SMS: granted=true
  Package [com.android.settings] (0a0b0c):
    userId=1000
    flags=[ SYSTEM PRIVILEGED ]
    User 0: ceDataInode=1234 installed=true
      firstInstallTime=2009-01-01 00:00:00
      lastUpdateTime=2009-01-02 00:00:00
--------------------------------------------
DUMP OF SERVICE appops
Current AppOps Service state:
  Uid u0a83:
    Package com.amazon.mShop.android.shopping:
      ACCESS_COARSE_LOCATION: mode=0; time=+2h7m13s715ms ago
      CAMERA: mode=0; time=+15m2s867ms ago
  Uid u0a99:
    Package com.example.sideloaded:
      No operations.
--------------------------------------------
DUMP OF SETTINGS secure
  location_mode=3
`

// usageDump extends baseDump with the sections that feed data, battery
// and process statistics.
const usageDump = baseDump + `DUMP OF SERVICE procstats
CURRENT STATS:
  * com.amazon.mShop.android.shopping / u0a83 / v1241441:
         TOTAL: 98% (120MB-130MB-140MB/110MB/0B over 53)
         Persistent: 98% (120MB-130MB-140MB/110MB/0B over 53)
DUMP OF SERVICE batterystats
Statistics since last charge:
  Estimated power use (mAh):
    Uid u0a83: 2.66 ( cpu=1.96 wake=0.70 )
      Wifi: 0.55
DUMP OF SERVICE netstats detail
BPF map content:
  mUidCounterSetMap:
    10083 1
  mAppUidStatsMap:
    10083 1048576 500 2097152 300
    10099 100 1 200 2
`

// writeDump materializes dump text in a temp dir and returns the .txt path
func writeDump(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "device.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture dump: %v", err)
	}
	return path
}

func TestOpenSegmentsSections(t *testing.T) {
	d, err := Open(writeDump(t, baseDump), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	want := []string{"package", "appops", "secure"}
	got := d.Sections()
	if len(got) != len(want) {
		t.Fatalf("Sections() = %v, want %v", got, want)
	}
	for i, name := range want {
		if got[i] != name {
			t.Errorf("Sections()[%d] = %q, want %q", i, got[i], name)
		}
	}

	if d.Section("package").Child("Packages") == nil {
		t.Error("package section should contain a Packages table")
	}
}

func TestOpenRenamesNetstatsSection(t *testing.T) {
	d, err := Open(writeDump(t, usageDump), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if d.Section("net_stats") == nil {
		t.Error("netstats detail section should be stored as net_stats")
	}
	if d.Section("netstats detail") != nil {
		t.Error("raw netstats detail name should not appear")
	}
}

func TestOpenWritesSidecar(t *testing.T) {
	path := writeDump(t, baseDump)
	d, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	sidecar := d.sidecarPath()
	if _, err := os.Stat(sidecar); err != nil {
		t.Fatalf("sidecar cache should exist after first parse: %v", err)
	}
}

func TestSidecarReloadRoundTrips(t *testing.T) {
	path := writeDump(t, baseDump)
	first, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	// Second open must come entirely from the cache and yield a
	// structurally identical document.
	second, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() from cache error = %v", err)
	}
	if !dumptree.Equal(first.Document(), second.Document()) {
		t.Error("cached document differs from freshly parsed document")
	}
}

func TestCorruptSidecarIsRebuilt(t *testing.T) {
	path := writeDump(t, baseDump)
	first, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := os.WriteFile(first.sidecarPath(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupting sidecar: %v", err)
	}

	second, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open() after cache corruption error = %v", err)
	}
	if !dumptree.Equal(first.Document(), second.Document()) {
		t.Error("rebuilt document differs from original parse")
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.txt"), nil)
	if err == nil {
		t.Fatal("Open() on a missing dump should fail")
	}
}

func TestOnSectionCallback(t *testing.T) {
	var sections []string
	opts := &Options{OnSection: func(name string, lines int) {
		sections = append(sections, name)
		if lines == 0 {
			t.Errorf("section %q reported zero lines", name)
		}
	}}
	if _, err := Open(writeDump(t, baseDump), opts); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if len(sections) != 3 {
		t.Errorf("OnSection fired %d times, want 3 (%v)", len(sections), sections)
	}
}

func TestCleanKeysStripsTrailingJunk(t *testing.T) {
	n := dumptree.NewMap()
	n.Set("Estimated power use (mAh):", dumptree.NewLeaf("x"))
	n.Set("plain", dumptree.NewLeaf("y"))

	cleaned := cleanKeys(n)
	if _, ok := cleaned.Get("Estimated power use (mAh"); !ok {
		t.Errorf("cleanKeys keys = %v, want trailing punctuation stripped", cleaned.Keys())
	}
	if _, ok := cleaned.Get("plain"); !ok {
		t.Error("cleanKeys should leave clean keys alone")
	}
}
