package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/nvoss/phonedump/internal/android"
)

// testDump is a trimmed device snapshot: package records plus app-ops
// events for one of them.
const testDump = `DUMP OF SERVICE package
Packages:
  Package [com.amazon.mShop.android.shopping] (1a2b3c):
    userId=10083
    versionCode=1241441
    versionName=18.9.0.100
    installerPackageName=com.android.vending
    firstInstallTime=2019-09-29 15:36:13
    lastUpdateTime=2020-05-24 18:23:43
    flags=[ HAS_CODE ]
    install permissions:
      android.permission.INTERNET: granted=true
      android.permission.CAMERA: granted=true
  Package [com.example.sideloaded] (9f8e7d):
    userId=10099
    firstInstallTime=2020-01-01 00:00:00
    lastUpdateTime=2020-01-02 00:00:00
    install permissions:
      android.permission.READ_SMS: granted=true
  Package [com.android.settings] (0a0b0c):
    userId=1000
    flags=[ SYSTEM PRIVILEGED ]
    install permissions:
      android.permission.INTERNET: granted=true
--------------------------------------------
DUMP OF SERVICE appops
Current AppOps Service state:
  Uid u0a83:
    Package com.amazon.mShop.android.shopping:
      CAMERA: mode=0; time=+15m2s867ms ago
`

const testCatalogCSV = `permission,package,label,description,protectionLevel
android.permission.CAMERA,android,take pictures and videos,camera access,dangerous
android.permission.INTERNET,android,have full network access,network access,normal
`

// newTestServer builds a server over a temp dump directory holding one
// dump named "device"
func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "device.txt"), []byte(testDump), 0o644); err != nil {
		t.Fatalf("writing fixture dump: %v", err)
	}
	csvPath := filepath.Join(dir, "permissions.csv")
	if err := os.WriteFile(csvPath, []byte(testCatalogCSV), 0o644); err != nil {
		t.Fatalf("writing fixture catalog: %v", err)
	}

	s, err := New(&Config{
		Host:           "127.0.0.1",
		Port:           0,
		DumpDir:        dir,
		PermissionsCSV: csvPath,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, wantStatus int, v any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decoding %s response: %v", url, err)
		}
	}
}

func TestServer_Dumps(t *testing.T) {
	_, ts := newTestServer(t)

	var resp dumpsResponse
	getJSON(t, ts.URL+"/api/dumps", http.StatusOK, &resp)

	if len(resp.Dumps) != 1 || resp.Dumps[0] != "device" {
		t.Errorf("dumps = %v, want [device]", resp.Dumps)
	}
}

func TestServer_Sections(t *testing.T) {
	_, ts := newTestServer(t)

	var resp sectionsResponse
	getJSON(t, ts.URL+"/api/sections?dump=device", http.StatusOK, &resp)

	want := []string{"package", "appops"}
	if len(resp.Sections) != len(want) {
		t.Fatalf("sections = %v, want %v", resp.Sections, want)
	}
	for i, name := range want {
		if resp.Sections[i] != name {
			t.Errorf("sections[%d] = %q, want %q", i, resp.Sections[i], name)
		}
	}
}

func TestServer_Apps(t *testing.T) {
	_, ts := newTestServer(t)

	var all appsResponse
	getJSON(t, ts.URL+"/api/apps?dump=device", http.StatusOK, &all)
	if len(all.Apps) != 3 {
		t.Errorf("all apps = %v, want 3 entries", all.Apps)
	}
	if all.Filter != "all" {
		t.Errorf("default filter = %q, want all", all.Filter)
	}

	var system appsResponse
	getJSON(t, ts.URL+"/api/apps?dump=device&filter=system", http.StatusOK, &system)
	if len(system.Apps) != 1 || system.Apps[0] != "com.android.settings" {
		t.Errorf("system apps = %v, want [com.android.settings]", system.Apps)
	}

	var offstore appsResponse
	getJSON(t, ts.URL+"/api/apps?dump=device&filter=offstore", http.StatusOK, &offstore)
	if len(offstore.Apps) != 1 || offstore.Apps[0] != "com.example.sideloaded" {
		t.Errorf("offstore apps = %v, want [com.example.sideloaded]", offstore.Apps)
	}

	getJSON(t, ts.URL+"/api/apps?dump=device&filter=bogus", http.StatusBadRequest, nil)
}

func TestServer_AppInfo(t *testing.T) {
	_, ts := newTestServer(t)

	var info android.AppInfo
	getJSON(t, ts.URL+"/api/app?dump=device&app=com.amazon.mShop.android.shopping", http.StatusOK, &info)

	if info.AppID != "com.amazon.mShop.android.shopping" {
		t.Errorf("AppID = %q", info.AppID)
	}
	if info.VersionCode != "1241441" {
		t.Errorf("VersionCode = %q, want 1241441", info.VersionCode)
	}

	getJSON(t, ts.URL+"/api/app?dump=device&app=com.not.installed", http.StatusNotFound, nil)
	getJSON(t, ts.URL+"/api/app?dump=device", http.StatusBadRequest, nil)
}

func TestServer_Report(t *testing.T) {
	_, ts := newTestServer(t)

	var report android.PermissionReport
	getJSON(t, ts.URL+"/api/report?dump=device&app=com.amazon.mShop.android.shopping", http.StatusOK, &report)

	if report.AppID != "com.amazon.mShop.android.shopping" {
		t.Errorf("AppID = %q", report.AppID)
	}
	if report.Stats.TotalPermissions != 2 {
		t.Errorf("TotalPermissions = %d, want 2", report.Stats.TotalPermissions)
	}
	if report.Stats.HFPermissions != 2 {
		t.Errorf("HFPermissions = %d, want 2", report.Stats.HFPermissions)
	}

	foundCamera := false
	for _, row := range report.HumanFriendly {
		if row.PermissionAbbrv == "CAMERA" && row.TimeAgo == "+15m2s867ms" {
			foundCamera = true
		}
	}
	if !foundCamera {
		t.Error("report missing joined CAMERA event")
	}
}

func TestServer_InvalidDumpName(t *testing.T) {
	_, ts := newTestServer(t)

	getJSON(t, ts.URL+"/api/sections?dump=..%2Fescape", http.StatusBadRequest, nil)
	getJSON(t, ts.URL+"/api/sections?dump=missing", http.StatusBadRequest, nil)
}

func TestServer_ParseProgress(t *testing.T) {
	_, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/parse?dump=device"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	defer conn.Close()

	var sections []string
	var done *ProgressEvent
	for {
		var ev ProgressEvent
		if err := conn.ReadJSON(&ev); err != nil {
			break
		}
		switch ev.Type {
		case "section":
			sections = append(sections, ev.Section)
		case "done":
			done = &ev
		case "error":
			t.Fatalf("stream error event: %s", ev.Error)
		}
		if done != nil {
			break
		}
	}

	if len(sections) != 2 {
		t.Errorf("streamed sections = %v, want [package appops]", sections)
	}
	if done == nil {
		t.Fatal("stream never sent done event")
	}
	if len(done.Sections) != 2 {
		t.Errorf("done sections = %v, want 2 entries", done.Sections)
	}
}

func TestServer_ParseProgressCached(t *testing.T) {
	_, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/parse?dump=device"

	// First stream parses from text and writes the sidecar cache.
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	for {
		var ev ProgressEvent
		if err := conn.ReadJSON(&ev); err != nil || ev.Type == "done" {
			break
		}
	}
	conn.Close()

	// Second stream must come from the cache.
	conn, _, err = websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("second websocket dial error = %v", err)
	}
	defer conn.Close()

	sawCached := false
	for {
		var ev ProgressEvent
		if err := conn.ReadJSON(&ev); err != nil {
			break
		}
		if ev.Type == "cached" {
			sawCached = true
		}
		if ev.Type == "section" {
			t.Errorf("cached stream parsed section %q", ev.Section)
		}
		if ev.Type == "done" {
			break
		}
	}
	if !sawCached {
		t.Error("second stream never sent cached event")
	}
}

func TestServer_MissingDumpForProgress(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/ws/parse?dump=missing")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
