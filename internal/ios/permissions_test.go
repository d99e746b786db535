package ios

import (
	"testing"
)

func TestPermissionsFromEntitlements(t *testing.T) {
	seed := map[string]string{
		"kTCCServiceCamera":     "camera",
		"kTCCServiceMicrophone": "microphone",
	}
	d := openFixture(t, seed)

	perms, err := d.Permissions("com.apple.mobilesafari")
	if err != nil {
		t.Fatalf("Permissions() error = %v", err)
	}

	// Both entitlement arrays contribute; kTCCServicePhotos is new to the
	// catalog and gets a derived label.
	want := map[string]string{
		"Camera":     grantedBySystem,
		"Microphone": grantedBySystem,
		"Photos":     grantedBySystem,
	}
	if len(perms) != len(want) {
		t.Fatalf("Permissions() = %v, want %d entries", perms, len(want))
	}
	for _, p := range perms {
		reason, ok := want[p.Label]
		if !ok {
			t.Errorf("unexpected permission %q", p.Label)
			continue
		}
		if p.Reason != reason {
			t.Errorf("reason for %q = %q, want %q", p.Label, p.Reason, reason)
		}
	}
}

func TestPermissionsExtendCatalog(t *testing.T) {
	store := testStore(nil)
	d, err := Open(writeFixture(t, fixtureDump), store, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, err := d.Permissions("com.apple.mobilesafari"); err != nil {
		t.Fatalf("Permissions() error = %v", err)
	}

	// The unseen TCC keys must now be recorded with the prefix stripped.
	for key, wantLabel := range map[string]string{
		"kTCCServiceCamera": "Camera",
		"kTCCServicePhotos": "Photos",
	} {
		label, ok := store.Get(key)
		if !ok {
			t.Errorf("catalog should have learned %q", key)
			continue
		}
		if capitalize(label) != wantLabel {
			t.Errorf("label for %q = %q, want %q", key, label, wantLabel)
		}
	}
}

func TestPermissionsThirdPartyKeys(t *testing.T) {
	seed := map[string]string{"kTCCServiceLocation": "location"}
	d := openFixture(t, seed)

	perms, err := d.Permissions("com.example.tracker")
	if err != nil {
		t.Fatalf("Permissions() error = %v", err)
	}
	if len(perms) != 1 {
		t.Fatalf("Permissions() = %v, want one entry", perms)
	}
	if perms[0].Label != "Location" {
		t.Errorf("Label = %q, want Location", perms[0].Label)
	}
	// The developer-provided reason is the key's metadata value.
	if perms[0].Reason != "We use your location to find nearby friends." {
		t.Errorf("Reason = %q, want the developer string", perms[0].Reason)
	}
}

func TestDeviceName(t *testing.T) {
	models := map[string]string{"iPhone12,3": "iPhone 11 Pro"}
	d, err := Open(writeFixture(t, fixtureDump), testStore(nil), models)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if got := d.DeviceName(); got != "iPhone 11 Pro (running iOS 16.2)" {
		t.Errorf("DeviceName() = %q", got)
	}
}

func TestDeviceNameFallback(t *testing.T) {
	d := openFixture(t, nil) // no identifier catalog

	want := "iPhone (Model MWC72 LL/A) (running iOS 16.2)"
	if got := d.DeviceName(); got != want {
		t.Errorf("DeviceName() = %q, want %q", got, want)
	}
}

func TestCapitalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"camera", "Camera"},
		{"Photos", "Photos"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := capitalize(tt.in); got != tt.want {
			t.Errorf("capitalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
