package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStoreGetOrInsert(t *testing.T) {
	backend := NewMemoryBackend(map[string]string{
		"kTCCServiceCamera": "Camera",
	})
	store := NewStore(backend)

	// Known key: returned as-is, nothing written.
	label, err := store.GetOrInsert("kTCCServiceCamera", DefaultTCCLabel)
	if err != nil {
		t.Fatalf("GetOrInsert() error = %v", err)
	}
	if label != "Camera" {
		t.Errorf("label = %q, want %q", label, "Camera")
	}

	// Unseen key: default label derived and persisted.
	label, err = store.GetOrInsert("kTCCServiceMicrophone", DefaultTCCLabel)
	if err != nil {
		t.Fatalf("GetOrInsert() error = %v", err)
	}
	if label != "Microphone" {
		t.Errorf("label = %q, want %q", label, "Microphone")
	}

	saved, _ := backend.Load()
	if saved["kTCCServiceMicrophone"] != "Microphone" {
		t.Error("unseen key was not persisted to the backend")
	}

	// Second lookup sees the stored entry.
	if got, ok := store.Get("kTCCServiceMicrophone"); !ok || got != "Microphone" {
		t.Errorf("Get() = %q, %v", got, ok)
	}
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ios_permissions.json")
	backend := &FileBackend{Path: path}

	// Missing file loads as an empty catalog.
	entries, err := backend.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("fresh catalog has %d entries", len(entries))
	}

	want := map[string]string{"kTCCServicePhotos": "Photos"}
	if err := backend.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := backend.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got["kTCCServicePhotos"] != "Photos" {
		t.Errorf("reloaded entries = %v", got)
	}
}

func TestFileBackendCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ios_permissions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (&FileBackend{Path: path}).Load(); err == nil {
		t.Fatal("expected error for corrupt catalog file")
	}
}

func TestLoadDeviceIdentifiers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.json")
	if err := os.WriteFile(path, []byte(`{"iPhone14,2":"iPhone 13 Pro"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	ids, err := LoadDeviceIdentifiers(path)
	if err != nil {
		t.Fatalf("LoadDeviceIdentifiers() error = %v", err)
	}
	if ids["iPhone14,2"] != "iPhone 13 Pro" {
		t.Errorf("ids = %v", ids)
	}
}
