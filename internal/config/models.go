package config

import "time"

// Registry represents the entire user configuration file.
// This stores metadata about scanned devices and application preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by device serial number
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device represents client-side metadata for a single scanned phone.
// This is keyed by the device's serial number in the Registry. Nothing
// here comes from the phone itself; it is the reviewer's bookkeeping.
type Device struct {
	Nickname    string              `yaml:"nickname,omitempty"`     // User-friendly name
	Kind        string              `yaml:"kind,omitempty"`         // "android" or "ios"
	DumpPath    string              `yaml:"dump_path,omitempty"`    // Last dump opened for this device
	LastScanned time.Time           `yaml:"last_scanned,omitempty"` // Last scan time
	AppNotes    map[string]*AppNote `yaml:"app_notes,omitempty"`    // Reviewer notes (keyed by appId)
}

// AppNote is a reviewer's annotation on one app found on a device
type AppNote struct {
	Note    string `yaml:"note,omitempty"`
	Flagged bool   `yaml:"flagged,omitempty"` // Marked for follow-up
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DumpDir               string   `yaml:"dump_dir,omitempty"`                // Where dump files are kept
	AndroidPermissionsCSV string   `yaml:"android_permissions_csv,omitempty"` // Android permission catalog path
	IOSPermissionsJSON    string   `yaml:"ios_permissions_json,omitempty"`    // iOS permission catalog path
	DeviceIdentifiersJSON string   `yaml:"device_identifiers_json,omitempty"` // iOS model-name catalog path
	ApprovedInstallers    []string `yaml:"approved_installers,omitempty"`     // Extra installers not counted offstore
	TimestampLayout       string   `yaml:"timestamp_layout,omitempty"`        // Layout for resolved timestamps
	AutoDiscover          bool     `yaml:"auto_discover"`                     // Enable mDNS device discovery on startup
	DiscoverTimeout       int      `yaml:"discover_timeout"`                  // mDNS discovery timeout in seconds
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Devices: make(map[string]*Device),
		Preferences: &Preferences{
			DumpDir:         "dumps",
			AutoDiscover:    true,
			DiscoverTimeout: 10,
		},
	}
}

// GetDevice retrieves device metadata by serial number.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(serial string) *Device {
	return r.Devices[serial]
}

// EnsureDevice ensures a device entry exists in the registry.
// If the device doesn't exist, creates a new entry with default values.
// Returns the device entry (existing or newly created).
func (r *Registry) EnsureDevice(serial string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	if device, exists := r.Devices[serial]; exists {
		return device
	}

	device := &Device{
		AppNotes: make(map[string]*AppNote),
	}
	r.Devices[serial] = device
	return device
}

// UpdateDeviceScan records the dump path, kind and scan time for a device.
func (r *Registry) UpdateDeviceScan(serial, kind, dumpPath string) {
	device := r.EnsureDevice(serial)
	device.Kind = kind
	device.DumpPath = dumpPath
	device.LastScanned = time.Now()
}

// SetAppNote sets or updates the reviewer note for one app on a device.
func (r *Registry) SetAppNote(serial, appID, note string, flagged bool) {
	device := r.EnsureDevice(serial)

	if device.AppNotes == nil {
		device.AppNotes = make(map[string]*AppNote)
	}

	device.AppNotes[appID] = &AppNote{
		Note:    note,
		Flagged: flagged,
	}
}

// SetDeviceNickname sets a user-friendly nickname for a device.
func (r *Registry) SetDeviceNickname(serial, nickname string) {
	device := r.EnsureDevice(serial)
	device.Nickname = nickname
}
