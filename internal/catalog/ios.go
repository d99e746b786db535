package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nvoss/phonedump/internal/logging"
)

// TCCPrefix is the prefix Apple uses for TCC service keys. It is stripped
// when deriving a default display label for a previously unseen key.
const TCCPrefix = "kTCCService"

// Backend persists the iOS permission catalog. Load returns the stored
// entries (an empty map when nothing has been stored yet); Save replaces
// them.
type Backend interface {
	Load() (map[string]string, error)
	Save(entries map[string]string) error
}

// FileBackend stores the catalog as a JSON object on disk
type FileBackend struct {
	Path string
}

// Load reads the catalog file. A missing file is not an error; the
// catalog starts empty and grows as keys are seen.
func (b *FileBackend) Load() (map[string]string, error) {
	data, err := os.ReadFile(b.Path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", b.Path, err)
	}
	entries := map[string]string{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", b.Path, err)
	}
	return entries, nil
}

// Save writes the catalog atomically (temp file + rename), the same
// discipline the config registry uses, so a crash mid-write cannot leave a
// truncated catalog behind.
func (b *FileBackend) Save(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(b.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}
	tmp := b.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	if err := os.Rename(tmp, b.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

// MemoryBackend keeps the catalog in memory. Used by tests and by callers
// that do not want the self-extending behavior persisted.
type MemoryBackend struct {
	entries map[string]string
}

// NewMemoryBackend creates a memory backend seeded with the given entries
func NewMemoryBackend(seed map[string]string) *MemoryBackend {
	entries := make(map[string]string, len(seed))
	for k, v := range seed {
		entries[k] = v
	}
	return &MemoryBackend{entries: entries}
}

// Load returns a copy of the stored entries
func (b *MemoryBackend) Load() (map[string]string, error) {
	out := make(map[string]string, len(b.entries))
	for k, v := range b.entries {
		out[k] = v
	}
	return out, nil
}

// Save replaces the stored entries
func (b *MemoryBackend) Save(entries map[string]string) error {
	b.entries = make(map[string]string, len(entries))
	for k, v := range entries {
		b.entries[k] = v
	}
	return nil
}

// Store is the self-extending iOS permission catalog. It is safe for
// concurrent use; the read-modify-write against the backend is serialized
// by an internal mutex.
type Store struct {
	mu      sync.Mutex
	backend Backend
	entries map[string]string
	loaded  bool
}

// NewStore creates a catalog store over the given backend
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

func (s *Store) ensureLoaded() error {
	if s.loaded {
		return nil
	}
	entries, err := s.backend.Load()
	if err != nil {
		return err
	}
	s.entries = entries
	s.loaded = true
	return nil
}

// Get looks up a key without extending the catalog
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		logging.Warn("Failed to load permission catalog", zap.Error(err))
		return "", false
	}
	label, ok := s.entries[key]
	return label, ok
}

// GetOrInsert returns the label for key, inserting and persisting
// defaultFn(key) when the key has never been seen before.
func (s *Store) GetOrInsert(key string, defaultFn func(string) string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return "", err
	}
	if label, ok := s.entries[key]; ok {
		return label, nil
	}
	label := defaultFn(key)
	s.entries[key] = label
	logging.Info("Recording previously unseen permission",
		zap.String("key", key),
		zap.String("label", label),
	)
	if err := s.backend.Save(s.entries); err != nil {
		return label, fmt.Errorf("failed to persist catalog entry %q: %w", key, err)
	}
	return label, nil
}

// Keys returns the catalog's keys in sorted order
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return nil
	}
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultTCCLabel is the default label for an unseen TCC permission key:
// the key with the kTCCService prefix stripped.
func DefaultTCCLabel(key string) string {
	return strings.TrimPrefix(key, TCCPrefix)
}

// LoadDeviceIdentifiers reads the iOS device-identifier catalog, a JSON
// object mapping ProductType (e.g. "iPhone14,2") to a marketing name.
func LoadDeviceIdentifiers(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read device identifiers: %w", err)
	}
	ids := map[string]string{}
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to parse device identifiers: %w", err)
	}
	return ids, nil
}
