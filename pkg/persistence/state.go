package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// RuntimeState contains the retained state of one runtime.
type RuntimeState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// RunID is the trace run ID of the run that saved the state.
	RunID string `json:"run_id,omitempty"`

	// Devices holds retained values by device name.
	Devices map[string]DeviceState `json:"devices,omitempty"`
}

// DeviceState is the retained state of one device.
type DeviceState struct {
	// Class guards against restoring values into a different device class
	// that reuses the name.
	Class string `json:"class"`

	// Values are the device-defined retained values.
	Values map[string]any `json:"values"`
}

// Names returns the device names in sorted order.
func (s *RuntimeState) Names() []string {
	names := make([]string, 0, len(s.Devices))
	for name := range s.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the retained values of name if the class matches.
func (s *RuntimeState) Lookup(name, class string) (map[string]any, bool) {
	if s == nil {
		return nil, false
	}
	ds, ok := s.Devices[name]
	if !ok || ds.Class != class {
		return nil, false
	}
	return ds.Values, true
}

// Put records the retained values of one device.
func (s *RuntimeState) Put(name, class string, values map[string]any) {
	if s.Devices == nil {
		s.Devices = make(map[string]DeviceState)
	}
	s.Devices[name] = DeviceState{Class: class, Values: values}
}

// StateStore manages persistence of runtime state to a JSON file.
type StateStore struct {
	mu   sync.Mutex
	path string
}

// NewStateStore creates a new state store.
func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Path returns the state file path.
func (s *StateStore) Path() string {
	return s.path
}

// Save persists the state to disk. The file is replaced atomically.
func (s *StateStore) Save(state *RuntimeState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load reads the state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *StateStore) Load() (*RuntimeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &RuntimeState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}

	return state, nil
}

// Clear removes the state file.
func (s *StateStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
