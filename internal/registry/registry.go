package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"doorctl/internal/isapi"
)

const (
	appName      = "doorctl"
	registryFile = "devices.json"
)

// Store provides synchronous read/write access to the JSON device/user
// registry. All methods are safe for concurrent use; writes are atomic
// (temp file + rename) to prevent corruption on crash.
type Store struct {
	path string

	mu       sync.Mutex
	registry *Registry
}

// DefaultPath returns the OS-appropriate registry location:
// $XDG_CONFIG_HOME/doorctl/devices.json or $HOME/.config/doorctl/devices.json.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, registryFile), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName, registryFile), nil
}

// Open loads the registry at path, creating an empty in-memory registry
// when the file does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		s.registry = NewRegistry()
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry file: %w", err)
	}
	if reg.Version != 1 {
		return nil, fmt.Errorf("unsupported registry version: %d (expected 1)", reg.Version)
	}
	if reg.Devices == nil {
		reg.Devices = []Device{}
	}
	if reg.Users == nil {
		reg.Users = []User{}
	}

	s.registry = &reg
	return s, nil
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

// Lookup returns the device registered at address. An unknown address is a
// NotFound error from the isapi taxonomy.
func (s *Store) Lookup(address string) (Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.registry.Devices {
		if d.Address == address {
			return d, nil
		}
	}
	return Device{}, isapi.NewNotFoundError(fmt.Sprintf("unknown device %s", address))
}

// List returns a copy of all registered devices.
func (s *Store) List() []Device {
	s.mu.Lock()
	defer s.mu.Unlock()

	devices := make([]Device, len(s.registry.Devices))
	copy(devices, s.registry.Devices)
	return devices
}

// Add registers a device, replacing any existing entry with the same
// address, and persists the registry.
func (s *Store) Add(device Device) error {
	if device.Door < 1 {
		device.Door = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i, d := range s.registry.Devices {
		if d.Address == device.Address {
			s.registry.Devices[i] = device
			replaced = true
			break
		}
	}
	if !replaced {
		s.registry.Devices = append(s.registry.Devices, device)
	}

	return s.save()
}

// Remove deletes the device at address and persists the registry. Removing
// an unknown address is a NotFound error.
func (s *Store) Remove(address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, d := range s.registry.Devices {
		if d.Address == address {
			s.registry.Devices = append(s.registry.Devices[:i], s.registry.Devices[i+1:]...)
			return s.save()
		}
	}
	return isapi.NewNotFoundError(fmt.Sprintf("unknown device %s", address))
}

// UpdateState records the new door state for a device and persists the
// registry. Unknown addresses are ignored so a status writer never races a
// concurrent removal into an error.
func (s *Store) UpdateState(address, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, d := range s.registry.Devices {
		if d.Address == address {
			s.registry.Devices[i].State = state
			s.registry.Devices[i].LastSeen = time.Now()
			return s.save()
		}
	}
	return nil
}

// UpdateOnline records the result of a reachability probe.
func (s *Store) UpdateOnline(address string, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, d := range s.registry.Devices {
		if d.Address == address {
			s.registry.Devices[i].Online = online
			if online {
				s.registry.Devices[i].LastSeen = time.Now()
			}
			return s.save()
		}
	}
	return nil
}

// Allowed reports whether the named user may control the device at address.
// A user entry listing "*" is granted every device.
func (s *Store) Allowed(user, address string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.registry.Users {
		if u.Name != user {
			continue
		}
		for _, d := range u.Devices {
			if d == WildcardDevice || d == address {
				return true
			}
		}
		return false
	}
	return false
}

// AddUser registers a user, replacing any existing entry with the same
// name, and persists the registry.
func (s *Store) AddUser(user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, u := range s.registry.Users {
		if u.Name == user.Name {
			s.registry.Users[i] = user
			return s.save()
		}
	}
	s.registry.Users = append(s.registry.Users, user)
	return s.save()
}

// save writes the registry to disk. Callers must hold s.mu.
func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	data, err := json.MarshalIndent(s.registry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	data = append(data, '\n')

	// Write to temporary file first (atomic write)
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary registry file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save registry file: %w", err)
	}

	return nil
}
