package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"doorctl/internal/isapi"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devices.json")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return store
}

func TestOpen_MissingFileIsEmptyRegistry(t *testing.T) {
	store := tempStore(t)
	if got := store.List(); len(got) != 0 {
		t.Errorf("List() = %v, want empty", got)
	}
}

func TestOpen_RejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	os.WriteFile(path, []byte(`{"version": 9}`), 0600)

	if _, err := Open(path); err == nil {
		t.Error("Open() should reject unsupported registry versions")
	}
}

func TestOpen_RejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")
	os.WriteFile(path, []byte(`{"version": 1,`), 0600)

	if _, err := Open(path); err == nil {
		t.Error("Open() should reject malformed JSON")
	}
}

func TestAddAndLookup(t *testing.T) {
	store := tempStore(t)

	device := Device{Address: "192.168.1.50", Login: "admin", Password: "12345", Door: 1, Name: "front"}
	if err := store.Add(device); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got, err := store.Lookup("192.168.1.50")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got.Login != "admin" || got.Name != "front" {
		t.Errorf("Lookup() = %+v", got)
	}
}

func TestLookup_UnknownIsNotFound(t *testing.T) {
	store := tempStore(t)

	_, err := store.Lookup("10.0.0.9")
	if err == nil {
		t.Fatal("Lookup() should fail for unknown device")
	}
	if !isapi.IsNotFoundError(err) {
		t.Errorf("error should be a not-found failure, got %v", err)
	}
}

func TestAdd_ReplacesExistingAddress(t *testing.T) {
	store := tempStore(t)

	store.Add(Device{Address: "192.168.1.50", Login: "admin", Password: "old", Door: 1})
	store.Add(Device{Address: "192.168.1.50", Login: "admin", Password: "new", Door: 2})

	if devices := store.List(); len(devices) != 1 {
		t.Fatalf("List() = %d devices, want 1", len(devices))
	}
	got, _ := store.Lookup("192.168.1.50")
	if got.Password != "new" || got.Door != 2 {
		t.Errorf("Lookup() = %+v, want replaced entry", got)
	}
}

func TestAdd_DefaultsDoorToOne(t *testing.T) {
	store := tempStore(t)
	store.Add(Device{Address: "192.168.1.50", Login: "admin", Password: "x"})

	got, _ := store.Lookup("192.168.1.50")
	if got.Door != 1 {
		t.Errorf("Door = %d, want 1", got.Door)
	}
}

func TestRemove(t *testing.T) {
	store := tempStore(t)
	store.Add(Device{Address: "192.168.1.50", Login: "admin", Password: "x", Door: 1})

	if err := store.Remove("192.168.1.50"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := store.Lookup("192.168.1.50"); !isapi.IsNotFoundError(err) {
		t.Error("device should be gone after Remove()")
	}

	if err := store.Remove("192.168.1.50"); !isapi.IsNotFoundError(err) {
		t.Errorf("Remove() of unknown device should be not-found, got %v", err)
	}
}

func TestUpdateState(t *testing.T) {
	store := tempStore(t)
	store.Add(Device{Address: "192.168.1.50", Login: "admin", Password: "x", Door: 1})

	if err := store.UpdateState("192.168.1.50", "open"); err != nil {
		t.Fatalf("UpdateState() error = %v", err)
	}

	got, _ := store.Lookup("192.168.1.50")
	if got.State != "open" {
		t.Errorf("State = %s, want open", got.State)
	}
	if got.LastSeen.IsZero() {
		t.Error("LastSeen should be set")
	}

	// Unknown addresses are ignored, not errors
	if err := store.UpdateState("10.9.9.9", "open"); err != nil {
		t.Errorf("UpdateState() for unknown device = %v, want nil", err)
	}
}

func TestAllowed(t *testing.T) {
	store := tempStore(t)
	store.AddUser(User{Name: "alice", Devices: []string{"192.168.1.50"}})
	store.AddUser(User{Name: "bob", Devices: []string{WildcardDevice}})

	tests := []struct {
		name    string
		user    string
		address string
		want    bool
	}{
		{name: "explicit grant", user: "alice", address: "192.168.1.50", want: true},
		{name: "no grant for other device", user: "alice", address: "192.168.1.51", want: false},
		{name: "wildcard grants everything", user: "bob", address: "172.16.0.3", want: true},
		{name: "unknown user denied", user: "mallory", address: "192.168.1.50", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := store.Allowed(tt.user, tt.address); got != tt.want {
				t.Errorf("Allowed(%s, %s) = %v, want %v", tt.user, tt.address, got, tt.want)
			}
		})
	}
}

func TestPersistence_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	store.Add(Device{Address: "192.168.1.50", Login: "admin", Password: "12345", Door: 2})
	store.AddUser(User{Name: "alice", Devices: []string{"*"}})

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if len(reopened.List()) != 1 {
		t.Errorf("reopened devices = %d, want 1", len(reopened.List()))
	}
	if !reopened.Allowed("alice", "anything") {
		t.Error("reopened registry should keep the wildcard grant")
	}

	// The on-disk format stays plain JSON an operator can edit
	data, _ := os.ReadFile(path)
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Errorf("registry file is not valid JSON: %v", err)
	}
}
