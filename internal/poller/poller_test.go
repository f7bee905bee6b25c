package poller

import (
	"path/filepath"
	"testing"

	"doorctl/internal/registry"
)

func testStore(t *testing.T, devices ...registry.Device) *registry.Store {
	t.Helper()
	store, err := registry.Open(filepath.Join(t.TempDir(), "devices.json"))
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range devices {
		if err := store.Add(d); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func TestNew_RejectsBadSchedule(t *testing.T) {
	if _, err := New("not a schedule", testStore(t), nil); err == nil {
		t.Error("New() should reject an invalid cron expression")
	}
}

func TestNew_AcceptsStandardAndDescriptorSchedules(t *testing.T) {
	for _, schedule := range []string{"*/5 * * * *", "@every 1m", "@hourly"} {
		if _, err := New(schedule, testStore(t), nil); err != nil {
			t.Errorf("New(%q) error = %v", schedule, err)
		}
	}
}

func TestSweep_RecordsReachability(t *testing.T) {
	store := testStore(t,
		registry.Device{Address: "192.168.1.50", Login: "admin", Door: 1},
		registry.Device{Address: "192.168.1.51", Login: "admin", Door: 1},
	)

	p, err := New("@every 1m", store, nil)
	if err != nil {
		t.Fatal(err)
	}
	p.probe = func(addr string) bool { return addr == "192.168.1.50" }

	p.Sweep()

	up, _ := store.Lookup("192.168.1.50")
	if !up.Online {
		t.Error("reachable device should be marked online")
	}
	down, _ := store.Lookup("192.168.1.51")
	if down.Online {
		t.Error("unreachable device should be marked offline")
	}
}

func TestSweep_UpdatesLastSeenOnline(t *testing.T) {
	store := testStore(t, registry.Device{Address: "192.168.1.50", Login: "admin", Door: 1})

	p, err := New("@every 1m", store, nil)
	if err != nil {
		t.Fatal(err)
	}
	p.probe = func(string) bool { return true }

	p.Sweep()

	d, _ := store.Lookup("192.168.1.50")
	if d.LastSeen.IsZero() {
		t.Error("LastSeen should be set for a reachable device")
	}
}
