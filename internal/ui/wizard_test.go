package ui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"doorctl/internal/isapi"
	"doorctl/internal/registry"
)

func testModel(t *testing.T) Model {
	t.Helper()

	store, err := registry.Open(filepath.Join(t.TempDir(), "devices.json"))
	if err != nil {
		t.Fatal(err)
	}
	store.Add(registry.Device{Address: "192.168.1.50", Name: "Front", Login: "admin", Door: 1})
	store.Add(registry.Device{Address: "192.168.1.51", Name: "Back", Login: "admin", Door: 2})

	m := NewModel(store, isapi.NewController(nil))
	m.operate = func(target isapi.DeviceTarget, cmd isapi.DoorCommand, doorNo int) (isapi.ControlResult, error) {
		return isapi.ControlResult{Succeeded: true, Message: "configure: ok; control: ok"}, nil
	}
	return m
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_CursorMovement(t *testing.T) {
	m := testModel(t)

	next, _ := m.Update(keyMsg("j"))
	m = next.(Model)
	if m.cursor != 1 {
		t.Errorf("cursor = %d after down, want 1", m.cursor)
	}

	// Bottom of the list, stays put
	next, _ = m.Update(keyMsg("j"))
	m = next.(Model)
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}

	next, _ = m.Update(keyMsg("k"))
	m = next.(Model)
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up, want 0", m.cursor)
	}
}

func TestModel_OpenRunsCommandAgainstFocusedDevice(t *testing.T) {
	m := testModel(t)

	var gotHost string
	var gotCmd isapi.DoorCommand
	var gotDoor int
	m.operate = func(target isapi.DeviceTarget, cmd isapi.DoorCommand, doorNo int) (isapi.ControlResult, error) {
		gotHost = target.Host
		gotCmd = cmd
		gotDoor = doorNo
		return isapi.ControlResult{Succeeded: true}, nil
	}

	next, _ := m.Update(keyMsg("j"))
	m = next.(Model)
	next, cmd := m.Update(keyMsg("o"))
	m = next.(Model)

	if !m.operating {
		t.Error("model should be operating after pressing o")
	}
	if cmd == nil {
		t.Fatal("pressing o should produce a command")
	}

	msg := cmd()
	op, ok := msg.(opCompleteMsg)
	if !ok {
		t.Fatalf("command produced %T, want opCompleteMsg", msg)
	}
	if gotHost != "192.168.1.51" || gotCmd != isapi.CommandOpen || gotDoor != 2 {
		t.Errorf("operate called with host=%s cmd=%v door=%d", gotHost, gotCmd, gotDoor)
	}
	if op.state != "open" {
		t.Errorf("op.state = %q", op.state)
	}
}

func TestModel_OpCompleteClearsOperating(t *testing.T) {
	m := testModel(t)

	next, _ := m.Update(keyMsg("c"))
	m = next.(Model)
	if !m.operating {
		t.Fatal("expected operating state")
	}

	next, _ = m.Update(opCompleteMsg{
		device: "192.168.1.50",
		state:  "close",
		result: isapi.ControlResult{Succeeded: true, Message: "ok"},
	})
	m = next.(Model)

	if m.operating {
		t.Error("operating should clear after opCompleteMsg")
	}
	if m.lastOp == nil || m.lastOp.state != "close" {
		t.Errorf("lastOp = %+v", m.lastOp)
	}
}

func TestModel_KeysIgnoredWhileOperating(t *testing.T) {
	m := testModel(t)

	next, _ := m.Update(keyMsg("o"))
	m = next.(Model)

	next, cmd := m.Update(keyMsg("r"))
	m = next.(Model)
	if cmd != nil {
		t.Error("commands must not start while one is in flight")
	}
}

func TestModel_ViewShowsDevicesAndResult(t *testing.T) {
	m := testModel(t)

	view := m.View()
	if !strings.Contains(view, "Front") || !strings.Contains(view, "Back") {
		t.Error("view missing device names")
	}

	next, _ := m.Update(opCompleteMsg{
		device: "192.168.1.50",
		state:  "open",
		result: isapi.ControlResult{Succeeded: true, Message: "configure: ok; control: ok"},
	})
	m = next.(Model)

	view = m.View()
	if !strings.Contains(view, "configure: ok") {
		t.Error("view missing operation result")
	}
}

func TestModel_EmptyRegistryView(t *testing.T) {
	store, err := registry.Open(filepath.Join(t.TempDir(), "devices.json"))
	if err != nil {
		t.Fatal(err)
	}
	m := NewModel(store, isapi.NewController(nil))

	if !strings.Contains(m.View(), "No devices registered") {
		t.Error("empty registry view missing hint")
	}
}
