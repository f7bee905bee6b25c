// Package ui implements the interactive doorctl wizard: a device picker
// with single-key door commands.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"doorctl/internal/isapi"
	"doorctl/internal/registry"
)

// opCompleteMsg carries the outcome of an async door operation.
type opCompleteMsg struct {
	device string
	state  string
	result isapi.ControlResult
	err    error
}

// wizardKeyMap defines key bindings for the wizard screen.
type wizardKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Close  key.Binding
	Resume key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings shown in the mini help view.
func (k wizardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Close, k.Resume, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k wizardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Open, k.Close, k.Resume, k.Quit},
	}
}

func defaultKeyMap() wizardKeyMap {
	return wizardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open"),
		),
		Close: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "close"),
		),
		Resume: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "resume"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Model is the wizard's bubbletea model.
type Model struct {
	devices      []registry.Device
	registryPath string

	cursor    int
	operating bool
	lastOp    *opCompleteMsg

	spinner spinner.Model
	help    help.Model
	keys    wizardKeyMap
	width   int

	// operate runs one door command; swapped out by tests
	operate func(target isapi.DeviceTarget, cmd isapi.DoorCommand, doorNo int) (isapi.ControlResult, error)
}

// NewModel builds the wizard over the given registry store and
// controller.
func NewModel(store *registry.Store, ctrl *isapi.Controller) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		devices:      store.List(),
		registryPath: store.Path(),
		spinner:      s,
		help:         help.New(),
		keys:         defaultKeyMap(),
		width:        GetTerminalWidth(),
		operate: func(target isapi.DeviceTarget, cmd isapi.DoorCommand, doorNo int) (isapi.ControlResult, error) {
			return ctrl.SetDoorState(context.Background(), target, cmd, doorNo)
		},
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case opCompleteMsg:
		m.operating = false
		m.lastOp = &msg
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.operating {
			// Only quitting is allowed while a command is in flight
			if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.devices)-1 {
				m.cursor++
			}

		case key.Matches(msg, m.keys.Open):
			return m.startOperation(isapi.CommandOpen)

		case key.Matches(msg, m.keys.Close):
			return m.startOperation(isapi.CommandClose)

		case key.Matches(msg, m.keys.Resume):
			return m.startOperation(isapi.CommandResume)
		}
	}

	return m, nil
}

// startOperation kicks off a door command against the focused device.
func (m Model) startOperation(cmd isapi.DoorCommand) (tea.Model, tea.Cmd) {
	if len(m.devices) == 0 {
		return m, nil
	}

	device := m.devices[m.cursor]
	m.operating = true
	m.lastOp = nil

	operate := m.operate
	return m, func() tea.Msg {
		target := isapi.DeviceTarget{
			Host:   device.Address,
			Login:  device.Login,
			Secret: device.Password,
		}
		result, err := operate(target, cmd, device.Door)
		return opCompleteMsg{
			device: device.Address,
			state:  cmd.String(),
			result: result,
			err:    err,
		}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("doorctl"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(m.registryPath))
	b.WriteString("\n\n")

	if len(m.devices) == 0 {
		b.WriteString(SubtitleStyle.Render("No devices registered. Add one with: doorctl devices add"))
		b.WriteString("\n")
		return b.String()
	}

	for i, d := range m.devices {
		marker := OfflineStyle.Render("○")
		if d.Online {
			marker = OnlineStyle.Render("●")
		}

		name := d.Name
		if name == "" {
			name = d.Address
		}
		row := fmt.Sprintf("%s %s (%s) door %d", marker, name, d.Address, d.Door)
		if d.State != "" {
			row += fmt.Sprintf(" [%s]", d.State)
		}

		if i == m.cursor {
			b.WriteString(SelectedRowStyle.Render("  > " + row))
		} else {
			b.WriteString(RowStyle.Render("    " + row))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.operating:
		b.WriteString(OperatingStyle.Render(m.spinner.View() + " sending command..."))
		b.WriteString("\n")
	case m.lastOp != nil:
		if m.lastOp.err != nil {
			b.WriteString(ResultFailStyle.Render(fmt.Sprintf("%s %s %s: %v",
				FailureMarker, m.lastOp.device, m.lastOp.state, m.lastOp.err)))
		} else if m.lastOp.result.Succeeded {
			b.WriteString(ResultOKStyle.Render(fmt.Sprintf("%s %s %s: %s",
				SuccessMarker, m.lastOp.device, m.lastOp.state, m.lastOp.result.Message)))
		} else {
			b.WriteString(ResultFailStyle.Render(fmt.Sprintf("%s %s %s: %s",
				FailureMarker, m.lastOp.device, m.lastOp.state, m.lastOp.result.Message)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))
	b.WriteString("\n")

	return b.String()
}

// Run launches the wizard and blocks until the user quits.
func Run(store *registry.Store, ctrl *isapi.Controller) error {
	p := tea.NewProgram(NewModel(store, ctrl))
	_, err := p.Run()
	return err
}
