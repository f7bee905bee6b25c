package isapi

import "fmt"

// DoorCommand is a requested door-state transition.
type DoorCommand int

const (
	// CommandOpen holds the door permanently open
	CommandOpen DoorCommand = 1
	// CommandClose holds the door permanently closed
	CommandClose DoorCommand = 2
	// CommandResume returns the door to normal card-controlled operation
	CommandResume DoorCommand = 3
)

// String returns the human-readable state name used in logs and summaries
func (c DoorCommand) String() string {
	switch c {
	case CommandOpen:
		return "open"
	case CommandClose:
		return "close"
	case CommandResume:
		return "resume"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

// Valid reports whether c is one of the three supported commands
func (c DoorCommand) Valid() bool {
	return c == CommandOpen || c == CommandClose || c == CommandResume
}

// ParseCommand maps a numeric state (1, 2, 3) to a DoorCommand.
func ParseCommand(state int) (DoorCommand, error) {
	cmd := DoorCommand(state)
	if !cmd.Valid() {
		return 0, fmt.Errorf("state must be 1 (open), 2 (close) or 3 (resume), got %d", state)
	}
	return cmd, nil
}

// DeviceTarget identifies one panel for the duration of a control operation.
// It is supplied by the caller and never mutated.
type DeviceTarget struct {
	// Host is the panel address (IP or hostname)
	Host string

	// Port is the HTTP port; panels listen on 80
	Port int

	// Login is the Digest username
	Login string

	// Secret is the Digest password
	Secret string
}

// DefaultPort is the HTTP port the panels listen on.
const DefaultPort = 80

// BaseURL returns the HTTP base URL for the panel
func (t DeviceTarget) BaseURL() string {
	port := t.Port
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf("http://%s:%d", t.Host, port)
}

// OperationOutcome records the result of one protocol step. It is never
// mutated after creation.
type OperationOutcome struct {
	// Succeeded is true when the step completed with an acceptable status
	Succeeded bool

	// Message is the raw response summary or error text for the step
	Message string
}

// ControlResult is the aggregate result of one state-change operation and
// the only externally observable output of the core.
type ControlResult struct {
	// Succeeded is true iff both protocol steps succeeded
	Succeeded bool `json:"succeeded"`

	// Message joins the human-readable step messages
	Message string `json:"message"`

	// ErrorCount is the number of failed steps (0, 1 or 2)
	ErrorCount int `json:"errorCount"`
}
