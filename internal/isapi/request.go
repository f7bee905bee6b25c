package isapi

import "fmt"

// Magnetic lock policies accepted by the door parameter endpoint.
const (
	policyAlwaysClose = "alwaysClose"
	policyAlwaysOpen  = "alwaysOpen"
	policyNone        = "none"
)

// Remote control verbs accepted by the remote control endpoint.
const (
	verbAlwaysOpen = "alwaysOpen"
	verbResume     = "resume"
)

const xmlNamespace = "http://www.isapi.org/ver20/XMLSchema"

// Request is a fully built device request: a target path, an HTTP method,
// and an XML body. Both builders are pure functions of (command, doorNo).
type Request struct {
	Path   string
	Method string
	Body   string
}

// ConfigRequest builds the door parameter (relay/magnetic lock) request for
// the requested transition.
//
// Opening or resuming a door needs the lock in its normal held-closed
// default (alwaysClose); closing is achieved entirely by forcing the lock
// held-open policy (alwaysOpen). Any command outside the enum maps to "none"
// so an unexpected value degrades instead of crashing.
func ConfigRequest(cmd DoorCommand, doorNo int) Request {
	var policy string
	switch cmd {
	case CommandOpen, CommandResume:
		policy = policyAlwaysClose
	case CommandClose:
		policy = policyAlwaysOpen
	default:
		policy = policyNone
	}

	body := fmt.Sprintf(`<DoorParam version="2.0" xmlns="%s">`+
		`<doorNo>%d</doorNo>`+
		`<enable>false</enable>`+
		`<doorName>Door%d</doorName>`+
		`<openDuration>4</openDuration>`+
		`<magneticLockStatus>%s</magneticLockStatus>`+
		`</DoorParam>`,
		xmlNamespace, doorNo, doorNo, policy)

	return Request{
		Path:   fmt.Sprintf("/ISAPI/AccessControl/Door/param/%d", doorNo),
		Method: "PUT",
		Body:   body,
	}
}

// ControlRequest builds the remote-control request for the requested
// transition. The second return value is false when the step must be skipped:
// closing a door is done purely by the configuration step, so CLOSE never
// issues a remote-control command.
func ControlRequest(cmd DoorCommand, doorNo int) (Request, bool) {
	if cmd == CommandClose {
		return Request{}, false
	}

	verb := verbResume
	if cmd == CommandOpen {
		verb = verbAlwaysOpen
	}

	body := fmt.Sprintf(`<RemoteControlDoor version="2.0" xmlns="%s">`+
		`<cmd>%s</cmd>`+
		`</RemoteControlDoor>`,
		xmlNamespace, verb)

	return Request{
		Path:   fmt.Sprintf("/ISAPI/AccessControl/RemoteControl/door/%d", doorNo),
		Method: "PUT",
		Body:   body,
	}, true
}
