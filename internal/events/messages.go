package events

import (
	"encoding/json"
	"time"
)

// Event types pushed to subscribers.
const (
	TypeDoorOperation = "door_operation"
	TypeDeviceStatus  = "device_status"
)

// Message is the envelope for every event on the feed.
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewMessage wraps a payload in a timestamped envelope.
func NewMessage(eventType string, payload interface{}) Message {
	return Message{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON encodes the message for the wire.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// DoorOperationPayload describes a completed door command.
type DoorOperationPayload struct {
	Device     string `json:"device"`
	Door       int    `json:"door"`
	State      string `json:"state"`
	Succeeded  bool   `json:"succeeded"`
	Message    string `json:"message"`
	ErrorCount int    `json:"errorCount"`
}

// DeviceStatusPayload describes a reachability change observed by the
// poller.
type DeviceStatusPayload struct {
	Device string `json:"device"`
	Online bool   `json:"online"`
}
