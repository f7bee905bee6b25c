package events

import (
	"doorctl/internal/logging"

	"go.uber.org/zap"
)

// Broadcaster publishes typed events onto a hub.
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a broadcaster bound to hub.
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// DoorOperation publishes the outcome of a door command.
func (b *Broadcaster) DoorOperation(device string, door int, state string, succeeded bool, message string, errorCount int) {
	b.publish(NewMessage(TypeDoorOperation, DoorOperationPayload{
		Device:     device,
		Door:       door,
		State:      state,
		Succeeded:  succeeded,
		Message:    message,
		ErrorCount: errorCount,
	}))
}

// DeviceStatus publishes a reachability change.
func (b *Broadcaster) DeviceStatus(device string, online bool) {
	b.publish(NewMessage(TypeDeviceStatus, DeviceStatusPayload{
		Device: device,
		Online: online,
	}))
}

func (b *Broadcaster) publish(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		logging.Warn("Failed to encode event message", zap.Error(err))
		return
	}
	b.hub.Broadcast(data)
}
