package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"doorctl/internal/events"
	"doorctl/internal/isapi"
	"doorctl/internal/logging"
	"doorctl/internal/registry"
)

// doorRequest is the body of POST /api/door.
type doorRequest struct {
	IP    string `json:"ip"`
	State int    `json:"state"`
	Login string `json:"login"`
	Door  int    `json:"door,omitempty"`
}

// deviceView is a registry device with its password stripped.
type deviceView struct {
	Address  string    `json:"address"`
	Name     string    `json:"name,omitempty"`
	Login    string    `json:"login,omitempty"`
	Door     int       `json:"door"`
	State    string    `json:"state,omitempty"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"lastSeen"`
}

func (s *Server) handleDoorCommand(w http.ResponseWriter, r *http.Request) {
	var body doorRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeMessage(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.Login == "" {
		writeMessage(w, "login required", http.StatusBadRequest)
		return
	}

	cmd, err := isapi.ParseCommand(body.State)
	if err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}

	device, err := s.store.Lookup(body.IP)
	if err != nil {
		if isapi.IsNotFoundError(err) {
			writeErr(w, err, http.StatusNotFound)
			return
		}
		writeErr(w, err, http.StatusInternalServerError)
		return
	}

	if !s.store.Allowed(body.Login, body.IP) {
		writeMessage(w, "not authorized for this device", http.StatusForbidden)
		return
	}

	doorNo := device.Door
	if body.Door > 0 {
		doorNo = body.Door
	}

	target := isapi.DeviceTarget{
		Host:   device.Address,
		Login:  device.Login,
		Secret: device.Password,
	}

	result, err := s.control(r.Context(), target, cmd, doorNo)
	if err != nil && isapi.IsCriticalError(err) {
		writeErr(w, err, http.StatusInternalServerError)
		return
	}

	if result.Succeeded {
		if err := s.store.UpdateState(body.IP, cmd.String()); err != nil {
			logging.Warn("Failed to persist device state",
				zap.String("device", body.IP),
				zap.Error(err),
			)
		}
	}

	s.bcast.DoorOperation(body.IP, doorNo, cmd.String(), result.Succeeded, result.Message, result.ErrorCount)

	writeJSON(w, result)
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices := s.store.List()
	views := make([]deviceView, 0, len(devices))
	for _, d := range devices {
		views = append(views, redact(d))
	}
	writeJSON(w, views)
}

func redact(d registry.Device) deviceView {
	return deviceView{
		Address:  d.Address,
		Name:     d.Name,
		Login:    d.Login,
		Door:     d.Door,
		State:    d.State,
		Online:   d.Online,
		LastSeen: d.LastSeen,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Local tooling connects from arbitrary origins
		return true
	},
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := events.NewClient(s.hub)
	s.hub.Register(client)

	go writePump(conn, client)
	go readPump(conn, client, s.hub)
}

// writePump forwards hub messages to the WebSocket connection and keeps
// it alive with periodic pings.
func writePump(conn *websocket.Conn, client *events.Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send():
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages and unregisters on disconnect.
func readPump(conn *websocket.Conn, client *events.Client, hub *events.Hub) {
	defer func() {
		hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeErr(w http.ResponseWriter, err error, status int) {
	writeMessage(w, err.Error(), status)
}

func writeMessage(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
