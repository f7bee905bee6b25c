package registry

import "time"

// WildcardDevice grants a user access to every registered device.
const WildcardDevice = "*"

// Registry is the entire device/user file. It is a plain JSON document so
// operators can manage it by hand.
type Registry struct {
	Version int      `json:"version"`
	Devices []Device `json:"devices"`
	Users   []User   `json:"users"`
}

// Device is one registered access-control panel.
type Device struct {
	// Address is the panel IP or hostname; unique key within the registry
	Address string `json:"address"`

	// Name is an optional operator-friendly label
	Name string `json:"name,omitempty"`

	// Login and Password are the panel's Digest credentials
	Login    string `json:"login"`
	Password string `json:"password"`

	// Door is the door index on the panel, >= 1
	Door int `json:"door"`

	// State is the last commanded or observed door state
	State string `json:"state,omitempty"`

	// Online is the result of the last reachability probe
	Online bool `json:"online"`

	// LastSeen is when the panel last answered a probe or command
	LastSeen time.Time `json:"last_seen,omitempty"`
}

// User maps an API caller to the devices they may control. A Devices entry
// of "*" grants access to all devices.
type User struct {
	Name    string   `json:"name"`
	Devices []string `json:"devices"`
}

// NewRegistry creates an empty Registry with the current schema version.
func NewRegistry() *Registry {
	return &Registry{
		Version: 1,
		Devices: []Device{},
		Users:   []User{},
	}
}
