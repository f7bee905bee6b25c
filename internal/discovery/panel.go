package discovery

import (
	"fmt"
	"time"
)

// Panel represents a discovered access-control panel on the network.
type Panel struct {
	// Model is the panel model identifier parsed from the mDNS
	// hostname (e.g. "DS-K1T341AM").
	Model string

	// Hostname is the mDNS hostname (e.g. "DS-K1T341AM.local.")
	Hostname string

	// IP is the panel's address (IPv4 preferred)
	IP string

	// Port is the HTTP port (typically 80)
	Port int

	// Metadata contains additional mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the panel was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable description of the panel.
func (p *Panel) String() string {
	return fmt.Sprintf("Panel %s (%s) at %s:%d", p.Model, p.Hostname, p.IP, p.Port)
}

// BaseURL returns the HTTP base URL for the panel.
func (p *Panel) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", p.IP, p.Port)
}

// GetMetadata retrieves a TXT record value by key, or returns empty
// string if not found.
func (p *Panel) GetMetadata(key string) string {
	if p.Metadata == nil {
		return ""
	}
	return p.Metadata[key]
}
