package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type the panels advertise
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for panel discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is the default HTTP port for panels
	DefaultPort = 80
)

// modelPattern matches panel hostnames such as "DS-K1T341AM.local." or
// "IDS-K1T804.local".
var modelPattern = regexp.MustCompile(`^((?:DS|IDS)-[A-Z0-9]+)\.local\.?$`)

// Scanner handles mDNS panel discovery.
type Scanner struct {
	// Timeout is the maximum time to wait for discovery
	Timeout time.Duration
}

// NewScanner creates an mDNS scanner with default settings.
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForPanels discovers all access-control panels on the local
// network.
func (s *Scanner) ScanForPanels() ([]*Panel, error) {
	return s.ScanForPanelsWithContext(context.Background())
}

// ScanForPanelsWithContext discovers panels with a custom context.
func (s *Scanner) ScanForPanelsWithContext(ctx context.Context) ([]*Panel, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	panels := make([]*Panel, 0)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			if panel := s.parseServiceEntry(entry); panel != nil {
				panels = append(panels, panel)
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	return panels, nil
}

// WaitForPanel waits for a specific panel by model identifier. Returns
// the panel or an error if not found within the timeout.
func (s *Scanner) WaitForPanel(ctx context.Context, model string) (*Panel, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	panelChan := make(chan *Panel, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			if panel := s.parseServiceEntry(entry); panel != nil && panel.Model == model {
				panelChan <- panel
				cancel()
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case panel := <-panelChan:
		return panel, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("panel %s not found within timeout", model)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Panel.
// Returns nil if the entry does not look like an access-control panel.
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Panel {
	hostname := entry.HostName
	if hostname == "" {
		return nil
	}

	matches := modelPattern.FindStringSubmatch(hostname)
	if len(matches) < 2 {
		return nil
	}

	model := matches[1]

	// Prefer IPv4
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// TXT records are "key=value" pairs, bare keys allowed
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Panel{
		Model:        model,
		Hostname:     hostname,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// ScanForPanels is a convenience function to scan with a custom timeout.
func ScanForPanels(timeout time.Duration) ([]*Panel, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForPanels()
}
