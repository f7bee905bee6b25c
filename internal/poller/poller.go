// Package poller periodically probes registered panels and records
// their reachability in the device registry.
package poller

import (
	"fmt"
	"net"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"doorctl/internal/events"
	"doorctl/internal/isapi"
	"doorctl/internal/logging"
	"doorctl/internal/registry"
)

// probeTimeout bounds a single reachability check.
const probeTimeout = 3 * time.Second

// Poller runs reachability probes on a cron schedule.
type Poller struct {
	cron     *cron.Cron
	store    *registry.Store
	bcast    *events.Broadcaster
	schedule string

	// probe is swapped out by tests
	probe func(addr string) bool
}

// New creates a poller on the given cron schedule. The schedule is
// validated up front so a bad config fails at startup, not at first
// tick.
func New(schedule string, store *registry.Store, bcast *events.Broadcaster) (*Poller, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid poll schedule %q: %w", schedule, err)
	}

	return &Poller{
		cron:     cron.New(),
		store:    store,
		bcast:    bcast,
		schedule: schedule,
		probe:    probeTCP,
	}, nil
}

// Start begins polling. An initial sweep runs immediately.
func (p *Poller) Start() {
	p.cron.AddFunc(p.schedule, p.sweep)
	go p.sweep()
	p.cron.Start()
	logging.Info("Device poller started", zap.String("schedule", p.schedule))
}

// Stop halts the schedule and waits for a running sweep to finish.
func (p *Poller) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
	logging.Info("Device poller stopped")
}

// Sweep probes every registered device once. Exported for on-demand
// refreshes.
func (p *Poller) Sweep() {
	p.sweep()
}

func (p *Poller) sweep() {
	for _, device := range p.store.List() {
		online := p.probe(device.Address)

		if err := p.store.UpdateOnline(device.Address, online); err != nil {
			logging.Warn("Failed to record device reachability",
				zap.String("device", device.Address),
				zap.Error(err),
			)
			continue
		}

		if online != device.Online {
			logging.Info("Device reachability changed",
				zap.String("device", device.Address),
				zap.Bool("online", online),
			)
			if p.bcast != nil {
				p.bcast.DeviceStatus(device.Address, online)
			}
		}
	}
}

// probeTCP checks whether the panel's HTTP port accepts connections.
func probeTCP(addr string) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(addr, fmt.Sprintf("%d", isapi.DefaultPort)), probeTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
