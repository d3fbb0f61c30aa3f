package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"codesync-server/internal/core"
	"codesync-server/internal/metrics"
)

// Monitor layers a heartbeat check above the transport's own disconnect
// detection, which can lag on flaky networks. It probes every live
// connection on ProbeInterval and force-disconnects, via the relay's normal
// Disconnect path, any connection whose last probe response is older than
// StaleAfter.
type Monitor struct {
	Registry *Registry
	Relay    *Relay

	ProbeInterval time.Duration
	SweepInterval time.Duration
	StaleAfter    time.Duration
}

func NewMonitor(relay *Relay, probe, sweep, stale time.Duration) *Monitor {
	return &Monitor{
		Registry:      relay.Registry,
		Relay:         relay,
		ProbeInterval: probe,
		SweepInterval: sweep,
		StaleAfter:    stale,
	}
}

// Run drives both tickers until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	probe := time.NewTicker(m.ProbeInterval)
	sweep := time.NewTicker(m.SweepInterval)
	defer probe.Stop()
	defer sweep.Stop()

	log.Info().Str("module", "app.liveness").Dur("probe", m.ProbeInterval).Dur("sweep", m.SweepInterval).Dur("stale_after", m.StaleAfter).Msg("monitor started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.liveness").Msg("monitor stopped")
			return
		case <-probe.C:
			m.probe()
		case <-sweep.C:
			m.sweep()
		}
	}
}

func (m *Monitor) probe() {
	b, _ := json.Marshal(PingEvent{Type: EventPing})
	for _, snap := range m.Registry.Live() {
		if err := snap.Session.TrySend(core.Frame(b)); err != nil {
			// The sweep will catch it if the connection is really gone.
			log.Warn().Err(err).Str("module", "app.liveness").Str("sid", string(snap.SID)).Msg("probe not delivered")
		}
	}
}

func (m *Monitor) sweep() {
	cutoff := time.Now().Add(-m.StaleAfter)
	for _, sid := range m.Registry.Stale(cutoff) {
		log.Warn().Str("module", "app.liveness").Str("sid", string(sid)).Msg("evicting stale connection")
		metrics.EvictionsTotal.Inc()
		m.Relay.Disconnect(sid)
	}
}
