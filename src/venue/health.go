package venue

import (
	"time"
)

// Probe runs one health tick over every venue: connected venues may
// fail, disconnected venues may recover, each with an independent
// draw. The engine's scheduler drives this on a fixed interval.
func (g *Gateway) Probe() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for _, v := range allVenues {
		record := g.health[v]

		if record.Connected {
			pFail := g.cfg.DisconnectProbability
			if v == VenueCryptoCross {
				pFail += g.cfg.FlakyDisconnectProbability
			}

			if g.draw() < pFail {
				record.Connected = false
				g.logger.WithField("venue", v).Warn("venue disconnected")
				continue
			}

			record.LastHeartbeat = now
			record.Latency = g.cfg.BaseLatency + time.Duration(g.draw()*float64(g.cfg.BaseLatency))
			continue
		}

		if g.draw() < g.cfg.ReconnectProbability {
			record.Connected = true
			record.LastHeartbeat = now
			record.Latency = g.cfg.BaseLatency
			g.logger.WithField("venue", v).Info("venue reconnected")
		}
	}
}
