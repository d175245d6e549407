package venue

import (
	"testing"
	"time"
)

func TestGetConfigDefaults(t *testing.T) {
	cfg := GetConfig()

	// Every venue carries a small baseline failure probability; the
	// flaky one adds its own on top.
	if cfg.DisconnectProbability != 0.01 {
		t.Fatalf("expected baseline disconnect probability 0.01, got %v", cfg.DisconnectProbability)
	}
	if cfg.FlakyDisconnectProbability != 0.10 {
		t.Fatalf("expected flaky disconnect probability 0.10, got %v", cfg.FlakyDisconnectProbability)
	}
	if cfg.ReconnectProbability != 0.50 {
		t.Fatalf("expected reconnect probability 0.50, got %v", cfg.ReconnectProbability)
	}
	if cfg.MaxSlippageBps != 10 {
		t.Fatalf("expected max slippage 10 bps, got %v", cfg.MaxSlippageBps)
	}
	if cfg.ProbePeriod != 30*time.Second {
		t.Fatalf("expected 30s probe period, got %v", cfg.ProbePeriod)
	}
}

func TestProbeDisconnectsStableVenueOnBaseline(t *testing.T) {
	cfg := testConfig()
	cfg.DisconnectProbability = 0.01

	// A draw under the baseline takes a stable venue down too.
	g := newTestGateway(t, cfg, sequence(
		0.005, // cryptocross failure check, disconnects
		0.005, // fxbridge failure check, disconnects
		0.005, // equitydirect failure check, disconnects
	))

	g.Probe()

	for _, rec := range g.Health() {
		if rec.Connected {
			t.Fatalf("venue %s should have hit the baseline failure draw", rec.Venue)
		}
	}
}
