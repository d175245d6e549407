package venue

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"

	"tradingcore/src/model"
)

func testConfig() Config {
	return Config{
		ProbePeriod:                30 * time.Second,
		MaxSlippageBps:             10,
		DisconnectProbability:      0,
		FlakyDisconnectProbability: 0.10,
		ReconnectProbability:       0.50,
		BaseLatency:                40 * time.Millisecond,
	}
}

func newTestGateway(t *testing.T, cfg Config, randFn func() float64) *Gateway {
	t.Helper()

	null, _ := logrustest.NewNullLogger()
	if randFn == nil {
		randFn = func() float64 { return 0.5 }
	}
	return NewGateway(logrus.NewEntry(null), cfg, randFn)
}

func TestVenueForSymbol(t *testing.T) {
	cases := []struct {
		symbol string
		want   Venue
	}{
		{"BTCUSDT", VenueCryptoCross},
		{"ETHUSDC", VenueCryptoCross},
		{"EUR/USD", VenueFxBridge},
		{"GBP/USD", VenueFxBridge},
		{"AAPL", VenueEquityDirect},
		{"BRK", VenueEquityDirect},
	}

	for _, tc := range cases {
		if got := VenueForSymbol(tc.symbol); got != tc.want {
			t.Fatalf("%s routed to %s, want %s", tc.symbol, got, tc.want)
		}
	}
}

func TestExecuteAppliesBoundedSlippage(t *testing.T) {
	order := Order{Symbol: "BTCUSDT", Side: model.DirectionLong, Quantity: 2, Price: 50000}

	// A centered draw leaves the price untouched.
	g := newTestGateway(t, testConfig(), func() float64 { return 0.5 })
	exec, err := g.Execute(context.Background(), order)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.ExecutedPrice != 50000 {
		t.Fatalf("centered draw should not move the price, got %v", exec.ExecutedPrice)
	}
	if exec.ExecutedQuantity != 2 {
		t.Fatalf("quantity must pass through unchanged, got %v", exec.ExecutedQuantity)
	}
	if exec.Venue != VenueCryptoCross {
		t.Fatalf("unexpected venue %s", exec.Venue)
	}

	// Every draw stays within +-MaxSlippageBps of the requested price.
	for _, draw := range []float64{0, 0.1, 0.25, 0.75, 0.9, 0.999999} {
		g := newTestGateway(t, testConfig(), func() float64 { return draw })
		exec, err := g.Execute(context.Background(), order)
		if err != nil {
			t.Fatalf("unexpected error at draw %v: %v", draw, err)
		}

		deviation := math.Abs(exec.ExecutedPrice-order.Price) / order.Price
		if deviation > 10.0/10000+1e-12 {
			t.Fatalf("slippage %v exceeds 10 bps at draw %v", deviation, draw)
		}
	}
}

func TestExecuteRefusedWhenDisconnected(t *testing.T) {
	cfg := testConfig()
	cfg.FlakyDisconnectProbability = 1.0

	g := newTestGateway(t, cfg, func() float64 { return 0.99 })

	// A certain failure probability beats any draw below 1.
	g.Probe()

	_, err := g.Execute(context.Background(), Order{Symbol: "BTCUSDT", Side: model.DirectionLong, Quantity: 1, Price: 100})
	if !errors.Is(err, model.ErrVenueUnavailable) {
		t.Fatalf("expected ErrVenueUnavailable, got %v", err)
	}

	// Only the flaky venue went down; equities still execute.
	if _, err := g.Execute(context.Background(), Order{Symbol: "AAPL", Side: model.DirectionLong, Quantity: 1, Price: 230}); err != nil {
		t.Fatalf("healthy venue refused the order: %v", err)
	}

	if err := g.Close(context.Background(), "pos-1", "BTCUSDT", 100); !errors.Is(err, model.ErrVenueUnavailable) {
		t.Fatalf("close must obey the same disconnection rule, got %v", err)
	}
}

func TestConcurrentProbeAndExecute(t *testing.T) {
	// One math/rand source shared between the probe goroutine and the
	// execution path, exactly as the process wires it. The gateway
	// must serialize its draws; run with -race.
	rng := rand.New(rand.NewSource(1))
	g := newTestGateway(t, testConfig(), rng.Float64)

	order := Order{Symbol: "BTCUSDT", Side: model.DirectionLong, Quantity: 1, Price: 100}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			g.Probe()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			// Refusals while the venue happens to be down are fine;
			// the draws themselves must not race.
			_, _ = g.Execute(context.Background(), order)
			_ = g.Close(context.Background(), "pos-1", "EUR/USD", 100)
		}
	}()

	wg.Wait()
}

func TestHealthReportsEveryVenue(t *testing.T) {
	g := newTestGateway(t, testConfig(), nil)

	records := g.Health()
	if len(records) != 3 {
		t.Fatalf("expected 3 venue records, got %d", len(records))
	}

	seen := map[string]bool{}
	for _, rec := range records {
		seen[rec.Venue] = true
		if !rec.Connected {
			t.Fatalf("venue %s should start connected", rec.Venue)
		}
	}
	for _, v := range allVenues {
		if !seen[string(v)] {
			t.Fatalf("venue %s missing from health report", v)
		}
	}
}
