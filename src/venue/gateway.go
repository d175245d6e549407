package venue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tradingcore/src/model"
)

type Venue string

const (
	// VenueCryptoCross is the flaky one; it carries the baseline
	// disconnect probability from the config.
	VenueCryptoCross  Venue = "cryptocross"
	VenueFxBridge     Venue = "fxbridge"
	VenueEquityDirect Venue = "equitydirect"
)

var allVenues = []Venue{VenueCryptoCross, VenueFxBridge, VenueEquityDirect}

// Order is an outbound execution request.
type Order struct {
	Symbol   string
	Side     model.Direction
	Quantity float64
	Price    float64
}

// Execution is the venue's fill confirmation. ExecutedPrice includes
// slippage; the gateway is the only place price deviation enters.
type Execution struct {
	OrderID          string
	Venue            Venue
	ExecutedPrice    float64
	ExecutedQuantity float64
	ExecutedAt       time.Time
}

// Gateway abstracts outbound execution across the simulated venues.
// Health records are written by the probe and read at call time.
type Gateway struct {
	logger *logrus.Entry
	cfg    Config

	mu     sync.RWMutex
	health map[Venue]*model.VenueHealth

	// randMu serializes draws: the probe and concurrent executions
	// share one rand source, which is not safe unsynchronized.
	randMu     sync.Mutex
	rand       func() float64 // uniform [0,1)
	now        func() time.Time
	newOrderID func() string
}

func (g *Gateway) draw() float64 {
	g.randMu.Lock()
	defer g.randMu.Unlock()
	return g.rand()
}

func NewGateway(logger *logrus.Entry, cfg Config, randFn func() float64) *Gateway {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	g := &Gateway{
		logger:     logger,
		cfg:        cfg,
		health:     make(map[Venue]*model.VenueHealth, len(allVenues)),
		rand:       randFn,
		now:        time.Now,
		newOrderID: uuid.NewString,
	}

	for _, v := range allVenues {
		g.health[v] = &model.VenueHealth{
			Venue:         string(v),
			Connected:     true,
			LastHeartbeat: g.now(),
			Latency:       cfg.BaseLatency,
		}
	}

	return g
}

// VenueForSymbol routes deterministically on the instrument's naming
// pattern: crypto-styled symbols to cryptocross, slash-delimited pairs
// to fxbridge, bare tickers to equitydirect.
func VenueForSymbol(symbol string) Venue {
	switch model.CategoryForSymbol(symbol) {
	case model.CategoryCrypto:
		return VenueCryptoCross
	case model.CategoryCurrencyPair:
		return VenueFxBridge
	default:
		return VenueEquityDirect
	}
}

// Execute routes the order to its venue and fills it with bounded
// random slippage applied to the requested price.
func (g *Gateway) Execute(ctx context.Context, order Order) (*Execution, error) {
	target := VenueForSymbol(order.Symbol)

	if !g.connected(target) {
		g.logger.WithFields(map[string]interface{}{
			"venue":  target,
			"symbol": order.Symbol,
		}).Warn("execution refused, venue disconnected")
		return nil, fmt.Errorf("venue %s: %w", target, model.ErrVenueUnavailable)
	}

	exec := &Execution{
		OrderID:          g.newOrderID(),
		Venue:            target,
		ExecutedPrice:    g.slip(order.Price),
		ExecutedQuantity: order.Quantity,
		ExecutedAt:       g.now(),
	}

	g.logger.WithFields(map[string]interface{}{
		"venue":           target,
		"symbol":          order.Symbol,
		"side":            order.Side,
		"requested_price": order.Price,
		"executed_price":  exec.ExecutedPrice,
		"quantity":        exec.ExecutedQuantity,
	}).Info("order executed")

	return exec, nil
}

// Close settles a position at the given price. It obeys the same
// disconnection rule as Execute but performs no validation of its own.
func (g *Gateway) Close(ctx context.Context, positionID string, symbol string, closePrice float64) error {
	target := VenueForSymbol(symbol)

	if !g.connected(target) {
		g.logger.WithFields(map[string]interface{}{
			"venue":       target,
			"position_id": positionID,
		}).Warn("close refused, venue disconnected")
		return fmt.Errorf("venue %s: %w", target, model.ErrVenueUnavailable)
	}

	g.logger.WithFields(map[string]interface{}{
		"venue":       target,
		"position_id": positionID,
		"close_price": closePrice,
	}).Info("position closed at venue")

	return nil
}

// Health returns a copy of every venue's health record.
func (g *Gateway) Health() []model.VenueHealth {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]model.VenueHealth, 0, len(allVenues))
	for _, v := range allVenues {
		out = append(out, *g.health[v])
	}
	return out
}

func (g *Gateway) connected(v Venue) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.health[v].Connected
}

// slip applies a uniform deviation within +-MaxSlippageBps.
func (g *Gateway) slip(price float64) float64 {
	deviation := (g.draw()*2 - 1) * g.cfg.MaxSlippageBps / 10000
	return price * (1 + deviation)
}
