package marketdata

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradingcore/src/model"
)

const (
	oscillatorPeriod = 14
	rangePeriod      = 14
	shortMAPeriod    = 10
	longMAPeriod     = 30
	fastTrendPeriod  = 12
	slowTrendPeriod  = 26
	signalPeriod     = 9
	bandPeriod       = 20
	bandMult         = 2.0

	historySize = 120
)

// Simulator is an in-process MarketSnapshotSource. It keeps a rolling
// candle window per instrument, advanced as a random walk, and derives
// the indicator set from that window on every read.
type Simulator struct {
	mu      sync.RWMutex
	candles map[string][]model.Candle
	rand    *rand.Rand
	now     func() time.Time
}

// NewSimulator seeds history for the given instruments around their
// base prices. The rand source is explicit so tests stay deterministic.
func NewSimulator(basePrices map[string]float64, seed int64) *Simulator {
	s := &Simulator{
		candles: make(map[string][]model.Candle, len(basePrices)),
		rand:    rand.New(rand.NewSource(seed)),
		now:     time.Now,
	}

	for symbol, base := range basePrices {
		s.candles[symbol] = s.seedHistory(symbol, base)
	}

	logger.WithField("instruments", len(basePrices)).Info("market simulator seeded")
	return s
}

func (s *Simulator) seedHistory(symbol string, base float64) []model.Candle {
	candles := make([]model.Candle, 0, historySize)
	price := base
	at := s.now().Add(-time.Duration(historySize) * time.Minute)

	for i := 0; i < historySize; i++ {
		next := price * (1 + s.rand.NormFloat64()*0.004)
		high := math.Max(price, next) * (1 + s.rand.Float64()*0.002)
		low := math.Min(price, next) * (1 - s.rand.Float64()*0.002)

		candles = append(candles, model.Candle{
			Symbol:    symbol,
			Open:      price,
			High:      high,
			Low:       low,
			Close:     next,
			Volume:    1000 + s.rand.Float64()*9000,
			Timestamp: at.Add(time.Duration(i) * time.Minute),
		})
		price = next
	}

	return candles
}

// Step advances every instrument by one candle.
func (s *Simulator) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for symbol, window := range s.candles {
		last := window[len(window)-1]
		next := last.Close * (1 + s.rand.NormFloat64()*0.004)
		high := math.Max(last.Close, next) * (1 + s.rand.Float64()*0.002)
		low := math.Min(last.Close, next) * (1 - s.rand.Float64()*0.002)

		window = append(window, model.Candle{
			Symbol:    symbol,
			Open:      last.Close,
			High:      high,
			Low:       low,
			Close:     next,
			Volume:    1000 + s.rand.Float64()*9000,
			Timestamp: s.now(),
		})
		if len(window) > historySize {
			window = window[len(window)-historySize:]
		}
		s.candles[symbol] = window
	}
}

// Get returns the current snapshot for symbol, or (nil, nil) when the
// instrument is unknown.
func (s *Simulator) Get(ctx context.Context, symbol string) (*model.MarketSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	window, ok := s.candles[symbol]
	if !ok || len(window) == 0 {
		return nil, nil
	}

	closes := make([]float64, len(window))
	for i, c := range window {
		closes[i] = c.Close
	}

	return &model.MarketSnapshot{
		Symbol: symbol,
		Price:  closes[len(closes)-1],
		Indicators: model.Indicators{
			Oscillator:      RSI(closes, oscillatorPeriod),
			VolatilityRange: ATR(window, rangePeriod),
			ShortMA:         SMA(closes, shortMAPeriod),
			LongMA:          SMA(closes, longMAPeriod),
			FastTrend:       EMA(closes, fastTrendPeriod),
			SlowTrend:       EMA(closes, slowTrendPeriod),
			Divergence:      MACDHistogram(closes, fastTrendPeriod, slowTrendPeriod, signalPeriod),
			BandWidth:       BandWidth(closes, bandPeriod, bandMult),
		},
		At: s.now(),
	}, nil
}
