package trader

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradingcore/src/database"
	"tradingcore/src/engine"
	"tradingcore/src/marketdata"
	"tradingcore/src/model"
	"tradingcore/src/repository"
	"tradingcore/src/risk"
	tradesignal "tradingcore/src/signal"
	"tradingcore/src/venue"
)

// Trader runs the headless engine loops: market stepping, ensemble
// regeneration per instrument, the venue health probe and the monitor
// sweep. No HTTP surface.
type Trader struct {
	Symbols map[string]float64
}

func (t *Trader) Start() error {
	if err := database.InitMainDB(); err != nil {
		return err
	}

	if len(t.Symbols) == 0 {
		t.Symbols = map[string]float64{
			"BTCUSDT": 62000,
			"ETHUSDT": 3200,
			"EUR/USD": 1.08,
			"GBP/USD": 1.27,
			"AAPL":    230,
		}
	}

	simulator := marketdata.NewSimulator(t.Symbols, time.Now().UnixNano())

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	gateway := venue.NewGateway(logger.WithField("component", "venue"), venue.GetConfig(), rng.Float64)
	validator := risk.NewValidator(logger.WithField("component", "risk"), risk.GetConfig())
	ensemble := tradesignal.NewEnsemble(logger.WithField("component", "signal"), simulator, tradesignal.GetConfig())

	positions := repository.NewPositionRepository()
	portfolios := repository.NewPortfolioRepository()
	audit := repository.NewAuditRepository()

	eng := engine.New(
		logger.WithField("component", "engine"),
		validator, gateway, positions, portfolios, simulator, audit,
	)
	monitor := engine.NewMonitor(logger.WithField("component", "monitor"), eng)

	cfg := engine.GetConfig()
	sched := engine.NewScheduler(logger.WithField("component", "scheduler"))
	sched.Add("market_step", cfg.MarketStepPeriod, func(ctx context.Context) { simulator.Step() })
	sched.Add("venue_probe", venue.GetConfig().ProbePeriod, func(ctx context.Context) { gateway.Probe() })
	sched.Add("monitor_sweep", cfg.MonitorPeriod, monitor.Sweep)
	sched.Add("signal_regen", cfg.SignalRegenPeriod, func(ctx context.Context) {
		ensemble.PruneExpired()
		for symbol := range t.Symbols {
			sig, err := ensemble.Generate(ctx, symbol)
			if err != nil {
				// Missing data skips the cycle for that instrument.
				logger.WithError(err).WithField("symbol", symbol).Debug("signal cycle skipped")
				continue
			}
			audit.Record(ctx, model.AuditSeverityInfo,
				fmt.Sprintf("signal %s %s at confidence %.2f", sig.Direction, sig.Symbol, sig.Confidence),
				model.SignalGeneratedPayload{
					SignalID:   sig.ID,
					Symbol:     sig.Symbol,
					Direction:  sig.Direction,
					Confidence: sig.Confidence,
					ModelName:  sig.ModelName,
				})
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched.Start(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("trader stopping")
	cancel()
	sched.Wait()
	return nil
}
