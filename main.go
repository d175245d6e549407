package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradingcore/src/database"
	"tradingcore/src/engine"
	"tradingcore/src/marketdata"
	"tradingcore/src/repository"
	"tradingcore/src/risk"
	"tradingcore/src/server"
	tradesignal "tradingcore/src/signal"
	"tradingcore/src/venue"
)

var APP_NAME = os.Getenv("APP_NAME")

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.DebugLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	SetupLogger()
	defer handlePanic()

	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	simulator := marketdata.NewSimulator(map[string]float64{
		"BTCUSDT": 62000,
		"ETHUSDT": 3200,
		"EUR/USD": 1.08,
		"GBP/USD": 1.27,
		"AAPL":    230,
	}, time.Now().UnixNano())

	var snapshots engine.MarketSnapshotSource = simulator
	if mdCfg := marketdata.GetConfig(); mdCfg.SnapshotURL != "" {
		logger.WithField("url", mdCfg.SnapshotURL).Info("Using remote snapshot source")
		snapshots = marketdata.NewClient(mdCfg.SnapshotURL)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	gateway := venue.NewGateway(logger.WithField("component", "venue"), venue.GetConfig(), rng.Float64)
	validator := risk.NewValidator(logger.WithField("component", "risk"), risk.GetConfig())
	ensemble := tradesignal.NewEnsemble(logger.WithField("component", "signal"), snapshots, tradesignal.GetConfig())

	positions := repository.NewPositionRepository()
	portfolios := repository.NewPortfolioRepository()
	audit := repository.NewAuditRepository()

	eng := engine.New(
		logger.WithField("component", "engine"),
		validator, gateway, positions, portfolios, snapshots, audit,
	)
	monitor := engine.NewMonitor(logger.WithField("component", "monitor"), eng)

	cfg := engine.GetConfig()
	sched := engine.NewScheduler(logger.WithField("component", "scheduler"))
	sched.Add("market_step", cfg.MarketStepPeriod, func(ctx context.Context) { simulator.Step() })
	sched.Add("venue_probe", venue.GetConfig().ProbePeriod, func(ctx context.Context) { gateway.Probe() })
	sched.Add("monitor_sweep", cfg.MonitorPeriod, monitor.Sweep)
	sched.Add("signal_gc", cfg.SignalRegenPeriod, func(ctx context.Context) { ensemble.PruneExpired() })

	ctx, cancel := context.WithCancel(context.Background())
	sched.Start(ctx)

	server.StartServer(server.GetConfig().Port, server.Deps{
		Engine:    eng,
		Ensemble:  ensemble,
		Positions: positions,
	})

	cancel()
	sched.Wait()
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
	}
	//nolint
	time.Sleep(time.Second * 5)
}
