package engine

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	MonitorPeriod     time.Duration `envconfig:"MONITOR_PERIOD" default:"5s"`
	SignalRegenPeriod time.Duration `envconfig:"SIGNAL_REGEN_PERIOD" default:"1h"`
	MarketStepPeriod  time.Duration `envconfig:"MARKET_STEP_PERIOD" default:"1m"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
