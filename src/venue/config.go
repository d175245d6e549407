package venue

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ProbePeriod time.Duration `envconfig:"VENUE_PROBE_PERIOD" default:"30s"`

	// MaxSlippageBps bounds the random execution price deviation.
	MaxSlippageBps float64 `envconfig:"VENUE_MAX_SLIPPAGE_BPS" default:"10"`

	// DisconnectProbability applies to every connected venue per probe
	// tick; FlakyDisconnectProbability is the extra baseline carried by
	// the flaky venue so the unavailable path gets exercised.
	DisconnectProbability      float64 `envconfig:"VENUE_DISCONNECT_PROBABILITY" default:"0.01"`
	FlakyDisconnectProbability float64 `envconfig:"VENUE_FLAKY_DISCONNECT_PROBABILITY" default:"0.10"`
	ReconnectProbability       float64 `envconfig:"VENUE_RECONNECT_PROBABILITY" default:"0.50"`

	BaseLatency time.Duration `envconfig:"VENUE_BASE_LATENCY" default:"40ms"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
