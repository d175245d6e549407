package risk

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	MaxPositionSizePct      float64 `envconfig:"RISK_MAX_POSITION_SIZE_PCT" default:"0.05"`
	MaxExposurePct          float64 `envconfig:"RISK_MAX_EXPOSURE_PCT" default:"0.10"`
	MaxDailyLossPct         float64 `envconfig:"RISK_MAX_DAILY_LOSS_PCT" default:"0.05"`
	MaxDrawdownPct          float64 `envconfig:"RISK_MAX_DRAWDOWN_PCT" default:"0.15"`
	MaxRiskPerTrade         float64 `envconfig:"RISK_MAX_RISK_PER_TRADE" default:"0.02"`
	MaxPositionsPerSymbol   int     `envconfig:"RISK_MAX_POSITIONS_PER_SYMBOL" default:"3"`
	MaxPositionsPerCategory int     `envconfig:"RISK_MAX_POSITIONS_PER_CATEGORY" default:"5"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
