package signal

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ActivationThreshold float64       `envconfig:"SIGNAL_ACTIVATION_THRESHOLD" default:"60"`
	TTL                 time.Duration `envconfig:"SIGNAL_TTL" default:"4h"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
