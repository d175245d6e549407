package marketdata

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// SnapshotURL switches the snapshot source from the in-process
	// simulator to a remote snapshot API when set.
	SnapshotURL string `envconfig:"MARKETDATA_URL" default:""`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
