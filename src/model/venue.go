package model

import "time"

// VenueHealth is the connectivity record for one execution venue.
// It is mutated only by the background health probe and read by the
// gateway at call time.
type VenueHealth struct {
	Venue         string        `json:"venue"`
	Connected     bool          `json:"connected"`
	LastHeartbeat time.Time     `json:"last_heartbeat"`
	Latency       time.Duration `json:"latency"`
}
