package model

import "time"

// Signal is an ephemeral trade proposal produced by the heuristic
// ensemble. Signals are immutable once created and garbage-collected
// after expiry.
type Signal struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	Confidence float64   `json:"confidence"`
	ModelName  string    `json:"model_name"`
	EntryPrice float64   `json:"entry_price"`
	StopLoss   float64   `json:"stop_loss"`
	TakeProfit float64   `json:"take_profit"`
	Rationale  string    `json:"rationale"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (s *Signal) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
