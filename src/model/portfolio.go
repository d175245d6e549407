package model

import "time"

// Portfolio is the owner-scoped aggregate. It is mutated only by the
// trading engine after an open or a close, always as an additive delta,
// never recomputed from positions.
type Portfolio struct {
	UserID           uint      `gorm:"primaryKey" json:"user_id"`
	TotalValue       float64   `json:"total_value"`
	AvailableBalance float64   `json:"available_balance"`
	DailyPnl         float64   `json:"daily_pnl"`
	CumulativePnl    float64   `json:"cumulative_pnl"`
	RiskExposure     float64   `json:"risk_exposure"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (Portfolio) TableName() string {
	return "portfolios"
}

// PortfolioDelta is an additive change applied to a portfolio. A zero
// value applies no change.
type PortfolioDelta struct {
	TotalValue       float64
	AvailableBalance float64
	DailyPnl         float64
	CumulativePnl    float64
	RiskExposure     float64
}
