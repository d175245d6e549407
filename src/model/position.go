package model

import "time"

type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
	DirectionHold  Direction = "HOLD"
)

const (
	PositionStatusPending = "PENDING"
	PositionStatusOpen    = "OPEN"
	PositionStatusClosed  = "CLOSED"
)

// Position is a single market exposure. Closed positions are never
// deleted; they stay in the table for audit.
type Position struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	UserID        uint       `gorm:"index" json:"user_id"`
	Symbol        string     `gorm:"size:50;not null;index" json:"symbol"`
	Side          Direction  `gorm:"size:10;not null" json:"side"`
	Status        string     `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	EntryPrice    float64    `json:"entry_price"`
	CurrentPrice  *float64   `json:"current_price,omitempty"`
	ExitPrice     *float64   `json:"exit_price,omitempty"`
	Quantity      float64    `json:"quantity"`
	StopLoss      *float64   `json:"stop_loss,omitempty"`
	TakeProfit    *float64   `json:"take_profit,omitempty"`
	RealizedPnl   float64    `json:"realized_pnl"`
	UnrealizedPnl float64    `json:"unrealized_pnl"`
	Confidence    float64    `json:"confidence"`
	ModelName     string     `gorm:"size:100" json:"model_name"`
	OpenedAt      time.Time  `json:"opened_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Position) TableName() string {
	return "positions"
}
