package engine

import (
	"context"
	"time"

	"tradingcore/src/model"
	"tradingcore/src/risk"
	"tradingcore/src/venue"
)

// MarketSnapshotSource supplies price and indicators per instrument.
// A (nil, nil) return means no data for the instrument.
type MarketSnapshotSource interface {
	Get(ctx context.Context, symbol string) (*model.MarketSnapshot, error)
}

// PortfolioStore persists owner-scoped portfolio aggregates.
// Get returns (nil, nil) when the owner has no portfolio.
type PortfolioStore interface {
	Get(ctx context.Context, userID uint) (*model.Portfolio, error)
	ApplyDelta(ctx context.Context, userID uint, delta model.PortfolioDelta) error
}

// PositionStore persists positions. GetOpen returns (nil, nil) when no
// OPEN position matches. CloseIfOpen transitions OPEN to CLOSED only
// if the position is still OPEN, reporting whether it did; that guard
// is what makes a double close structurally impossible at the store.
type PositionStore interface {
	Create(ctx context.Context, position *model.Position) error
	ListByUser(ctx context.Context, userID uint) ([]model.Position, error)
	ListOpenByUser(ctx context.Context, userID uint) ([]model.Position, error)
	ListOpen(ctx context.Context) ([]model.Position, error)
	GetOpen(ctx context.Context, id string, userID uint) (*model.Position, error)
	UpdatePrice(ctx context.Context, id string, current, unrealized float64) error
	CloseIfOpen(ctx context.Context, id string, exitPrice, realizedPnl float64, closedAt time.Time) (bool, error)
}

// AuditSink records audit entries. Fire-and-forget: implementations
// never block meaningfully and never fail the caller.
type AuditSink interface {
	Record(ctx context.Context, severity, message string, payload model.AuditPayload)
}

// RiskValidator is the gatekeeper contract.
type RiskValidator interface {
	Validate(proposed *model.Position, portfolio *model.Portfolio, open []model.Position) risk.Assessment
}

// VenueGateway abstracts outbound execution.
type VenueGateway interface {
	Execute(ctx context.Context, order venue.Order) (*venue.Execution, error)
	Close(ctx context.Context, positionID, symbol string, closePrice float64) error
}
