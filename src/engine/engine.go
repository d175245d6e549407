package engine

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tradingcore/src/model"
	"tradingcore/src/venue"
)

// Engine orchestrates proposal, validation, execution, persistence and
// portfolio update. It owns the position state machine:
// PENDING -> validated -> executed -> OPEN -> close trigger -> CLOSED.
type Engine struct {
	logger     *logrus.Entry
	validator  RiskValidator
	gateway    VenueGateway
	positions  PositionStore
	portfolios PortfolioStore
	snapshots  MarketSnapshotSource
	audit      AuditSink

	now   func() time.Time
	newID func() string

	locks lockTable
}

func New(
	logger *logrus.Entry,
	validator RiskValidator,
	gateway VenueGateway,
	positions PositionStore,
	portfolios PortfolioStore,
	snapshots MarketSnapshotSource,
	audit AuditSink,
) *Engine {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Engine{
		logger:     logger,
		validator:  validator,
		gateway:    gateway,
		positions:  positions,
		portfolios: portfolios,
		snapshots:  snapshots,
		audit:      audit,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// lockTable hands out one mutex per key. Position IDs and owner IDs
// use disjoint key prefixes.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (t *lockTable) acquire(key string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.locks == nil {
		t.locks = make(map[string]*sync.Mutex)
	}
	lk, ok := t.locks[key]
	if !ok {
		lk = &sync.Mutex{}
		t.locks[key] = lk
	}
	return lk
}

func positionKey(id string) string { return "position:" + id }
func ownerKey(userID uint) string  { return "portfolio:" + strconv.FormatUint(uint64(userID), 10) }

// Open validates the proposed position, executes it at its venue and
// persists it OPEN with the executed price substituted for the
// requested one. The portfolio receives an explicit zero realized
// delta; nothing changes at open.
func (e *Engine) Open(ctx context.Context, proposed *model.Position) (*model.Position, error) {
	if proposed == nil {
		return nil, &model.RiskRejectedError{Reason: "no position proposed", RiskScore: 100}
	}

	if reason, ok := checkLevels(proposed); !ok {
		e.recordRejection(ctx, proposed, reason, 100)
		return nil, &model.RiskRejectedError{Reason: reason, RiskScore: 100}
	}

	portfolio, err := e.portfolios.Get(ctx, proposed.UserID)
	if err != nil {
		return nil, fmt.Errorf("load portfolio for user %d: %w", proposed.UserID, err)
	}
	if portfolio == nil {
		reason := "no portfolio for owner"
		e.recordRejection(ctx, proposed, reason, 100)
		return nil, &model.RiskRejectedError{Reason: reason, RiskScore: 100}
	}

	open, err := e.positions.ListOpenByUser(ctx, proposed.UserID)
	if err != nil {
		return nil, fmt.Errorf("list open positions for user %d: %w", proposed.UserID, err)
	}

	assessment := e.validator.Validate(proposed, portfolio, open)
	if !assessment.Allowed {
		e.recordRejection(ctx, proposed, assessment.Reason, assessment.RiskScore)
		return nil, &model.RiskRejectedError{Reason: assessment.Reason, RiskScore: assessment.RiskScore}
	}

	exec, err := e.gateway.Execute(ctx, venue.Order{
		Symbol:   proposed.Symbol,
		Side:     proposed.Side,
		Quantity: proposed.Quantity,
		Price:    proposed.EntryPrice,
	})
	if err != nil {
		return nil, fmt.Errorf("execute %s %s: %w", proposed.Side, proposed.Symbol, err)
	}

	now := e.now()
	position := &model.Position{
		ID:         e.newID(),
		UserID:     proposed.UserID,
		Symbol:     proposed.Symbol,
		Side:       proposed.Side,
		Status:     model.PositionStatusOpen,
		EntryPrice: exec.ExecutedPrice,
		Quantity:   exec.ExecutedQuantity,
		StopLoss:   proposed.StopLoss,
		TakeProfit: proposed.TakeProfit,
		Confidence: proposed.Confidence,
		ModelName:  proposed.ModelName,
		OpenedAt:   now,
	}

	if err := e.positions.Create(ctx, position); err != nil {
		return nil, fmt.Errorf("persist position: %w", err)
	}

	olk := e.locks.acquire(ownerKey(position.UserID))
	olk.Lock()
	err = e.portfolios.ApplyDelta(ctx, position.UserID, model.PortfolioDelta{})
	olk.Unlock()
	if err != nil {
		// The open delta is zero by definition; the position is
		// already persisted OPEN, so a failed touch must not turn a
		// successful open into an error.
		e.logger.WithError(err).WithFields(map[string]interface{}{
			"position_id": position.ID,
			"user_id":     position.UserID,
		}).Warn("portfolio touch failed after open")
	}

	e.audit.Record(ctx, model.AuditSeverityInfo,
		fmt.Sprintf("opened %s %s at %.4f", position.Side, position.Symbol, position.EntryPrice),
		model.PositionOpenedPayload{
			PositionID: position.ID,
			Symbol:     position.Symbol,
			Side:       position.Side,
			Price:      position.EntryPrice,
			Quantity:   position.Quantity,
			Confidence: position.Confidence,
		})

	e.logger.WithFields(map[string]interface{}{
		"position_id": position.ID,
		"user_id":     position.UserID,
		"symbol":      position.Symbol,
		"side":        position.Side,
		"entry_price": position.EntryPrice,
	}).Info("position opened")

	return position, nil
}

// Close settles an OPEN position at the current market price. The
// second of two concurrent closers observes model.ErrNotFound.
func (e *Engine) Close(ctx context.Context, positionID string, userID uint) (*model.Position, error) {
	return e.close(ctx, positionID, userID, "")
}

func (e *Engine) close(ctx context.Context, positionID string, userID uint, trigger string) (*model.Position, error) {
	lk := e.locks.acquire(positionKey(positionID))
	lk.Lock()
	defer lk.Unlock()

	position, err := e.positions.GetOpen(ctx, positionID, userID)
	if err != nil {
		return nil, fmt.Errorf("load position %s: %w", positionID, err)
	}
	if position == nil {
		return nil, fmt.Errorf("position %s for user %d: %w", positionID, userID, model.ErrNotFound)
	}

	snap, err := e.snapshots.Get(ctx, position.Symbol)
	if err != nil {
		return nil, fmt.Errorf("snapshot for %s: %w", position.Symbol, err)
	}
	if snap == nil {
		return nil, fmt.Errorf("no current price for %s: %w", position.Symbol, model.ErrDataUnavailable)
	}
	closePrice := snap.Price

	if err := e.gateway.Close(ctx, positionID, position.Symbol, closePrice); err != nil {
		return nil, fmt.Errorf("close %s at venue: %w", positionID, err)
	}

	pnl := realizedPnl(position, closePrice)
	now := e.now()

	closed, err := e.positions.CloseIfOpen(ctx, positionID, closePrice, pnl, now)
	if err != nil {
		return nil, fmt.Errorf("persist close of %s: %w", positionID, err)
	}
	if !closed {
		// State already transitioned under a concurrent close.
		return nil, fmt.Errorf("position %s already closed: %w", positionID, model.ErrNotFound)
	}

	olk := e.locks.acquire(ownerKey(userID))
	olk.Lock()
	err = e.portfolios.ApplyDelta(ctx, userID, model.PortfolioDelta{
		TotalValue:    pnl,
		DailyPnl:      pnl,
		CumulativePnl: pnl,
	})
	olk.Unlock()
	if err != nil {
		return nil, fmt.Errorf("apply close delta: %w", err)
	}

	severity := model.AuditSeverityInfo
	if pnl < 0 {
		severity = model.AuditSeverityWarn
	}
	e.audit.Record(ctx, severity,
		fmt.Sprintf("closed %s %s at %.4f, pnl %.2f", position.Side, position.Symbol, closePrice, pnl),
		model.PositionClosedPayload{
			PositionID: positionID,
			Symbol:     position.Symbol,
			Side:       position.Side,
			ExitPrice:  closePrice,
			Pnl:        pnl,
			Trigger:    trigger,
		})

	position.Status = model.PositionStatusClosed
	position.ExitPrice = &closePrice
	position.CurrentPrice = nil
	position.RealizedPnl = pnl
	position.UnrealizedPnl = 0
	position.ClosedAt = &now

	e.logger.WithFields(map[string]interface{}{
		"position_id": positionID,
		"user_id":     userID,
		"symbol":      position.Symbol,
		"pnl":         pnl,
		"trigger":     trigger,
	}).Info("position closed")

	return position, nil
}

// realizedPnl is (close - entry) x quantity for LONG, sign-inverted
// for SHORT.
func realizedPnl(position *model.Position, closePrice float64) float64 {
	pnl := (closePrice - position.EntryPrice) * position.Quantity
	if position.Side == model.DirectionShort {
		pnl = -pnl
	}
	return pnl
}

// checkLevels enforces the creation invariant: stop strictly on the
// losing side of entry, target strictly on the winning side, for the
// given direction. Violations are rejected, never auto-corrected.
func checkLevels(p *model.Position) (string, bool) {
	switch p.Side {
	case model.DirectionLong:
		if p.StopLoss != nil && *p.StopLoss >= p.EntryPrice {
			return "stop loss must sit below entry for a long", false
		}
		if p.TakeProfit != nil && *p.TakeProfit <= p.EntryPrice {
			return "take profit must sit above entry for a long", false
		}
	case model.DirectionShort:
		if p.StopLoss != nil && *p.StopLoss <= p.EntryPrice {
			return "stop loss must sit above entry for a short", false
		}
		if p.TakeProfit != nil && *p.TakeProfit >= p.EntryPrice {
			return "take profit must sit below entry for a short", false
		}
	default:
		return fmt.Sprintf("direction %q is not tradable", p.Side), false
	}
	return "", true
}

func (e *Engine) recordRejection(ctx context.Context, proposed *model.Position, reason string, score float64) {
	e.audit.Record(ctx, model.AuditSeverityWarn,
		fmt.Sprintf("rejected %s %s: %s", proposed.Side, proposed.Symbol, reason),
		model.RiskRejectedPayload{
			Symbol:    proposed.Symbol,
			Side:      string(proposed.Side),
			Reason:    reason,
			RiskScore: score,
		})
}
