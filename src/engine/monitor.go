package engine

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"tradingcore/src/model"
)

const (
	TriggerStopLoss   = "Stop Loss"
	TriggerTakeProfit = "Take Profit"
)

// Monitor reconciles live prices against exit thresholds for every
// open position. It runs on the scheduler's short cadence.
type Monitor struct {
	logger *logrus.Entry
	engine *Engine
}

func NewMonitor(logger *logrus.Entry, engine *Engine) *Monitor {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Monitor{logger: logger, engine: engine}
}

// Sweep refreshes current price and unrealized P&L for every open
// position, then evaluates exit conditions, stop-loss before
// take-profit. Instruments without a price are skipped without error.
func (m *Monitor) Sweep(ctx context.Context) {
	open, err := m.engine.positions.ListOpen(ctx)
	if err != nil {
		m.logger.WithError(err).Error("monitor sweep failed to list open positions")
		return
	}

	for i := range open {
		m.check(ctx, &open[i])
	}
}

func (m *Monitor) check(ctx context.Context, position *model.Position) {
	snap, err := m.engine.snapshots.Get(ctx, position.Symbol)
	if err != nil || snap == nil {
		m.logger.WithField("symbol", position.Symbol).Debug("no price, position skipped this sweep")
		return
	}

	price := snap.Price
	unrealized := realizedPnl(position, price)
	if err := m.engine.positions.UpdatePrice(ctx, position.ID, price, unrealized); err != nil {
		m.logger.WithError(err).WithField("position_id", position.ID).Error("failed to refresh position price")
	}

	trigger := exitTrigger(position, price)
	if trigger == "" {
		return
	}

	if _, err := m.engine.close(ctx, position.ID, position.UserID, trigger); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// Lost the race to another closer; nothing to do.
			return
		}
		m.logger.WithError(err).WithFields(map[string]interface{}{
			"position_id": position.ID,
			"trigger":     trigger,
		}).Warn("triggered close failed, will retry next sweep")
		return
	}

	m.logger.WithFields(map[string]interface{}{
		"position_id": position.ID,
		"symbol":      position.Symbol,
		"trigger":     trigger,
		"price":       price,
	}).Info("exit threshold hit")
}

// exitTrigger evaluates stop before target. A position missing a stop
// or target is exempt from that side's check only.
func exitTrigger(position *model.Position, price float64) string {
	switch position.Side {
	case model.DirectionLong:
		if position.StopLoss != nil && price <= *position.StopLoss {
			return TriggerStopLoss
		}
		if position.TakeProfit != nil && price >= *position.TakeProfit {
			return TriggerTakeProfit
		}
	case model.DirectionShort:
		if position.StopLoss != nil && price >= *position.StopLoss {
			return TriggerStopLoss
		}
		if position.TakeProfit != nil && price <= *position.TakeProfit {
			return TriggerTakeProfit
		}
	}
	return ""
}
