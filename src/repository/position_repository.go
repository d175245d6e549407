package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradingcore/src/database"
	"tradingcore/src/model"
)

// PositionRepository handles read/write operations for positions.
// Closed rows are never deleted; they stay for audit.
type PositionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a repository on the main read/write
// database.
func NewPositionRepository() *PositionRepository {
	logger.WithField("component", "PositionRepository").
		Info("Creating new PositionRepository with MainDB")

	return &PositionRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *PositionRepository) WithDB(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// Create inserts a new position.
func (r *PositionRepository) Create(ctx context.Context, position *model.Position) error {
	logger.WithFields(map[string]interface{}{
		"repo":   "PositionRepository",
		"op":     "Create",
		"symbol": position.Symbol,
		"side":   position.Side,
		"qty":    position.Quantity,
	}).Debug("Creating new position")

	if err := r.db.WithContext(ctx).Create(position).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create position")
		return err
	}

	return nil
}

// ListByUser returns every position belonging to the user, newest
// first.
func (r *PositionRepository) ListByUser(ctx context.Context, userID uint) ([]model.Position, error) {
	var positions []model.Position

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&positions).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "PositionRepository",
			"op":      "ListByUser",
			"user_id": userID,
		}).WithError(err).Error("Failed to list positions")
		return nil, err
	}

	return positions, nil
}

// ListOpenByUser returns the user's OPEN positions.
func (r *PositionRepository) ListOpenByUser(ctx context.Context, userID uint) ([]model.Position, error) {
	var positions []model.Position

	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.PositionStatusOpen).
		Find(&positions).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "PositionRepository",
			"op":      "ListOpenByUser",
			"user_id": userID,
		}).WithError(err).Error("Failed to list open positions")
		return nil, err
	}

	return positions, nil
}

// ListOpen returns every OPEN position across owners, for the monitor
// sweep.
func (r *PositionRepository) ListOpen(ctx context.Context) ([]model.Position, error) {
	var positions []model.Position

	err := r.db.WithContext(ctx).
		Where("status = ?", model.PositionStatusOpen).
		Find(&positions).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "ListOpen",
		}).WithError(err).Error("Failed to list open positions")
		return nil, err
	}

	return positions, nil
}

// GetOpen fetches an OPEN position by id and owner.
// Returns (nil, nil) if no such position exists.
func (r *PositionRepository) GetOpen(ctx context.Context, id string, userID uint) (*model.Position, error) {
	var position model.Position

	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, model.PositionStatusOpen).
		First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo":    "PositionRepository",
				"op":      "GetOpen",
				"id":      id,
				"user_id": userID,
			}).Info("Open position not found")
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":    "PositionRepository",
			"op":      "GetOpen",
			"id":      id,
			"user_id": userID,
		}).WithError(err).Error("Failed to fetch open position")
		return nil, err
	}

	return &position, nil
}

// UpdatePrice refreshes current price and unrealized P&L for an open
// position.
func (r *PositionRepository) UpdatePrice(ctx context.Context, id string, current, unrealized float64) error {
	err := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Where("id = ? AND status = ?", id, model.PositionStatusOpen).
		Updates(map[string]interface{}{
			"current_price":  current,
			"unrealized_pnl": unrealized,
		}).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "UpdatePrice",
			"id":   id,
		}).WithError(err).Error("Failed to update position price")
		return err
	}

	return nil
}

// CloseIfOpen transitions the position to CLOSED only while it is
// still OPEN. The status guard in the WHERE clause makes the
// transition exactly-once: the second caller updates zero rows.
func (r *PositionRepository) CloseIfOpen(ctx context.Context, id string, exitPrice, realizedPnl float64, closedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Where("id = ? AND status = ?", id, model.PositionStatusOpen).
		Updates(map[string]interface{}{
			"status":         model.PositionStatusClosed,
			"exit_price":     exitPrice,
			"realized_pnl":   realizedPnl,
			"unrealized_pnl": 0,
			"current_price":  nil,
			"closed_at":      closedAt,
		})
	if res.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "CloseIfOpen",
			"id":   id,
		}).WithError(res.Error).Error("Failed to close position")
		return false, res.Error
	}

	closed := res.RowsAffected > 0
	logger.WithFields(map[string]interface{}{
		"repo":   "PositionRepository",
		"op":     "CloseIfOpen",
		"id":     id,
		"closed": closed,
	}).Info("Close transition attempted")

	return closed, nil
}
