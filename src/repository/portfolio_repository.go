package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradingcore/src/database"
	"tradingcore/src/model"
)

// PortfolioRepository handles the owner-scoped portfolio aggregates.
type PortfolioRepository struct {
	db *gorm.DB
}

func NewPortfolioRepository() *PortfolioRepository {
	logger.WithField("component", "PortfolioRepository").
		Info("Creating new PortfolioRepository with MainDB")

	return &PortfolioRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *PortfolioRepository) WithDB(db *gorm.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// Create inserts a new portfolio row for an owner.
func (r *PortfolioRepository) Create(ctx context.Context, portfolio *model.Portfolio) error {
	if err := r.db.WithContext(ctx).Create(portfolio).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "PortfolioRepository",
			"op":      "Create",
			"user_id": portfolio.UserID,
		}).WithError(err).Error("Failed to create portfolio")
		return err
	}
	return nil
}

// Get fetches the portfolio for an owner.
// Returns (nil, nil) if the owner has no portfolio.
func (r *PortfolioRepository) Get(ctx context.Context, userID uint) (*model.Portfolio, error) {
	var portfolio model.Portfolio

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&portfolio).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo":    "PortfolioRepository",
				"op":      "Get",
				"user_id": userID,
			}).Info("Portfolio not found")
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":    "PortfolioRepository",
			"op":      "Get",
			"user_id": userID,
		}).WithError(err).Error("Failed to fetch portfolio")
		return nil, err
	}

	return &portfolio, nil
}

// ApplyDelta adds the delta onto the stored aggregate inside a
// transaction. The arithmetic happens in the database, so two
// concurrent deltas both land instead of one overwriting the other.
func (r *PortfolioRepository) ApplyDelta(ctx context.Context, userID uint, delta model.PortfolioDelta) error {
	logger.WithFields(map[string]interface{}{
		"repo":      "PortfolioRepository",
		"op":        "ApplyDelta",
		"user_id":   userID,
		"total":     delta.TotalValue,
		"daily_pnl": delta.DailyPnl,
	}).Debug("Applying portfolio delta")

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Portfolio{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"total_value":       gorm.Expr("total_value + ?", delta.TotalValue),
				"available_balance": gorm.Expr("available_balance + ?", delta.AvailableBalance),
				"daily_pnl":         gorm.Expr("daily_pnl + ?", delta.DailyPnl),
				"cumulative_pnl":    gorm.Expr("cumulative_pnl + ?", delta.CumulativePnl),
				"risk_exposure":     gorm.Expr("risk_exposure + ?", delta.RiskExposure),
			})
		if res.Error != nil {
			logger.WithFields(map[string]interface{}{
				"repo":    "PortfolioRepository",
				"op":      "ApplyDelta",
				"user_id": userID,
			}).WithError(res.Error).Error("Failed to apply portfolio delta")
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
