package repository

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tradingcore/src/database"
	"tradingcore/src/model"
)

// AuditRepository persists the audit trail. Record is fire-and-forget:
// a failed write is logged and swallowed, it never fails the caller.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository() *AuditRepository {
	logger.WithField("component", "AuditRepository").
		Info("Creating new AuditRepository with MainDB")

	return &AuditRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *AuditRepository) WithDB(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Record(ctx context.Context, severity, message string, payload model.AuditPayload) {
	record, err := model.NewAuditRecord(severity, message, payload)
	if err != nil {
		logger.WithError(err).WithField("activity", payload.AuditActivity()).
			Error("Failed to encode audit payload")
		return
	}

	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		logger.WithError(err).WithFields(map[string]interface{}{
			"repo":     "AuditRepository",
			"op":       "Record",
			"activity": record.Activity,
		}).Error("Failed to persist audit record")
		return
	}

	logger.WithFields(map[string]interface{}{
		"activity": record.Activity,
		"severity": record.Severity,
		"message":  record.Message,
	}).Debug("Audit record persisted")
}

// FindLatest returns the latest audit records, newest first.
func (r *AuditRepository) FindLatest(ctx context.Context, limit int) ([]model.AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []model.AuditRecord
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":  "AuditRepository",
			"op":    "FindLatest",
			"limit": limit,
		}).WithError(err).Error("Failed to fetch audit records")
		return nil, err
	}

	return records, nil
}
