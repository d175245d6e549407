package repository

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tradingcore/src/model"
)

func newAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in memory db: %v", err)
	}

	if err := db.AutoMigrate(&model.AuditRecord{}); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}

	return db
}

func TestAuditRepositoryRecordAndFindLatest(t *testing.T) {
	repo := (&AuditRepository{}).WithDB(newAuditTestDB(t))
	ctx := context.Background()

	repo.Record(ctx, model.AuditSeverityInfo, "opened LONG BTCUSDT at 100.0500", model.PositionOpenedPayload{
		PositionID: "pos-1",
		Symbol:     "BTCUSDT",
		Side:       model.DirectionLong,
		Price:      100.05,
		Quantity:   10,
		Confidence: 64,
	})
	repo.Record(ctx, model.AuditSeverityWarn, "rejected LONG BTCUSDT: position size", model.RiskRejectedPayload{
		Symbol:    "BTCUSDT",
		Side:      "LONG",
		Reason:    "position size 6.00% of portfolio exceeds 5.00% limit",
		RiskScore: 12,
	})

	records, err := repo.FindLatest(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	// Newest first.
	if records[0].Activity != model.ActivityRiskRejected {
		t.Fatalf("expected the rejection first, got %s", records[0].Activity)
	}
	if records[1].Activity != model.ActivityPositionOpened {
		t.Fatalf("expected the open second, got %s", records[1].Activity)
	}

	var payload model.RiskRejectedPayload
	if err := json.Unmarshal([]byte(records[0].Payload), &payload); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if payload.RiskScore != 12 {
		t.Fatalf("expected risk score 12 in the payload, got %v", payload.RiskScore)
	}
}

func TestAuditRepositoryRecordSwallowsFailures(t *testing.T) {
	db := newAuditTestDB(t)
	repo := (&AuditRepository{}).WithDB(db)

	if err := db.Migrator().DropTable(&model.AuditRecord{}); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	// Must not panic or surface the error; auditing is fire-and-forget.
	repo.Record(context.Background(), model.AuditSeverityInfo, "doomed", model.SignalGeneratedPayload{
		SignalID: "sig-1",
		Symbol:   "BTCUSDT",
	})
}
