package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tradingcore/src/model"
)

func newPortfolioTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in memory db: %v", err)
	}

	if err := db.AutoMigrate(&model.Portfolio{}); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}

	return db
}

func TestPortfolioRepositoryGet(t *testing.T) {
	repo := (&PortfolioRepository{}).WithDB(newPortfolioTestDB(t))

	if err := repo.Create(context.Background(), &model.Portfolio{
		UserID:           1,
		TotalValue:       100000,
		AvailableBalance: 100000,
	}); err != nil {
		t.Fatalf("failed to create portfolio: %v", err)
	}

	got, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.TotalValue != 100000 {
		t.Fatalf("unexpected portfolio: %+v", got)
	}

	got, err = repo.Get(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected (nil, nil) for an unknown owner, got %+v", got)
	}
}

func TestPortfolioRepositoryApplyDeltaIsAdditive(t *testing.T) {
	repo := (&PortfolioRepository{}).WithDB(newPortfolioTestDB(t))

	if err := repo.Create(context.Background(), &model.Portfolio{
		UserID:           1,
		TotalValue:       100000,
		AvailableBalance: 100000,
	}); err != nil {
		t.Fatalf("failed to create portfolio: %v", err)
	}

	deltas := []model.PortfolioDelta{
		{TotalValue: 150, DailyPnl: 150, CumulativePnl: 150},
		{TotalValue: -50, DailyPnl: -50, CumulativePnl: -50},
		{}, // zero delta, the open-side no-op
	}
	for _, delta := range deltas {
		if err := repo.ApplyDelta(context.Background(), 1, delta); err != nil {
			t.Fatalf("failed to apply delta %+v: %v", delta, err)
		}
	}

	got, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalValue != 100100 {
		t.Fatalf("expected total value 100100, got %v", got.TotalValue)
	}
	if got.DailyPnl != 100 || got.CumulativePnl != 100 {
		t.Fatalf("expected both pnl aggregates at 100, got daily %v cumulative %v",
			got.DailyPnl, got.CumulativePnl)
	}
	if got.AvailableBalance != 100000 {
		t.Fatalf("available balance must be untouched, got %v", got.AvailableBalance)
	}
}

func TestPortfolioRepositoryApplyDeltaUnknownOwner(t *testing.T) {
	repo := (&PortfolioRepository{}).WithDB(newPortfolioTestDB(t))

	err := repo.ApplyDelta(context.Background(), 42, model.PortfolioDelta{TotalValue: 10})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
