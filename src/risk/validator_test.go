package risk

import (
	"math"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"

	"tradingcore/src/model"
)

func testValidator() *Validator {
	null, _ := logrustest.NewNullLogger()
	return NewValidator(logrus.NewEntry(null), Config{
		MaxPositionSizePct:      0.05,
		MaxExposurePct:          0.10,
		MaxDailyLossPct:         0.05,
		MaxDrawdownPct:          0.15,
		MaxRiskPerTrade:         0.02,
		MaxPositionsPerSymbol:   3,
		MaxPositionsPerCategory: 5,
	})
}

func floatPtr(v float64) *float64 {
	return &v
}

func healthyPortfolio() *model.Portfolio {
	return &model.Portfolio{UserID: 1, TotalValue: 100000, AvailableBalance: 100000}
}

func TestValidateRejectsOversizedPosition(t *testing.T) {
	v := testValidator()

	// 60 x 100 = 6000, 6% of a 100000 portfolio, over the 5% ceiling.
	proposed := &model.Position{
		UserID:     1,
		Symbol:     "BTCUSDT",
		Side:       model.DirectionLong,
		EntryPrice: 100,
		Quantity:   60,
	}

	got := v.Validate(proposed, healthyPortfolio(), nil)

	if got.Allowed {
		t.Fatalf("expected rejection, got %+v", got)
	}
	if !strings.Contains(got.Reason, "position size") {
		t.Fatalf("expected a position size reason, got %q", got.Reason)
	}
	if math.Abs(got.RiskScore-12) > 1e-9 {
		t.Fatalf("expected risk score 12, got %v", got.RiskScore)
	}
}

func TestValidateFirstFailingCheckWins(t *testing.T) {
	v := testValidator()

	// Both the size check and the daily loss check are violated. The
	// battery is ordered, so the size reason must be the one reported.
	portfolio := healthyPortfolio()
	portfolio.DailyPnl = -6000

	proposed := &model.Position{
		UserID:     1,
		Symbol:     "BTCUSDT",
		Side:       model.DirectionLong,
		EntryPrice: 100,
		Quantity:   60,
	}

	got := v.Validate(proposed, portfolio, nil)

	if got.Allowed {
		t.Fatalf("expected rejection, got %+v", got)
	}
	if !strings.Contains(got.Reason, "position size") {
		t.Fatalf("expected the size reason to short-circuit, got %q", got.Reason)
	}
}

func TestValidateFailsClosedOnMalformedInput(t *testing.T) {
	v := testValidator()

	cases := []struct {
		name      string
		proposed  *model.Position
		portfolio *model.Portfolio
	}{
		{
			name:      "nan entry price",
			proposed:  &model.Position{Symbol: "BTCUSDT", Side: model.DirectionLong, EntryPrice: math.NaN(), Quantity: 1},
			portfolio: healthyPortfolio(),
		},
		{
			name:      "infinite quantity",
			proposed:  &model.Position{Symbol: "BTCUSDT", Side: model.DirectionLong, EntryPrice: 100, Quantity: math.Inf(1)},
			portfolio: healthyPortfolio(),
		},
		{
			name:      "zero quantity",
			proposed:  &model.Position{Symbol: "BTCUSDT", Side: model.DirectionLong, EntryPrice: 100, Quantity: 0},
			portfolio: healthyPortfolio(),
		},
		{
			name:      "negative entry price",
			proposed:  &model.Position{Symbol: "BTCUSDT", Side: model.DirectionLong, EntryPrice: -5, Quantity: 1},
			portfolio: healthyPortfolio(),
		},
		{
			name:      "nan stop loss",
			proposed:  &model.Position{Symbol: "BTCUSDT", Side: model.DirectionLong, EntryPrice: 100, Quantity: 1, StopLoss: floatPtr(math.NaN())},
			portfolio: healthyPortfolio(),
		},
		{
			name:      "empty portfolio",
			proposed:  &model.Position{Symbol: "BTCUSDT", Side: model.DirectionLong, EntryPrice: 100, Quantity: 1},
			portfolio: &model.Portfolio{UserID: 1, TotalValue: 0},
		},
		{
			name:      "nil portfolio",
			proposed:  &model.Position{Symbol: "BTCUSDT", Side: model.DirectionLong, EntryPrice: 100, Quantity: 1},
			portfolio: nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := v.Validate(tc.proposed, tc.portfolio, nil)
			if got.Allowed {
				t.Fatalf("expected fail-closed rejection, got %+v", got)
			}
			if got.Reason != rejectedMalformedReason {
				t.Fatalf("unexpected reason %q", got.Reason)
			}
			if got.RiskScore != 100 {
				t.Fatalf("expected risk score 100, got %v", got.RiskScore)
			}
		})
	}
}

func TestValidateRejectsAggregateExposure(t *testing.T) {
	v := testValidator()

	// One open position risking 20% of the portfolio: value 100000,
	// stop 20% away from entry.
	open := []model.Position{
		{Symbol: "ETHUSDT", Side: model.DirectionLong, EntryPrice: 100, Quantity: 1000, StopLoss: floatPtr(80)},
	}

	proposed := &model.Position{
		UserID:     1,
		Symbol:     "BTCUSDT",
		Side:       model.DirectionLong,
		EntryPrice: 100,
		Quantity:   10,
	}

	got := v.Validate(proposed, healthyPortfolio(), open)

	if got.Allowed {
		t.Fatalf("expected rejection, got %+v", got)
	}
	if !strings.Contains(got.Reason, "aggregate exposure") {
		t.Fatalf("expected an exposure reason, got %q", got.Reason)
	}
}

func TestValidateRejectsDailyLoss(t *testing.T) {
	v := testValidator()

	portfolio := healthyPortfolio()
	portfolio.DailyPnl = -6000 // 6% of total, over the 5% limit

	proposed := &model.Position{
		UserID:     1,
		Symbol:     "BTCUSDT",
		Side:       model.DirectionLong,
		EntryPrice: 100,
		Quantity:   10,
	}

	got := v.Validate(proposed, portfolio, nil)

	if got.Allowed {
		t.Fatalf("expected rejection, got %+v", got)
	}
	if !strings.Contains(got.Reason, "daily loss") {
		t.Fatalf("expected a daily loss reason, got %q", got.Reason)
	}
}

func TestValidateRejectsDrawdown(t *testing.T) {
	v := testValidator()

	// Reconstructed peak is 80000 + 20000 = 100000, so the portfolio
	// sits 20% below peak, over the 15% limit.
	portfolio := &model.Portfolio{UserID: 1, TotalValue: 80000, CumulativePnl: -20000}

	proposed := &model.Position{
		UserID:     1,
		Symbol:     "BTCUSDT",
		Side:       model.DirectionLong,
		EntryPrice: 100,
		Quantity:   10,
	}

	got := v.Validate(proposed, portfolio, nil)

	if got.Allowed {
		t.Fatalf("expected rejection, got %+v", got)
	}
	if !strings.Contains(got.Reason, "drawdown") {
		t.Fatalf("expected a drawdown reason, got %q", got.Reason)
	}
}

func TestValidateRejectsSymbolConcentration(t *testing.T) {
	v := testValidator()

	open := []model.Position{
		{Symbol: "BTCUSDT", EntryPrice: 100, Quantity: 1, StopLoss: floatPtr(99)},
		{Symbol: "BTCUSDT", EntryPrice: 100, Quantity: 1, StopLoss: floatPtr(99)},
		{Symbol: "BTCUSDT", EntryPrice: 100, Quantity: 1, StopLoss: floatPtr(99)},
	}

	proposed := &model.Position{
		UserID:     1,
		Symbol:     "BTCUSDT",
		Side:       model.DirectionLong,
		EntryPrice: 100,
		Quantity:   10,
	}

	got := v.Validate(proposed, healthyPortfolio(), open)

	if got.Allowed {
		t.Fatalf("expected rejection, got %+v", got)
	}
	if !strings.Contains(got.Reason, "BTCUSDT") {
		t.Fatalf("expected a symbol concentration reason, got %q", got.Reason)
	}
}

func TestValidateRejectsCategoryConcentration(t *testing.T) {
	v := testValidator()

	open := []model.Position{
		{Symbol: "BTCUSDT", EntryPrice: 100, Quantity: 1, StopLoss: floatPtr(99)},
		{Symbol: "ETHUSDT", EntryPrice: 100, Quantity: 1, StopLoss: floatPtr(99)},
		{Symbol: "SOLUSDT", EntryPrice: 100, Quantity: 1, StopLoss: floatPtr(99)},
		{Symbol: "XRPUSDT", EntryPrice: 100, Quantity: 1, StopLoss: floatPtr(99)},
		{Symbol: "ADAUSDT", EntryPrice: 100, Quantity: 1, StopLoss: floatPtr(99)},
	}

	proposed := &model.Position{
		UserID:     1,
		Symbol:     "DOGEUSDT",
		Side:       model.DirectionLong,
		EntryPrice: 100,
		Quantity:   10,
	}

	got := v.Validate(proposed, healthyPortfolio(), open)

	if got.Allowed {
		t.Fatalf("expected rejection, got %+v", got)
	}
	if !strings.Contains(got.Reason, "category") {
		t.Fatalf("expected a category concentration reason, got %q", got.Reason)
	}
}

func TestValidateAllowsAndBlendsScore(t *testing.T) {
	v := testValidator()

	portfolio := healthyPortfolio()
	portfolio.DailyPnl = 500 // profitable day contributes no loss component

	// 1% of portfolio: size component scores 2, everything else 0,
	// blended as 0.3 x 2 = 0.6.
	proposed := &model.Position{
		UserID:     1,
		Symbol:     "BTCUSDT",
		Side:       model.DirectionLong,
		EntryPrice: 100,
		Quantity:   10,
	}

	got := v.Validate(proposed, portfolio, nil)

	if !got.Allowed {
		t.Fatalf("expected approval, got rejection %q", got.Reason)
	}
	if got.Reason != "" {
		t.Fatalf("approval should carry no reason, got %q", got.Reason)
	}
	if math.Abs(got.RiskScore-0.6) > 1e-9 {
		t.Fatalf("expected blended risk score 0.6, got %v", got.RiskScore)
	}
}
