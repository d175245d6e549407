package risk

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"tradingcore/src/model"
)

// Assessment is the validator's verdict on a proposed position change.
// RiskScore is observability only; it never gates the decision.
type Assessment struct {
	Allowed   bool    `json:"allowed"`
	Reason    string  `json:"reason,omitempty"`
	RiskScore float64 `json:"risk_score"`
}

// Validator runs the ordered check battery over read-only snapshots.
// It holds no persisted state.
type Validator struct {
	logger *logrus.Entry
	cfg    Config
}

func NewValidator(logger *logrus.Entry, cfg Config) *Validator {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Validator{logger: logger, cfg: cfg}
}

const rejectedMalformedReason = "position rejected: invalid numeric input"

// Validate approves or vetoes the proposed position. Checks run in a
// fixed order and the first failure short-circuits with its own reason
// and score. Malformed numeric inputs fail closed.
func (v *Validator) Validate(proposed *model.Position, portfolio *model.Portfolio, open []model.Position) Assessment {
	if proposed == nil || portfolio == nil || malformed(proposed, portfolio) {
		v.logger.WithField("check", "input").Warn("risk validation failed closed on malformed input")
		return Assessment{Allowed: false, Reason: rejectedMalformedReason, RiskScore: 100}
	}

	total := decimal.NewFromFloat(portfolio.TotalValue)

	// 1. position size
	value := decimal.NewFromFloat(proposed.EntryPrice).Mul(decimal.NewFromFloat(proposed.Quantity))
	sizePct, _ := value.Div(total).Float64()
	sizeScore := componentScore(sizePct)
	if sizePct > v.cfg.MaxPositionSizePct {
		return v.reject(proposed,
			fmt.Sprintf("position size %.2f%% of portfolio exceeds %.2f%% limit",
				sizePct*100, v.cfg.MaxPositionSizePct*100),
			sizeScore)
	}

	// 2. aggregate exposure
	exposurePct := v.aggregateExposure(portfolio, open)
	exposureScore := componentScore(exposurePct)
	if exposurePct > v.cfg.MaxExposurePct {
		return v.reject(proposed,
			fmt.Sprintf("aggregate exposure %.2f%% exceeds %.2f%% limit",
				exposurePct*100, v.cfg.MaxExposurePct*100),
			exposureScore)
	}

	// 3. daily loss
	dailyLossPct := 0.0
	if portfolio.DailyPnl < 0 {
		dailyLossPct = math.Abs(portfolio.DailyPnl) / portfolio.TotalValue
	}
	dailyLossScore := componentScore(dailyLossPct)
	if dailyLossPct > v.cfg.MaxDailyLossPct {
		return v.reject(proposed,
			fmt.Sprintf("daily loss %.2f%% exceeds %.2f%% limit",
				dailyLossPct*100, v.cfg.MaxDailyLossPct*100),
			dailyLossScore)
	}

	// 4. drawdown, against an approximate reconstructed peak
	peak := portfolio.TotalValue - portfolio.CumulativePnl + math.Max(0, portfolio.CumulativePnl)
	drawdownPct := 0.0
	if peak > 0 {
		drawdownPct = (peak - portfolio.TotalValue) / peak
	}
	if drawdownPct > v.cfg.MaxDrawdownPct {
		return v.reject(proposed,
			fmt.Sprintf("drawdown %.2f%% exceeds %.2f%% limit",
				drawdownPct*100, v.cfg.MaxDrawdownPct*100),
			componentScore(drawdownPct))
	}

	// 5. concentration
	symbolCount, categoryCount := v.concentration(proposed, open)
	concScore := math.Min(100,
		math.Max(float64(symbolCount)*100/float64(v.cfg.MaxPositionsPerSymbol),
			float64(categoryCount)*100/float64(v.cfg.MaxPositionsPerCategory)))
	if symbolCount >= v.cfg.MaxPositionsPerSymbol {
		return v.reject(proposed,
			fmt.Sprintf("%d open positions already on %s", symbolCount, proposed.Symbol),
			concScore)
	}
	if categoryCount >= v.cfg.MaxPositionsPerCategory {
		return v.reject(proposed,
			fmt.Sprintf("%d open positions already in category %s",
				categoryCount, model.CategoryForSymbol(proposed.Symbol)),
			concScore)
	}

	score := 0.3*sizeScore + 0.3*exposureScore + 0.2*dailyLossScore + 0.2*concScore

	v.logger.WithFields(map[string]interface{}{
		"symbol":     proposed.Symbol,
		"side":       proposed.Side,
		"risk_score": score,
	}).Debug("position passed risk validation")

	return Assessment{Allowed: true, RiskScore: score}
}

func (v *Validator) reject(proposed *model.Position, reason string, score float64) Assessment {
	v.logger.WithFields(map[string]interface{}{
		"symbol":     proposed.Symbol,
		"side":       proposed.Side,
		"reason":     reason,
		"risk_score": score,
	}).Warn("position rejected by risk validation")

	return Assessment{Allowed: false, Reason: reason, RiskScore: score}
}

// aggregateExposure sums positionValue x perPositionRisk over the open
// book, as a fraction of total value. Positions without a stop fall
// back to the configured max risk per trade.
func (v *Validator) aggregateExposure(portfolio *model.Portfolio, open []model.Position) float64 {
	total := decimal.NewFromFloat(portfolio.TotalValue)
	exposure := decimal.Zero

	for _, p := range open {
		if p.EntryPrice <= 0 {
			continue
		}

		perRisk := v.cfg.MaxRiskPerTrade
		if p.StopLoss != nil {
			perRisk = math.Abs(p.EntryPrice-*p.StopLoss) / p.EntryPrice
		}

		posValue := decimal.NewFromFloat(p.EntryPrice).Mul(decimal.NewFromFloat(p.Quantity))
		exposure = exposure.Add(posValue.Mul(decimal.NewFromFloat(perRisk)))
	}

	pct, _ := exposure.Div(total).Float64()
	return pct
}

func (v *Validator) concentration(proposed *model.Position, open []model.Position) (symbolCount, categoryCount int) {
	category := model.CategoryForSymbol(proposed.Symbol)

	for _, p := range open {
		if p.Symbol == proposed.Symbol {
			symbolCount++
		}
		if model.CategoryForSymbol(p.Symbol) == category {
			categoryCount++
		}
	}

	return symbolCount, categoryCount
}

// componentScore scales a fraction into the 0-100 score space: twice
// its percentage, capped. A 6% size fraction scores 12.
func componentScore(pct float64) float64 {
	return math.Min(100, pct*100*2)
}

func malformed(proposed *model.Position, portfolio *model.Portfolio) bool {
	values := []float64{
		proposed.EntryPrice, proposed.Quantity,
		portfolio.TotalValue, portfolio.DailyPnl, portfolio.CumulativePnl,
	}
	if proposed.StopLoss != nil {
		values = append(values, *proposed.StopLoss)
	}
	if proposed.TakeProfit != nil {
		values = append(values, *proposed.TakeProfit)
	}

	for _, f := range values {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return true
		}
	}

	return proposed.EntryPrice <= 0 || proposed.Quantity <= 0 || portfolio.TotalValue <= 0
}
