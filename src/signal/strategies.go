package signal

import (
	"fmt"
	"math"

	"tradingcore/src/model"
)

// Vote is one sub-strategy's reading of a snapshot. Levels are always
// produced, even for a HOLD, derived from a volatility multiple.
type Vote struct {
	Direction  model.Direction
	Confidence float64
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
	Rationale  string
}

// SubStrategy is a pure function over one market snapshot. Evaluate
// returns model.ErrDataUnavailable when a required indicator is
// missing from the snapshot.
type SubStrategy struct {
	Name     string
	Weight   float64
	Evaluate func(snap *model.MarketSnapshot) (Vote, error)
}

// defaultStrategies returns the fixed ensemble members in weight
// order. The first member's levels are the ones every winning signal
// inherits.
func defaultStrategies() []SubStrategy {
	return []SubStrategy{
		{Name: "trend_rider", Weight: 0.40, Evaluate: evaluateTrendRider},
		{Name: "mean_reversion", Weight: 0.35, Evaluate: evaluateMeanReversion},
		{Name: "range_breakout", Weight: 0.25, Evaluate: evaluateRangeBreakout},
	}
}

// levels derives stop and target from the volatility range. HOLD votes
// carry long-side levels.
func levels(price, volRange float64, direction model.Direction, stopMult, targetMult float64) (stop, target float64) {
	if direction == model.DirectionShort {
		return price + stopMult*volRange, price - targetMult*volRange
	}
	return price - stopMult*volRange, price + targetMult*volRange
}

func clampConfidence(c float64) float64 {
	return math.Max(0, math.Min(100, c))
}

// evaluateTrendRider follows the fast/slow trend averages, demanding
// the divergence histogram agree with the crossing.
func evaluateTrendRider(snap *model.MarketSnapshot) (Vote, error) {
	ind := snap.Indicators
	if ind.FastTrend == nil || ind.SlowTrend == nil || ind.Divergence == nil || ind.VolatilityRange == nil {
		return Vote{}, model.ErrDataUnavailable
	}

	fast, slow, div := *ind.FastTrend, *ind.SlowTrend, *ind.Divergence
	spreadPct := 0.0
	if slow != 0 {
		spreadPct = (fast - slow) / slow * 100
	}

	vote := Vote{Direction: model.DirectionHold, EntryPrice: snap.Price}

	switch {
	case fast > slow && div > 0:
		vote.Direction = model.DirectionLong
		vote.Confidence = clampConfidence(55 + spreadPct*40)
		vote.Rationale = fmt.Sprintf("fast trend %.2f above slow %.2f with positive divergence", fast, slow)
	case fast < slow && div < 0:
		vote.Direction = model.DirectionShort
		vote.Confidence = clampConfidence(55 - spreadPct*40)
		vote.Rationale = fmt.Sprintf("fast trend %.2f below slow %.2f with negative divergence", fast, slow)
	default:
		vote.Rationale = "trend averages and divergence disagree"
	}

	vote.StopLoss, vote.TakeProfit = levels(snap.Price, *ind.VolatilityRange, vote.Direction, 1.5, 2.5)
	return vote, nil
}

// evaluateMeanReversion fades oscillator extremes, scaled by how far
// past the band the oscillator sits.
func evaluateMeanReversion(snap *model.MarketSnapshot) (Vote, error) {
	ind := snap.Indicators
	if ind.Oscillator == nil || ind.BandWidth == nil || ind.VolatilityRange == nil {
		return Vote{}, model.ErrDataUnavailable
	}

	osc := *ind.Oscillator
	vote := Vote{Direction: model.DirectionHold, EntryPrice: snap.Price}

	switch {
	case osc <= 30:
		vote.Direction = model.DirectionLong
		vote.Confidence = clampConfidence(60 + (30-osc)*1.5)
		vote.Rationale = fmt.Sprintf("oscillator %.1f oversold", osc)
	case osc >= 70:
		vote.Direction = model.DirectionShort
		vote.Confidence = clampConfidence(60 + (osc-70)*1.5)
		vote.Rationale = fmt.Sprintf("oscillator %.1f overbought", osc)
	default:
		vote.Rationale = fmt.Sprintf("oscillator %.1f neutral", osc)
	}

	vote.StopLoss, vote.TakeProfit = levels(snap.Price, *ind.VolatilityRange, vote.Direction, 1.2, 2.0)
	return vote, nil
}

// minBreakoutWidth is the minimum normalized band width for a
// moving-average cross to count as a breakout rather than drift.
const minBreakoutWidth = 0.01

func evaluateRangeBreakout(snap *model.MarketSnapshot) (Vote, error) {
	ind := snap.Indicators
	if ind.ShortMA == nil || ind.LongMA == nil || ind.BandWidth == nil || ind.VolatilityRange == nil {
		return Vote{}, model.ErrDataUnavailable
	}

	short, long, width := *ind.ShortMA, *ind.LongMA, *ind.BandWidth
	vote := Vote{Direction: model.DirectionHold, EntryPrice: snap.Price}

	switch {
	case width < minBreakoutWidth:
		vote.Rationale = fmt.Sprintf("band width %.4f too narrow for a breakout", width)
	case short > long:
		vote.Direction = model.DirectionLong
		vote.Confidence = clampConfidence(50 + width*800)
		vote.Rationale = fmt.Sprintf("short average %.2f broke above long %.2f on width %.4f", short, long, width)
	case short < long:
		vote.Direction = model.DirectionShort
		vote.Confidence = clampConfidence(50 + width*800)
		vote.Rationale = fmt.Sprintf("short average %.2f broke below long %.2f on width %.4f", short, long, width)
	default:
		vote.Rationale = "averages flat"
	}

	vote.StopLoss, vote.TakeProfit = levels(snap.Price, *ind.VolatilityRange, vote.Direction, 2.0, 3.0)
	return vote, nil
}
