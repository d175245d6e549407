package marketdata

import (
	"math"

	"tradingcore/src/model"
)

// SMA returns the simple moving average of the last period values.
// Returns nil when there is not enough history.
func SMA(values []float64, period int) *float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}

	avg := sum / float64(period)
	return &avg
}

// EMA returns the exponential moving average of the last period
// values, seeded with an SMA over the first period.
func EMA(values []float64, period int) *float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	ema := seed / float64(period)

	k := 2.0 / float64(period+1)
	for _, v := range values[period:] {
		ema = v*k + ema*(1-k)
	}

	return &ema
}

// RSI returns the Wilder relative strength index over period.
func RSI(closes []float64, period int) *float64 {
	if period <= 0 || len(closes) < period+1 {
		return nil
	}

	gains, losses := 0.0, 0.0
	window := closes[len(closes)-period-1:]
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	if losses == 0 {
		v := 100.0
		return &v
	}

	rs := (gains / float64(period)) / (losses / float64(period))
	v := 100 - 100/(1+rs)
	return &v
}

// ATR returns the average true range over period.
func ATR(candles []model.Candle, period int) *float64 {
	if period <= 0 || len(candles) < period+1 {
		return nil
	}

	window := candles[len(candles)-period-1:]
	sum := 0.0
	for i := 1; i < len(window); i++ {
		prevClose := window[i-1].Close
		tr := window[i].High - window[i].Low
		tr = math.Max(tr, math.Abs(window[i].High-prevClose))
		tr = math.Max(tr, math.Abs(window[i].Low-prevClose))
		sum += tr
	}

	v := sum / float64(period)
	return &v
}

// MACDHistogram returns the divergence histogram: the fast/slow EMA
// spread minus its own signal EMA.
func MACDHistogram(closes []float64, fast, slow, signalPeriod int) *float64 {
	if len(closes) < slow+signalPeriod {
		return nil
	}

	line := make([]float64, 0, len(closes)-slow+1)
	for i := slow; i <= len(closes); i++ {
		f := EMA(closes[:i], fast)
		s := EMA(closes[:i], slow)
		if f == nil || s == nil {
			return nil
		}
		line = append(line, *f-*s)
	}

	sig := EMA(line, signalPeriod)
	if sig == nil {
		return nil
	}

	v := line[len(line)-1] - *sig
	return &v
}

// BandWidth returns the normalized Bollinger band width
// (upper-lower)/middle over period with the given deviation multiple.
func BandWidth(closes []float64, period int, mult float64) *float64 {
	mid := SMA(closes, period)
	if mid == nil || *mid == 0 {
		return nil
	}

	variance := 0.0
	for _, v := range closes[len(closes)-period:] {
		d := v - *mid
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(period))

	v := (2 * mult * sd) / *mid
	return &v
}
