package indicators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"autotrader/market"
)

func flatBars(n int, price float64) market.Series {
	start := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	s := make(market.Series, 0, n)
	for i := 0; i < n; i++ {
		s = append(s, market.Bar{
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: 100,
		})
	}
	return s
}

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestSMA(t *testing.T) {
	t.Parallel()

	got, err := SMA([]float64{1, 2, 3, 4, 5}, 3)
	assert.NoError(t, err)
	assert.InDelta(t, 4.0, got, 1e-9)

	_, err = SMA([]float64{1, 2}, 3)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = SMA([]float64{1, 2, 3}, 0)
	assert.Error(t, err)
}

func TestEMAConstantSeries(t *testing.T) {
	t.Parallel()

	vals := make([]float64, 50)
	for i := range vals {
		vals[i] = 42.0
	}
	got, err := EMA(vals, 20)
	assert.NoError(t, err)
	assert.InDelta(t, 42.0, got, 1e-9)
}

func TestEMATracksTrend(t *testing.T) {
	t.Parallel()

	up := ramp(60, 100, 1)
	fast, err := EMA(up, 9)
	assert.NoError(t, err)
	slow, err := EMA(up, 21)
	assert.NoError(t, err)
	assert.Greater(t, fast, slow)
}

func TestRSIExtremes(t *testing.T) {
	t.Parallel()

	up := ramp(20, 100, 1)
	got, err := RSI(up, 14)
	assert.NoError(t, err)
	assert.InDelta(t, 100.0, got, 1e-9)

	down := ramp(20, 100, -1)
	got, err = RSI(down, 14)
	assert.NoError(t, err)
	assert.InDelta(t, 0.0, got, 1e-9)

	flat := make([]float64, 20)
	for i := range flat {
		flat[i] = 100
	}
	got, err = RSI(flat, 14)
	assert.NoError(t, err)
	assert.InDelta(t, 50.0, got, 1e-9)

	_, err = RSI(ramp(10, 1, 1), 14)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestRSIIdempotent(t *testing.T) {
	t.Parallel()

	vals := []float64{10, 11, 10.5, 11.2, 10.9, 11.5, 12, 11.8, 12.2, 12.1,
		12.5, 12.3, 12.8, 13, 12.9, 13.2}
	a, err := RSI(vals, 14)
	assert.NoError(t, err)
	b, err := RSI(vals, 14)
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMACDSign(t *testing.T) {
	t.Parallel()

	up := ramp(60, 100, 0.5)
	got, err := MACD(up, 12, 26)
	assert.NoError(t, err)
	assert.Greater(t, got, 0.0)

	_, err = MACD(up, 26, 12)
	assert.Error(t, err)
}

func TestBollingerFlatSeries(t *testing.T) {
	t.Parallel()

	vals := make([]float64, 30)
	for i := range vals {
		vals[i] = 50
	}
	b, err := Bollinger(vals, 20, 2)
	assert.NoError(t, err)
	assert.InDelta(t, 50.0, b.Upper, 1e-9)
	assert.InDelta(t, 50.0, b.Middle, 1e-9)
	assert.InDelta(t, 50.0, b.Lower, 1e-9)
}

func TestRollingHighLowExcludesCurrentBar(t *testing.T) {
	t.Parallel()

	highs := []float64{1, 5, 3, 2, 9}
	hi, err := RollingHigh(highs, 4)
	assert.NoError(t, err)
	assert.InDelta(t, 5.0, hi, 1e-9)

	lows := []float64{4, 2, 3, 5, 0.5}
	lo, err := RollingLow(lows, 4)
	assert.NoError(t, err)
	assert.InDelta(t, 2.0, lo, 1e-9)
}

func TestATRFlatSeriesIsZero(t *testing.T) {
	t.Parallel()

	got, err := ATR(flatBars(50, 100), 14)
	assert.NoError(t, err)
	assert.InDelta(t, 0.0, got, 1e-12)
}

func TestATRInsufficientData(t *testing.T) {
	t.Parallel()

	_, err := ATR(flatBars(10, 100), 14)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestATRRange(t *testing.T) {
	t.Parallel()

	bars := flatBars(20, 100)
	for i := range bars {
		bars[i].High = 101
		bars[i].Low = 99
	}
	got, err := ATR(bars, 14)
	assert.NoError(t, err)
	assert.InDelta(t, 2.0, got, 1e-9)
}

func TestRealizedVolFlatSeriesIsZero(t *testing.T) {
	t.Parallel()

	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	got, err := RealizedVol(closes, 20)
	assert.NoError(t, err)
	assert.InDelta(t, 0.0, got, 1e-12)
}

func TestVWAP(t *testing.T) {
	t.Parallel()

	bars := flatBars(10, 100)
	got, err := VWAP(bars)
	assert.NoError(t, err)
	assert.InDelta(t, 100.0, got, 1e-9)

	_, err = VWAP(nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
