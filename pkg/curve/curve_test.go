// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package curve

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func defaultCalc() Calculator {
	return New(
		DefaultBasePrice,
		DefaultExponentFactor,
		Euler,
		decimal.NewFromInt(BaseMaxSupply),
	)
}

func TestNativeForExactTokens(t *testing.T) {
	require := require.New(t)
	calc := defaultCalc()

	// 500 tokens at zero supply is the reference vector for the default
	// constants: rounded up at 8 decimals the cost is 0.00825575.
	cost, err := calc.NativeForExactTokens(decimal.Zero, decimal.NewFromInt(500))
	require.NoError(err)
	require.True(cost.RoundUp(8).Equal(decimal.RequireFromString("0.00825575")),
		"got %s", cost.RoundUp(8))

	// Zero delta costs nothing.
	cost, err = calc.NativeForExactTokens(decimal.NewFromInt(1000), decimal.Zero)
	require.NoError(err)
	require.True(cost.IsZero())
}

func TestCostMonotonicity(t *testing.T) {
	require := require.New(t)
	calc := defaultCalc()
	delta := decimal.NewFromInt(500)

	// Cost grows with the sold baseline: later buyers pay more for the
	// same quantity.
	var prev decimal.Decimal
	for _, sold := range []int64{0, 1000, 100_000, 1_000_000, 9_000_000} {
		cost, err := calc.NativeForExactTokens(decimal.NewFromInt(sold), delta)
		require.NoError(err)
		require.True(cost.GreaterThan(prev), "cost at %d should exceed %s, got %s", sold, prev, cost)
		prev = cost
	}

	// And with quantity at a fixed baseline.
	small, err := calc.NativeForExactTokens(decimal.Zero, decimal.NewFromInt(100))
	require.NoError(err)
	large, err := calc.NativeForExactTokens(decimal.Zero, decimal.NewFromInt(200))
	require.NoError(err)
	require.True(large.GreaterThan(small))
}

func TestTokensForExactNativeInverts(t *testing.T) {
	require := require.New(t)
	calc := defaultCalc()
	eps := decimal.RequireFromString("0.00000001")

	for _, sold := range []int64{0, 12_345, 2_500_000} {
		baseline := decimal.NewFromInt(sold)
		delta := decimal.NewFromInt(500)

		cost, err := calc.NativeForExactTokens(baseline, delta)
		require.NoError(err)

		tokens, err := calc.TokensForExactNative(baseline, cost)
		require.NoError(err)
		require.True(tokens.Sub(delta).Abs().LessThan(eps),
			"round trip at %d drifted: %s", sold, tokens)
	}
}

func TestNativePayoutForExactTokens(t *testing.T) {
	require := require.New(t)
	calc := defaultCalc()

	// Selling d tokens from a baseline of d unwinds the original buy: the
	// payout equals the cost of the first d tokens.
	buy, err := calc.NativeForExactTokens(decimal.Zero, decimal.NewFromInt(500))
	require.NoError(err)
	payout, err := calc.NativePayoutForExactTokens(decimal.NewFromInt(500), decimal.NewFromInt(500))
	require.NoError(err)
	require.True(payout.Equal(buy))

	// Cannot sell more than was sold.
	_, err = calc.NativePayoutForExactTokens(decimal.NewFromInt(100), decimal.NewFromInt(101))
	require.Error(err)
}

func TestTokensForExactNativePayoutInverts(t *testing.T) {
	require := require.New(t)
	calc := defaultCalc()
	eps := decimal.RequireFromString("0.00000001")

	baseline := decimal.NewFromInt(10_000)
	delta := decimal.NewFromInt(500)

	payout, err := calc.NativePayoutForExactTokens(baseline, delta)
	require.NoError(err)

	tokens, err := calc.TokensForExactNativePayout(baseline, payout)
	require.NoError(err)
	require.True(tokens.Sub(delta).Abs().LessThan(eps), "got %s", tokens)

	// A payout larger than the curve reserve is rejected.
	reserve, err := calc.NativeForExactTokens(decimal.Zero, baseline)
	require.NoError(err)
	_, err = calc.TokensForExactNativePayout(baseline, reserve.Mul(decimal.NewFromInt(2)))
	require.Error(err)
}

func TestFullCurveReachesMarketCap(t *testing.T) {
	require := require.New(t)
	calc := defaultCalc()

	// Buying out the entire base supply costs exactly the market cap once
	// rounded up at native precision.
	total, err := calc.NativeForExactTokens(decimal.Zero, decimal.NewFromInt(BaseMaxSupply))
	require.NoError(err)
	require.True(total.RoundUp(8).Equal(MarketCap), "got %s", total.RoundUp(8))
}

func TestSupplyMultiplierInvariance(t *testing.T) {
	require := require.New(t)
	base := defaultCalc()

	// Scaling supply by m while dividing basePrice and exponentFactor by m
	// leaves the cost of an equivalent supply fraction unchanged.
	m := decimal.NewFromInt(100)
	scaled := New(
		DefaultBasePrice.Div(m),
		DefaultExponentFactor.Div(m),
		Euler,
		decimal.NewFromInt(BaseMaxSupply).Mul(m),
	)

	baseCost, err := base.NativeForExactTokens(decimal.Zero, decimal.NewFromInt(500))
	require.NoError(err)
	scaledCost, err := scaled.NativeForExactTokens(decimal.Zero, decimal.NewFromInt(500).Mul(m))
	require.NoError(err)
	require.True(baseCost.RoundUp(8).Equal(scaledCost.RoundUp(8)),
		"base %s vs scaled %s", baseCost, scaledCost)
}

func TestSpotAndFinalPrice(t *testing.T) {
	require := require.New(t)
	calc := defaultCalc()

	// Spot price at zero supply is basePrice/D.
	spot, err := calc.SpotPrice(decimal.Zero)
	require.NoError(err)
	require.True(spot.Equal(DefaultBasePrice.DivRound(decimal.New(1, 18), 50)),
		"got %s", spot)

	final, err := calc.FinalPrice()
	require.NoError(err)
	require.True(final.Truncate(8).Equal(decimal.RequireFromString("1.91351922")),
		"got %s", final)
	require.True(final.GreaterThan(spot))
}

func TestSqrt(t *testing.T) {
	require := require.New(t)

	root, err := Sqrt(decimal.NewFromInt(4))
	require.NoError(err)
	require.True(root.Equal(decimal.NewFromInt(2)))

	root, err = Sqrt(decimal.NewFromInt(2))
	require.NoError(err)
	require.True(root.Equal(decimal.RequireFromString("1.414213562373095048")), "got %s", root)

	root, err = Sqrt(decimal.Zero)
	require.NoError(err)
	require.True(root.IsZero())

	_, err = Sqrt(decimal.NewFromInt(-1))
	require.Error(err)
}

func TestFeePortion(t *testing.T) {
	require := require.New(t)

	min := decimal.RequireFromString("0.01")
	max := decimal.RequireFromString("0.05")

	require.True(FeePortion(min, max, decimal.Zero).Equal(min))
	require.True(FeePortion(min, max, decimal.NewFromInt(1)).Equal(max))
	require.True(FeePortion(min, max, decimal.RequireFromString("0.5")).
		Equal(decimal.RequireFromString("0.03")))
}
