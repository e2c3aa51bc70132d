// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package curve implements the exponential bonding-curve math for token
// sales. Price per token grows as e^(k*s/D) where s is cumulative tokens
// sold; all arithmetic runs on shopspring decimals with explicit precision
// so repeated trades cannot accumulate floating-point drift.
package curve

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Curve constants share the common denominator D = 1e18. BasePrice and
// ExponentFactor are stored pre-scaled by D; Euler is a plain decimal.
var (
	// DefaultBasePrice is the spot price at zero supply, scaled by 1e18.
	DefaultBasePrice = decimal.RequireFromString("16506671506650")

	// DefaultExponentFactor is the curve steepness k, scaled by 1e18.
	DefaultExponentFactor = decimal.RequireFromString("1166069000000")

	// Euler is e at fixed precision, matching the precision used when the
	// curve economics were calibrated.
	Euler = decimal.RequireFromString("2.7182818284590452353602874713526624977572")

	// MarketCap is the native-token total at which a sale force-finalizes.
	// It equals the full-curve integral at BaseMaxSupply within one native
	// decimal unit.
	MarketCap = decimal.RequireFromString("1640985.8441726")

	denominator = decimal.New(1, 18)
)

// BaseMaxSupply is the token supply of a sale with multiplier 1.
const BaseMaxSupply = 10_000_000

const (
	expPrecision  = 40
	lnPrecision   = 40
	divPrecision  = 50
	sqrtPrecision = 18
)

// Calculator evaluates one sale's curve. Constants are taken from the sale
// record so supply-multiplier scaling is already applied.
type Calculator struct {
	BasePrice      decimal.Decimal
	ExponentFactor decimal.Decimal
	Euler          decimal.Decimal
	MaxSupply      decimal.Decimal
}

// New builds a Calculator from a sale's stored curve constants.
func New(basePrice, exponentFactor, euler, maxSupply decimal.Decimal) Calculator {
	return Calculator{
		BasePrice:      basePrice,
		ExponentFactor: exponentFactor,
		Euler:          euler,
		MaxSupply:      maxSupply,
	}
}

// exponential returns e^(k*s/D) for a sold baseline s.
func (c Calculator) exponential(sold decimal.Decimal) (decimal.Decimal, error) {
	exponent := c.ExponentFactor.Mul(sold).Div(denominator)
	v, err := c.Euler.PowWithPrecision(exponent, expPrecision)
	if err != nil {
		return decimal.Zero, fmt.Errorf("curve exponential at supply %s: %w", sold.String(), err)
	}
	return v, nil
}

// NativeForExactTokens returns the native-token cost of buying delta tokens
// starting from the sold baseline: (b/k) * (e^(k(s+d)/D) - e^(ks/D)).
// The result is unrounded; callers quantize per the token's decimal limit.
func (c Calculator) NativeForExactTokens(sold, delta decimal.Decimal) (decimal.Decimal, error) {
	if delta.IsZero() {
		return decimal.Zero, nil
	}
	upper, err := c.exponential(sold.Add(delta))
	if err != nil {
		return decimal.Zero, err
	}
	lower, err := c.exponential(sold)
	if err != nil {
		return decimal.Zero, err
	}
	prefactor := c.BasePrice.DivRound(c.ExponentFactor, divPrecision)
	return prefactor.Mul(upper.Sub(lower)), nil
}

// TokensForExactNative solves the curve integral for the token quantity a
// native amount buys from the sold baseline:
// d = (D/k) * ln(n*k/b + e^(ks/D)) - s.
func (c Calculator) TokensForExactNative(sold, nativeIn decimal.Decimal) (decimal.Decimal, error) {
	if nativeIn.IsZero() {
		return decimal.Zero, nil
	}
	base, err := c.exponential(sold)
	if err != nil {
		return decimal.Zero, err
	}
	arg := nativeIn.Mul(c.ExponentFactor).DivRound(c.BasePrice, divPrecision).Add(base)
	ln, err := arg.Ln(lnPrecision)
	if err != nil {
		return decimal.Zero, fmt.Errorf("curve log at supply %s: %w", sold.String(), err)
	}
	return ln.Mul(denominator).DivRound(c.ExponentFactor, divPrecision).Sub(sold), nil
}

// NativePayoutForExactTokens returns the native proceeds of selling delta
// tokens back into the curve. Selling moves the baseline down to s-d, so the
// payout equals the buy cost evaluated at that lower baseline.
func (c Calculator) NativePayoutForExactTokens(sold, delta decimal.Decimal) (decimal.Decimal, error) {
	if delta.GreaterThan(sold) {
		return decimal.Zero, fmt.Errorf("cannot sell %s tokens with only %s sold", delta.String(), sold.String())
	}
	return c.NativeForExactTokens(sold.Sub(delta), delta)
}

// TokensForExactNativePayout solves for the tokens that must be sold to
// withdraw nativeOut from the curve: d = s - (D/k) * ln(e^(ks/D) - n*k/b).
func (c Calculator) TokensForExactNativePayout(sold, nativeOut decimal.Decimal) (decimal.Decimal, error) {
	if nativeOut.IsZero() {
		return decimal.Zero, nil
	}
	base, err := c.exponential(sold)
	if err != nil {
		return decimal.Zero, err
	}
	arg := base.Sub(nativeOut.Mul(c.ExponentFactor).DivRound(c.BasePrice, divPrecision))
	if !arg.IsPositive() {
		return decimal.Zero, fmt.Errorf("native payout %s exceeds curve reserve at supply %s",
			nativeOut.String(), sold.String())
	}
	ln, err := arg.Ln(lnPrecision)
	if err != nil {
		return decimal.Zero, fmt.Errorf("curve log at supply %s: %w", sold.String(), err)
	}
	return sold.Sub(ln.Mul(denominator).DivRound(c.ExponentFactor, divPrecision)), nil
}

// SpotPrice returns the instantaneous price per token at the sold baseline:
// (b/D) * e^(ks/D).
func (c Calculator) SpotPrice(sold decimal.Decimal) (decimal.Decimal, error) {
	e, err := c.exponential(sold)
	if err != nil {
		return decimal.Zero, err
	}
	return c.BasePrice.DivRound(denominator, divPrecision).Mul(e), nil
}

// FinalPrice is the spot price at full supply, used to seed external
// liquidity when a sale finalizes.
func (c Calculator) FinalPrice() (decimal.Decimal, error) {
	return c.SpotPrice(c.MaxSupply)
}

// Sqrt returns the square root of a non-negative decimal at sqrtPrecision
// decimal places, rounding down. AMM pools are seeded with sqrt prices.
func Sqrt(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("square root of negative value %s", d.String())
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}
	f, _ := new(big.Float).SetPrec(256).SetString(d.String())
	root := new(big.Float).SetPrec(256).Sqrt(f)
	out, err := decimal.NewFromString(root.Text('f', sqrtPrecision+2))
	if err != nil {
		return decimal.Zero, err
	}
	return out.RoundDown(sqrtPrecision), nil
}

// FeePortion computes the reverse-bonding-curve exit fee portion:
// min + circulating*(max-min), where circulating is the circulating-supply
// proportion in [0,1].
func FeePortion(minPortion, maxPortion, circulating decimal.Decimal) decimal.Decimal {
	return minPortion.Add(circulating.Mul(maxPortion.Sub(minPortion)))
}
