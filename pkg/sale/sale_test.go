// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sale

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/lpx/pkg/curve"
	"github.com/luxfi/lpx/pkg/errs"
	"github.com/luxfi/lpx/pkg/token"
)

var (
	memeKey = token.Key{Collection: "Token", Category: "Unit", Type: "MEME", AdditionalKey: "none"}
	galaKey = token.Key{Collection: "GALA", Category: "Unit", Type: "none", AdditionalKey: "none"}
)

func newTestSale(t *testing.T, opts ...Option) *Sale {
	t.Helper()
	s, err := New("owner1", memeKey, galaKey, time.Now(), opts...)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	require := require.New(t)

	s := newTestSale(t)
	require.Equal(StatusOngoing, s.Status)
	require.Equal("owner1", s.Owner)
	require.Equal(VaultAddressFor(memeKey), s.VaultAddress)
	require.True(s.MaxSupply.Equal(decimal.NewFromInt(curve.BaseMaxSupply)))
	require.True(s.SellingTokenQuantity.Equal(s.MaxSupply))
	require.True(s.NativeTokenQuantity.IsZero())
	require.True(s.BasePrice.Equal(curve.DefaultBasePrice))
	require.True(s.ExponentFactor.Equal(curve.DefaultExponentFactor))
	require.Nil(s.ReverseBondingCurve)
	require.False(s.ReverseBondingCurve.Enabled())
}

func TestNewValidation(t *testing.T) {
	require := require.New(t)
	now := time.Now()

	_, err := New("", memeKey, galaKey, now)
	require.True(errs.HasCode(err, errs.ValidationFailed))

	_, err = New("owner1", token.Key{}, galaKey, now)
	require.True(errs.HasCode(err, errs.ValidationFailed))

	_, err = New("owner1", memeKey, memeKey, now)
	require.True(errs.HasCode(err, errs.ValidationFailed))

	_, err = New("owner1", memeKey, galaKey, now, WithStartTime(now.Add(-time.Hour)))
	require.True(errs.HasCode(err, errs.ValidationFailed))

	_, err = New("owner1", memeKey, galaKey, now, WithSupplyMultiplier(decimal.Zero))
	require.True(errs.HasCode(err, errs.ValidationFailed))
}

func TestVaultAddressDeterministic(t *testing.T) {
	require := require.New(t)

	require.Equal(VaultAddressFor(memeKey), VaultAddressFor(memeKey))
	require.NotEqual(VaultAddressFor(memeKey), VaultAddressFor(galaKey))
	require.Len(VaultAddressFor(memeKey), 40)
}

func TestSupplyMultiplierScaling(t *testing.T) {
	require := require.New(t)

	m := decimal.NewFromInt(100)
	s := newTestSale(t, WithSupplyMultiplier(m))

	require.True(s.MaxSupply.Equal(decimal.NewFromInt(curve.BaseMaxSupply).Mul(m)))
	require.True(s.BasePrice.Equal(curve.DefaultBasePrice.Div(m)))
	require.True(s.ExponentFactor.Equal(curve.DefaultExponentFactor.Div(m)))
	require.True(s.Euler.Equal(curve.Euler))

	// The scaled curve charges the same for an equivalent supply fraction.
	base := newTestSale(t).Calculator()
	scaled := s.Calculator()
	baseCost, err := base.NativeForExactTokens(decimal.Zero, decimal.NewFromInt(500))
	require.NoError(err)
	scaledCost, err := scaled.NativeForExactTokens(decimal.Zero, decimal.NewFromInt(50_000))
	require.NoError(err)
	require.True(baseCost.RoundUp(8).Equal(scaledCost.RoundUp(8)))
}

func TestReverseBondingCurveValidation(t *testing.T) {
	require := require.New(t)

	valid := ReverseBondingCurveConfig{
		MinFeePortion: decimal.RequireFromString("0.01"),
		MaxFeePortion: decimal.RequireFromString("0.2"),
	}
	require.NoError(valid.Validate())
	require.True(valid.Enabled())

	disabled := &ReverseBondingCurveConfig{}
	require.NoError(disabled.Validate())
	require.False(disabled.Enabled())

	for _, cfg := range []ReverseBondingCurveConfig{
		{MinFeePortion: decimal.RequireFromString("-0.01")},
		{MaxFeePortion: decimal.RequireFromString("0.51")},
		{MinFeePortion: decimal.RequireFromString("0.3"), MaxFeePortion: decimal.RequireFromString("0.2")},
	} {
		require.True(errs.HasCode(cfg.Validate(), errs.ValidationFailed), "%+v", cfg)
	}
}

func TestEffectiveStatus(t *testing.T) {
	require := require.New(t)
	now := time.Now()

	s := newTestSale(t, WithStartTime(now.Add(time.Hour)))
	require.Equal(StatusUpcoming, s.Status)
	require.Equal(StatusUpcoming, s.EffectiveStatus(now))
	require.True(errs.HasCode(s.CheckTradeable(now), errs.ValidationFailed))

	// The transition is read-time only.
	later := now.Add(2 * time.Hour)
	require.Equal(StatusOngoing, s.EffectiveStatus(later))
	require.NoError(s.CheckTradeable(later))
	require.Equal(StatusUpcoming, s.Status)

	s.Finalize()
	require.Equal(StatusFinished, s.EffectiveStatus(later))
	require.True(errs.HasCode(s.CheckTradeable(later), errs.ValidationFailed))
}

func TestBuySellTokens(t *testing.T) {
	require := require.New(t)
	s := newTestSale(t)

	tokens := decimal.NewFromInt(500)
	cost := decimal.RequireFromString("0.00825575")
	require.NoError(s.BuyTokens(tokens, cost))
	require.True(s.TokensSold().Equal(tokens))
	require.True(s.NativeTokenQuantity.Equal(cost))

	// Inventory is a hard bound.
	require.Error(s.BuyTokens(s.SellingTokenQuantity.Add(decimal.New(1, 0)), decimal.New(1, 0)))

	require.NoError(s.SellTokens(tokens, cost))
	require.True(s.TokensSold().IsZero())
	require.True(s.NativeTokenQuantity.IsZero())

	// So is the vault's native balance.
	require.Error(s.SellTokens(decimal.New(1, 0), decimal.New(1, 0)))
	require.Error(s.BuyTokens(decimal.NewFromInt(-1), decimal.Zero))
}

func TestCirculatingProportion(t *testing.T) {
	require := require.New(t)
	s := newTestSale(t)

	require.True(s.CirculatingProportion().IsZero())

	require.NoError(s.BuyTokens(decimal.NewFromInt(5_000_000), decimal.NewFromInt(1)))
	require.True(s.CirculatingProportion().Equal(decimal.RequireFromString("0.5")))

	require.NoError(s.BuyTokens(decimal.NewFromInt(5_000_000), decimal.NewFromInt(1)))
	require.True(s.CirculatingProportion().Equal(decimal.New(1, 0)))
}

func TestFinalize(t *testing.T) {
	require := require.New(t)
	s := newTestSale(t)

	require.NoError(s.BuyTokens(decimal.NewFromInt(500), decimal.RequireFromString("0.00825575")))
	s.Finalize()

	require.Equal(StatusFinished, s.Status)
	require.True(s.SellingTokenQuantity.IsZero())
	require.True(s.NativeTokenQuantity.IsZero())
}
