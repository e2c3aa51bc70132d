// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package amm

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/lpx/pkg/errs"
	"github.com/luxfi/lpx/pkg/token"
)

var (
	meme = token.Key{Collection: "Token", Category: "Unit", Type: "MEME", AdditionalKey: "none"}
	gala = token.Key{Collection: "GALA", Category: "Unit", Type: "none", AdditionalKey: "none"}
)

func TestCreatePool(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	pools := NewMemoryPools()

	params := PoolParams{
		TokenA:           meme,
		TokenB:           gala,
		FeeTier:          DefaultFeeTier,
		InitialSqrtPrice: decimal.RequireFromString("1.38330012253306653"),
	}
	state, err := pools.CreatePool(ctx, params)
	require.NoError(err)
	require.NotEmpty(state.PoolID)
	require.Equal("pool-"+state.PoolID, state.Address)
	require.True(state.SqrtPrice.Equal(params.InitialSqrtPrice))

	// One pool per pair.
	_, err = pools.CreatePool(ctx, params)
	require.True(errs.HasCode(err, errs.ValidationFailed))

	params.InitialSqrtPrice = decimal.Zero
	params.TokenA = gala
	_, err = pools.CreatePool(ctx, params)
	require.True(errs.HasCode(err, errs.ValidationFailed))
}

func TestAddLiquidityAndGetState(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	pools := NewMemoryPools()

	state, err := pools.CreatePool(ctx, PoolParams{
		TokenA:           meme,
		TokenB:           gala,
		FeeTier:          DefaultFeeTier,
		InitialSqrtPrice: decimal.New(1, 0),
	})
	require.NoError(err)

	require.NoError(pools.AddLiquidity(ctx, state.PoolID, meme, decimal.NewFromInt(600_000)))
	require.NoError(pools.AddLiquidity(ctx, state.PoolID, gala, decimal.NewFromInt(1_500_000)))

	got, err := pools.GetPoolState(ctx, meme, gala)
	require.NoError(err)
	require.True(got.AmountA.Equal(decimal.NewFromInt(600_000)))
	require.True(got.AmountB.Equal(decimal.NewFromInt(1_500_000)))

	err = pools.AddLiquidity(ctx, state.PoolID, token.Key{Collection: "OTHER"}, decimal.New(1, 0))
	require.True(errs.HasCode(err, errs.ValidationFailed))
	err = pools.AddLiquidity(ctx, "nope", meme, decimal.New(1, 0))
	require.True(errs.HasCode(err, errs.NotFound))

	_, err = pools.GetPoolState(ctx, gala, meme)
	require.True(errs.HasCode(err, errs.NotFound))
}
