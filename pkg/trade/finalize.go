// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trade

import (
	"context"

	"github.com/luxfi/lpx/pkg/amm"
	"github.com/luxfi/lpx/pkg/curve"
	"github.com/luxfi/lpx/pkg/errs"
	"github.com/luxfi/lpx/pkg/sale"
	"github.com/luxfi/lpx/pkg/token"
)

// finalizeSale runs the one-time handoff that closes a sale: it computes the
// curve's endpoint price, splits the vault's native balance between owner,
// platform and liquidity, seeds the external pool at the sqrt price, burns
// residual dust and flips the sale to Finished. It runs as a single
// settlement unit with no internal retry; if the pool collaborator fails,
// the triggering trade fails with it.
func (s *Service) finalizeSale(ctx context.Context, sl *sale.Sale) error {
	cfg, err := s.fees.Fetch(ctx)
	if err != nil {
		return err
	}
	if cfg == nil {
		return errs.PreConditionf("cannot finalize sale %s: no platform fee configuration present", sl.VaultAddress)
	}

	nativeDec, err := s.decimals.GetTokenDecimals(sl.NativeToken)
	if err != nil {
		return err
	}

	calc := sl.Calculator()
	finalPrice, err := calc.FinalPrice()
	if err != nil {
		return err
	}
	sqrtPrice, err := curve.Sqrt(finalPrice)
	if err != nil {
		return err
	}

	native := sl.NativeTokenQuantity
	ownerCut := token.RoundPayout(native.Mul(s.alloc.OwnerPortion), nativeDec)
	platformCut := token.RoundPayout(native.Mul(s.alloc.PlatformPortion), nativeDec)
	liquidity := native.Sub(ownerCut).Sub(platformCut)

	if ownerCut.IsPositive() {
		if err := s.ledger.Transfer(ctx, sl.VaultAddress, sl.Owner, sl.NativeToken, ownerCut); err != nil {
			return err
		}
	}
	if platformCut.IsPositive() {
		if err := s.ledger.Transfer(ctx, sl.VaultAddress, cfg.FeeAddress, sl.NativeToken, platformCut); err != nil {
			return err
		}
	}

	// Join the existing pool for the pair when one exists, otherwise create
	// it at the curve's endpoint price.
	pool, err := s.pools.GetPoolState(ctx, sl.SellingToken, sl.NativeToken)
	if errs.HasCode(err, errs.NotFound) {
		pool, err = s.pools.CreatePool(ctx, amm.PoolParams{
			TokenA:           sl.SellingToken,
			TokenB:           sl.NativeToken,
			FeeTier:          amm.DefaultFeeTier,
			InitialSqrtPrice: sqrtPrice,
		})
	}
	if err != nil {
		return err
	}

	if liquidity.IsPositive() {
		if err := s.ledger.Transfer(ctx, sl.VaultAddress, pool.Address, sl.NativeToken, liquidity); err != nil {
			return err
		}
		if err := s.pools.AddLiquidity(ctx, pool.PoolID, sl.NativeToken, liquidity); err != nil {
			return err
		}
	}

	// Sweep vault dust: whatever inventory the final trade left behind is
	// burned rather than left dangling in a finished sale.
	if sl.SellingTokenQuantity.IsPositive() {
		if err := s.ledger.Burn(ctx, sl.VaultAddress, sl.SellingToken, sl.SellingTokenQuantity); err != nil {
			return err
		}
	}

	sl.Finalize()
	if s.metrics != nil {
		s.metrics.SalesFinalized.Inc()
	}
	s.log.Infof("sale finalized: vault=%s finalPrice=%s sqrtPrice=%s liquidity=%s pool=%s",
		sl.VaultAddress, finalPrice.String(), sqrtPrice.String(), liquidity.String(), pool.PoolID)
	return nil
}
