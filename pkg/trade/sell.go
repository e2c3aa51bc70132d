// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trade

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/luxfi/lpx/pkg/errs"
	"github.com/luxfi/lpx/pkg/fee"
	"github.com/luxfi/lpx/pkg/identity"
	"github.com/luxfi/lpx/pkg/sale"
	"github.com/luxfi/lpx/pkg/token"
)

// SellExactTokens sells a caller-specified token quantity back into the
// curve. The reverse-bonding-curve exit fee is charged before the proceeds
// leave the vault.
func (s *Service) SellExactTokens(ctx context.Context, req SellExactTokensRequest) (*Result, error) {
	started := s.now()

	caller, err := identity.Caller(ctx)
	if err != nil {
		return nil, s.rejected(err)
	}
	sl, err := s.loadTradeable(ctx, req.VaultAddress)
	if err != nil {
		return nil, s.rejected(err)
	}
	sellingDec, nativeDec, err := s.tokenDecimals(sl)
	if err != nil {
		return nil, s.rejected(err)
	}
	if err := token.CheckPositive(req.TokenQuantity, "tokenQuantity"); err != nil {
		return nil, s.rejected(err)
	}
	if err := token.CheckPrecision(req.TokenQuantity, sl.SellingToken, sellingDec); err != nil {
		return nil, s.rejected(err)
	}

	calc := sl.Calculator()
	sold := sl.TokensSold()

	tokensIn := req.TokenQuantity
	if tokensIn.GreaterThan(sold) {
		return nil, s.rejected(errs.Validationf(
			"cannot sell %s tokens: only %s have been sold from the curve",
			tokensIn.String(), sold.String()))
	}

	proceedsRaw, err := calc.NativePayoutForExactTokens(sold, tokensIn)
	if err != nil {
		return nil, s.rejected(errs.Validationf("%s", err.Error()))
	}
	proceeds := token.RoundPayout(proceedsRaw, nativeDec)
	if proceeds.GreaterThan(sl.NativeTokenQuantity) {
		return nil, s.rejected(errs.Validationf(
			"payout %s exceeds vault native balance %s",
			proceeds.String(), sl.NativeTokenQuantity.String()))
	}

	// Slippage guard: the caller's bound is the least native they accept.
	if req.ExpectedNativeToken != nil && proceeds.LessThan(*req.ExpectedNativeToken) {
		return nil, s.rejected(errs.Slippagef("native payout %s below expected minimum %s",
			proceeds.String(), req.ExpectedNativeToken.String()))
	}

	result, err := s.settleSell(ctx, TypeSellExactTokens, sl, caller, tokensIn, proceeds, req.MaxReverseBondingCurveFee, nativeDec)
	if err != nil {
		return nil, s.rejected(err)
	}
	if err := s.record(result, proceeds, result.TotalFees, started); err != nil {
		return nil, err
	}
	return result, nil
}

// SellWithNative withdraws a caller-specified native amount, solving the
// curve for the tokens that must be surrendered. The token side rounds up
// so the vault never pays out more than the curve implies.
func (s *Service) SellWithNative(ctx context.Context, req SellWithNativeRequest) (*Result, error) {
	started := s.now()

	caller, err := identity.Caller(ctx)
	if err != nil {
		return nil, s.rejected(err)
	}
	sl, err := s.loadTradeable(ctx, req.VaultAddress)
	if err != nil {
		return nil, s.rejected(err)
	}
	sellingDec, nativeDec, err := s.tokenDecimals(sl)
	if err != nil {
		return nil, s.rejected(err)
	}
	if err := token.CheckPositive(req.NativeTokenQuantity, "nativeTokenQuantity"); err != nil {
		return nil, s.rejected(err)
	}
	if err := token.CheckPrecision(req.NativeTokenQuantity, sl.NativeToken, nativeDec); err != nil {
		return nil, s.rejected(err)
	}

	calc := sl.Calculator()
	sold := sl.TokensSold()

	nativeOut := req.NativeTokenQuantity
	if nativeOut.GreaterThan(sl.NativeTokenQuantity) {
		return nil, s.rejected(errs.Validationf(
			"cannot withdraw %s native: vault holds %s",
			nativeOut.String(), sl.NativeTokenQuantity.String()))
	}

	tokensRaw, err := calc.TokensForExactNativePayout(sold, nativeOut)
	if err != nil {
		return nil, s.rejected(errs.Validationf("%s", err.Error()))
	}
	tokensIn := token.RoundOwed(tokensRaw, sellingDec)

	// An over-sized withdrawal is capped at the full sold quantity and the
	// native side re-derived from the capped amount.
	if tokensIn.GreaterThan(sold) {
		tokensIn = sold
		proceedsRaw, err := calc.NativePayoutForExactTokens(sold, tokensIn)
		if err != nil {
			return nil, s.rejected(err)
		}
		nativeOut = token.RoundPayout(proceedsRaw, nativeDec)
	}
	if !tokensIn.IsPositive() {
		return nil, s.rejected(errs.Validationf(
			"native amount %s requires less than one decimal unit of %s",
			req.NativeTokenQuantity.String(), sl.SellingToken.String()))
	}

	// Slippage guard: the caller's bound is the most tokens they surrender.
	if req.ExpectedToken != nil && tokensIn.GreaterThan(*req.ExpectedToken) {
		return nil, s.rejected(errs.Slippagef("token cost %s exceeds expected maximum %s",
			tokensIn.String(), req.ExpectedToken.String()))
	}

	result, err := s.settleSell(ctx, TypeSellWithNative, sl, caller, tokensIn, nativeOut, req.MaxReverseBondingCurveFee, nativeDec)
	if err != nil {
		return nil, s.rejected(err)
	}
	if err := s.record(result, nativeOut, result.TotalFees, started); err != nil {
		return nil, err
	}
	return result, nil
}

// settleSell charges the exit fee and platform fee, then executes the
// two-legged transfer and mutates the sale. The exit fee must land before
// the proceeds are paid out; it is never funded from those proceeds.
func (s *Service) settleSell(ctx context.Context, t Type, sl *sale.Sale, caller string, tokensIn, proceeds decimal.Decimal, maxExitFee *decimal.Decimal, nativeDec int32) (*Result, error) {
	exitFee, exitPortion := s.exitFee(sl, proceeds, nativeDec)
	if maxExitFee != nil && exitFee.GreaterThan(*maxExitFee) {
		return nil, errs.Slippagef("reverse bonding curve fee %s exceeds accepted maximum %s",
			exitFee.String(), maxExitFee.String())
	}

	cfg, err := s.fees.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	txFee := fee.PlatformFee(cfg, proceeds, nativeDec)

	// Fees come out of the seller's own native balance, never out of the
	// proceeds of this sale. Check the whole charge up front.
	totalFees := exitFee.Add(txFee)
	if totalFees.IsPositive() {
		balance, err := s.ledger.BalanceOf(ctx, caller, sl.NativeToken)
		if err != nil {
			return nil, err
		}
		if balance.LessThan(totalFees) {
			return nil, errs.Validationf(
				"insufficient balance: %s holds %s %s, fees require %s",
				caller, balance.String(), sl.NativeToken.String(), totalFees.String())
		}
	}

	if exitFee.IsPositive() {
		if cfg != nil {
			if err := s.ledger.Transfer(ctx, caller, cfg.FeeAddress, sl.NativeToken, exitFee); err != nil {
				return nil, err
			}
		} else {
			// No platform fee address configured: the exit fee still must
			// not stay with the seller, so it is burned.
			if err := s.ledger.Burn(ctx, caller, sl.NativeToken, exitFee); err != nil {
				return nil, err
			}
		}
		if _, err := s.fees.RecordReceipt(ctx, caller, sl.VaultAddress, exitFee, exitPortion, s.now()); err != nil {
			return nil, err
		}
	}
	if txFee.IsPositive() {
		if err := s.ledger.Transfer(ctx, caller, cfg.FeeAddress, sl.NativeToken, txFee); err != nil {
			return nil, err
		}
	}

	if err := s.ledger.Transfer(ctx, caller, sl.VaultAddress, sl.SellingToken, tokensIn); err != nil {
		return nil, err
	}
	if err := s.ledger.Transfer(ctx, sl.VaultAddress, caller, sl.NativeToken, proceeds); err != nil {
		return nil, err
	}

	if err := sl.SellTokens(tokensIn, proceeds); err != nil {
		return nil, err
	}
	if err := s.store.PutObject(SaleKey(sl.VaultAddress), sl); err != nil {
		return nil, err
	}

	s.log.Infof("sell settled: vault=%s user=%s tokens=%s native=%s fees=%s",
		sl.VaultAddress, caller, tokensIn.String(), proceeds.String(), totalFees.String())
	return newResult(t, sl, caller, tokensIn, proceeds, totalFees, false, s.now()), nil
}

// exitFee computes the reverse-bonding-curve fee for a sale at its current
// circulating-supply proportion.
func (s *Service) exitFee(sl *sale.Sale, proceeds decimal.Decimal, nativeDec int32) (decimal.Decimal, decimal.Decimal) {
	if !sl.ReverseBondingCurve.Enabled() {
		return decimal.Zero, decimal.Zero
	}
	portion := fee.ReverseBondingCurvePortion(
		sl.ReverseBondingCurve.MinFeePortion,
		sl.ReverseBondingCurve.MaxFeePortion,
		sl.CirculatingProportion(),
	)
	return fee.ReverseBondingCurveFee(proceeds, portion, nativeDec), portion
}
