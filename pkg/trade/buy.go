// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trade

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/luxfi/lpx/pkg/curve"
	"github.com/luxfi/lpx/pkg/errs"
	"github.com/luxfi/lpx/pkg/fee"
	"github.com/luxfi/lpx/pkg/identity"
	"github.com/luxfi/lpx/pkg/sale"
	"github.com/luxfi/lpx/pkg/token"
)

// BuyExactTokens buys a caller-specified token quantity. Over-sized orders
// are capped to the remaining inventory; orders that would push the vault
// past the market cap are capped to exactly reach it and finalize the sale.
func (s *Service) BuyExactTokens(ctx context.Context, req BuyExactTokensRequest) (*Result, error) {
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

	// Supply cap: never let tokens sold exceed max supply.
	tokensOut := decimal.Min(req.TokenQuantity, sl.SellingTokenQuantity)

	costRaw, err := calc.NativeForExactTokens(sold, tokensOut)
	if err != nil {
		return nil, s.rejected(err)
	}
	cost := token.RoundOwed(costRaw, nativeDec)

	tokensOut, cost, err = s.applyMarketCap(sl, calc, tokensOut, cost, sellingDec, nativeDec)
	if err != nil {
		return nil, s.rejected(err)
	}
	if !tokensOut.IsPositive() {
		return nil, s.rejected(errs.Validationf("sale %s has no inventory left to buy", sl.VaultAddress))
	}

	// Slippage guard: the caller's bound is the most native they will pay.
	if req.ExpectedNativeToken != nil && cost.GreaterThan(*req.ExpectedNativeToken) {
		return nil, s.rejected(errs.Slippagef("native cost %s exceeds expected maximum %s",
			cost.String(), req.ExpectedNativeToken.String()))
	}

	result, err := s.settleBuy(ctx, TypeBuyExactTokens, sl, caller, tokensOut, cost, nativeDec)
	if err != nil {
		return nil, s.rejected(err)
	}
	if err := s.record(result, cost, result.TotalFees, started); err != nil {
		return nil, err
	}
	return result, nil
}

// BuyWithNative spends a caller-specified native amount. The token output is
// solved from the curve, and after any cap the native side is re-derived
// from the capped token quantity so the receipt stays internally consistent.
func (s *Service) BuyWithNative(ctx context.Context, req BuyWithNativeRequest) (*Result, error) {
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

	// Market cap: auto-cap the native amount to exactly reach the cap. The
	// remainder rounds down so the vault never holds more than the cap.
	nativeIn := req.NativeTokenQuantity
	capRemaining := curve.MarketCap.Sub(sl.NativeTokenQuantity)
	if nativeIn.GreaterThanOrEqual(capRemaining) {
		nativeIn = token.RoundPayout(capRemaining, nativeDec)
	}

	tokensRaw, err := calc.TokensForExactNative(sold, nativeIn)
	if err != nil {
		return nil, s.rejected(err)
	}
	tokensOut := token.RoundPayout(tokensRaw, sellingDec)

	// Supply cap: cap at remaining inventory and re-derive the cost for the
	// capped amount rather than trusting the pre-cap estimate.
	if tokensOut.GreaterThan(sl.SellingTokenQuantity) {
		tokensOut = sl.SellingTokenQuantity
		costRaw, err := calc.NativeForExactTokens(sold, tokensOut)
		if err != nil {
			return nil, s.rejected(err)
		}
		nativeIn = token.RoundOwed(costRaw, nativeDec)
	}
	if !tokensOut.IsPositive() {
		return nil, s.rejected(errs.Validationf(
			"native amount %s buys less than one decimal unit of %s",
			req.NativeTokenQuantity.String(), sl.SellingToken.String()))
	}

	// Slippage guard: the caller's bound is the least tokens they accept.
	if req.ExpectedToken != nil && tokensOut.LessThan(*req.ExpectedToken) {
		return nil, s.rejected(errs.Slippagef("token output %s below expected minimum %s",
			tokensOut.String(), req.ExpectedToken.String()))
	}

	result, err := s.settleBuy(ctx, TypeBuyWithNative, sl, caller, tokensOut, nativeIn, nativeDec)
	if err != nil {
		return nil, s.rejected(err)
	}
	if err := s.record(result, nativeIn, result.TotalFees, started); err != nil {
		return nil, err
	}
	return result, nil
}

// applyMarketCap caps a buy's native cost at the market-cap remainder and
// recomputes the token output for the capped amount. Checked independently
// of the supply cap. The remainder rounds down so the vault never holds
// more than the cap.
func (s *Service) applyMarketCap(sl *sale.Sale, calc curve.Calculator, tokensOut, cost decimal.Decimal, sellingDec, nativeDec int32) (decimal.Decimal, decimal.Decimal, error) {
	capRemaining := curve.MarketCap.Sub(sl.NativeTokenQuantity)
	if cost.LessThan(capRemaining) {
		return tokensOut, cost, nil
	}

	cost = token.RoundPayout(capRemaining, nativeDec)
	if !cost.IsPositive() {
		return decimal.Zero, decimal.Zero, errs.Validationf(
			"sale %s has reached its market cap", sl.VaultAddress)
	}
	tokensRaw, err := calc.TokensForExactNative(sl.TokensSold(), cost)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	tokensOut = decimal.Min(token.RoundPayout(tokensRaw, sellingDec), sl.SellingTokenQuantity)
	return tokensOut, cost, nil
}

// settleBuy charges the platform fee, executes the two-legged transfer,
// mutates the sale and runs finalization when the buy exhausts inventory or
// reaches the market cap.
func (s *Service) settleBuy(ctx context.Context, t Type, sl *sale.Sale, caller string, tokensOut, cost decimal.Decimal, nativeDec int32) (*Result, error) {
	cfg, err := s.fees.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	txFee := fee.PlatformFee(cfg, cost, nativeDec)

	// The buyer must cover principal plus fee before any transfer starts;
	// failing early avoids a partial settlement.
	balance, err := s.ledger.BalanceOf(ctx, caller, sl.NativeToken)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(cost.Add(txFee)) {
		return nil, errs.Validationf(
			"insufficient balance: %s holds %s %s, trade requires %s plus %s fee",
			caller, balance.String(), sl.NativeToken.String(), cost.String(), txFee.String())
	}

	if txFee.IsPositive() {
		if err := s.ledger.Transfer(ctx, caller, cfg.FeeAddress, sl.NativeToken, txFee); err != nil {
			return nil, err
		}
	}
	if err := s.ledger.Transfer(ctx, caller, sl.VaultAddress, sl.NativeToken, cost); err != nil {
		return nil, err
	}
	if err := s.ledger.Transfer(ctx, sl.VaultAddress, caller, sl.SellingToken, tokensOut); err != nil {
		return nil, err
	}

	if err := sl.BuyTokens(tokensOut, cost); err != nil {
		return nil, err
	}

	// The cap is compared at the native token's precision: a token coarser
	// than the cap constant finalizes at the rounded-down cap, which is the
	// most a capped buy can ever pay in.
	finalized := false
	capReached := token.RoundPayout(curve.MarketCap, nativeDec)
	if sl.SellingTokenQuantity.IsZero() || sl.NativeTokenQuantity.GreaterThanOrEqual(capReached) {
		if err := s.finalizeSale(ctx, sl); err != nil {
			return nil, err
		}
		finalized = true
	}

	if err := s.store.PutObject(SaleKey(sl.VaultAddress), sl); err != nil {
		return nil, err
	}

	s.log.Infof("buy settled: vault=%s user=%s tokens=%s native=%s finalized=%t",
		sl.VaultAddress, caller, tokensOut.String(), cost.String(), finalized)
	return newResult(t, sl, caller, tokensOut, cost, txFee, finalized, s.now()), nil
}
