// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trade

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/luxfi/lpx/pkg/fee"
	"github.com/luxfi/lpx/pkg/token"
)

// Quotes are read-only curve calculations. They never mutate sale state or
// move balances. When preMint is set the sold baseline is forced to zero,
// simulating an initial allocation before any trading, as used for creator
// pre-buys at sale creation.

// QuoteBuyExactTokens prices a buy of an exact token quantity.
func (s *Service) QuoteBuyExactTokens(ctx context.Context, vaultAddress string, tokens decimal.Decimal, preMint bool) (*CalculationResult, error) {
	sl, err := s.FetchSale(ctx, vaultAddress)
	if err != nil {
		return nil, err
	}
	sellingDec, nativeDec, err := s.tokenDecimals(sl)
	if err != nil {
		return nil, err
	}
	if err := token.CheckPositive(tokens, "tokenQuantity"); err != nil {
		return nil, err
	}
	if err := token.CheckPrecision(tokens, sl.SellingToken, sellingDec); err != nil {
		return nil, err
	}

	sold := sl.TokensSold()
	if preMint {
		sold = decimal.Zero
	}
	tokens = decimal.Min(tokens, sl.MaxSupply.Sub(sold))

	costRaw, err := sl.Calculator().NativeForExactTokens(sold, tokens)
	if err != nil {
		return nil, err
	}
	cost := token.RoundOwed(costRaw, nativeDec)

	cfg, err := s.fees.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return &CalculationResult{
		OriginalQuantity:   tokens,
		CalculatedQuantity: cost,
		ExtraFees: ExtraFees{
			ReverseBondingCurve: decimal.Zero,
			TransactionFees:     fee.PlatformFee(cfg, cost, nativeDec),
		},
	}, nil
}

// QuoteBuyWithNative prices the token output of an exact native spend.
func (s *Service) QuoteBuyWithNative(ctx context.Context, vaultAddress string, native decimal.Decimal, preMint bool) (*CalculationResult, error) {
	sl, err := s.FetchSale(ctx, vaultAddress)
	if err != nil {
		return nil, err
	}
	sellingDec, nativeDec, err := s.tokenDecimals(sl)
	if err != nil {
		return nil, err
	}
	if err := token.CheckPositive(native, "nativeTokenQuantity"); err != nil {
		return nil, err
	}
	if err := token.CheckPrecision(native, sl.NativeToken, nativeDec); err != nil {
		return nil, err
	}

	sold := sl.TokensSold()
	if preMint {
		sold = decimal.Zero
	}

	tokensRaw, err := sl.Calculator().TokensForExactNative(sold, native)
	if err != nil {
		return nil, err
	}
	tokens := token.RoundPayout(tokensRaw, sellingDec)
	tokens = decimal.Min(tokens, sl.MaxSupply.Sub(sold))

	cfg, err := s.fees.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return &CalculationResult{
		OriginalQuantity:   native,
		CalculatedQuantity: tokens,
		ExtraFees: ExtraFees{
			ReverseBondingCurve: decimal.Zero,
			TransactionFees:     fee.PlatformFee(cfg, native, nativeDec),
		},
	}, nil
}

// QuoteSellExactTokens prices the native payout of selling an exact token
// quantity, including the reverse-bonding-curve exit fee.
func (s *Service) QuoteSellExactTokens(ctx context.Context, vaultAddress string, tokens decimal.Decimal) (*CalculationResult, error) {
	sl, err := s.FetchSale(ctx, vaultAddress)
	if err != nil {
		return nil, err
	}
	sellingDec, nativeDec, err := s.tokenDecimals(sl)
	if err != nil {
		return nil, err
	}
	if err := token.CheckPositive(tokens, "tokenQuantity"); err != nil {
		return nil, err
	}
	if err := token.CheckPrecision(tokens, sl.SellingToken, sellingDec); err != nil {
		return nil, err
	}

	proceedsRaw, err := sl.Calculator().NativePayoutForExactTokens(sl.TokensSold(), tokens)
	if err != nil {
		return nil, err
	}
	proceeds := token.RoundPayout(proceedsRaw, nativeDec)
	exitFee, _ := s.exitFee(sl, proceeds, nativeDec)

	cfg, err := s.fees.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return &CalculationResult{
		OriginalQuantity:   tokens,
		CalculatedQuantity: proceeds,
		ExtraFees: ExtraFees{
			ReverseBondingCurve: exitFee,
			TransactionFees:     fee.PlatformFee(cfg, proceeds, nativeDec),
		},
	}, nil
}

// QuoteSellWithNative prices the tokens required to withdraw an exact native
// amount.
func (s *Service) QuoteSellWithNative(ctx context.Context, vaultAddress string, native decimal.Decimal) (*CalculationResult, error) {
	sl, err := s.FetchSale(ctx, vaultAddress)
	if err != nil {
		return nil, err
	}
	sellingDec, nativeDec, err := s.tokenDecimals(sl)
	if err != nil {
		return nil, err
	}
	if err := token.CheckPositive(native, "nativeTokenQuantity"); err != nil {
		return nil, err
	}
	if err := token.CheckPrecision(native, sl.NativeToken, nativeDec); err != nil {
		return nil, err
	}

	tokensRaw, err := sl.Calculator().TokensForExactNativePayout(sl.TokensSold(), native)
	if err != nil {
		return nil, err
	}
	tokensIn := token.RoundOwed(tokensRaw, sellingDec)
	exitFee, _ := s.exitFee(sl, native, nativeDec)

	cfg, err := s.fees.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return &CalculationResult{
		OriginalQuantity:   native,
		CalculatedQuantity: tokensIn,
		ExtraFees: ExtraFees{
			ReverseBondingCurve: exitFee,
			TransactionFees:     fee.PlatformFee(cfg, native, nativeDec),
		},
	}, nil
}
