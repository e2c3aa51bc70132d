// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trade

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/luxfi/lpx/pkg/sale"
	"github.com/luxfi/lpx/pkg/token"
)

// Type names the four trade entry points.
type Type string

const (
	TypeBuyExactTokens  Type = "BUY_EXACT_TOKENS"
	TypeBuyWithNative   Type = "BUY_WITH_NATIVE"
	TypeSellExactTokens Type = "SELL_EXACT_TOKENS"
	TypeSellWithNative  Type = "SELL_WITH_NATIVE"
)

// BuyExactTokensRequest buys a caller-specified selling-token quantity.
// ExpectedNativeToken, when set, caps the native cost the caller accepts.
type BuyExactTokensRequest struct {
	VaultAddress        string           `json:"vaultAddress"`
	TokenQuantity       decimal.Decimal  `json:"tokenQuantity"`
	ExpectedNativeToken *decimal.Decimal `json:"expectedNativeToken,omitempty"`
}

// BuyWithNativeRequest spends a caller-specified native amount.
// ExpectedToken, when set, is the minimum token output the caller accepts.
type BuyWithNativeRequest struct {
	VaultAddress        string           `json:"vaultAddress"`
	NativeTokenQuantity decimal.Decimal  `json:"nativeTokenQuantity"`
	ExpectedToken       *decimal.Decimal `json:"expectedToken,omitempty"`
}

// SellExactTokensRequest sells a caller-specified selling-token quantity.
// ExpectedNativeToken, when set, is the minimum payout the caller accepts;
// MaxReverseBondingCurveFee caps the exit fee.
type SellExactTokensRequest struct {
	VaultAddress              string           `json:"vaultAddress"`
	TokenQuantity             decimal.Decimal  `json:"tokenQuantity"`
	ExpectedNativeToken       *decimal.Decimal `json:"expectedNativeToken,omitempty"`
	MaxReverseBondingCurveFee *decimal.Decimal `json:"maxAcceptableReverseBondingCurveFee,omitempty"`
}

// SellWithNativeRequest withdraws a caller-specified native amount.
// ExpectedToken, when set, caps the tokens surrendered.
type SellWithNativeRequest struct {
	VaultAddress              string           `json:"vaultAddress"`
	NativeTokenQuantity       decimal.Decimal  `json:"nativeTokenQuantity"`
	ExpectedToken             *decimal.Decimal `json:"expectedToken,omitempty"`
	MaxReverseBondingCurveFee *decimal.Decimal `json:"maxAcceptableReverseBondingCurveFee,omitempty"`
}

// ExtraFees itemizes the fees attached to a calculation.
type ExtraFees struct {
	ReverseBondingCurve decimal.Decimal `json:"reverseBondingCurve"`
	TransactionFees     decimal.Decimal `json:"transactionFees"`
}

// CalculationResult is the canonical output of a curve calculation: the
// quantity the caller asked about and the counter-quantity the curve yields,
// decimal-typed end to end.
type CalculationResult struct {
	OriginalQuantity   decimal.Decimal `json:"originalQuantity"`
	CalculatedQuantity decimal.Decimal `json:"calculatedQuantity"`
	ExtraFees          ExtraFees       `json:"extraFees"`
}

// Result is the full trade receipt returned to the caller and stored as the
// audit record.
type Result struct {
	TradeID         string          `json:"tradeId"`
	VaultAddress    string          `json:"vaultAddress"`
	TradeType       Type            `json:"tradeType"`
	User            string          `json:"user"`
	TokenQuantity   decimal.Decimal `json:"tokenQuantity"`
	NativeQuantity  decimal.Decimal `json:"nativeQuantity"`
	TotalFees       decimal.Decimal `json:"totalFees"`
	TotalTokensSold decimal.Decimal `json:"totalTokensSold"`
	IsFinalized     bool            `json:"isFinalized"`
	Timestamp       time.Time       `json:"timestamp"`
}

// CreateSaleRequest launches a new sale.
type CreateSaleRequest struct {
	SellingToken        token.Key                       `json:"sellingToken"`
	NativeToken         token.Key                       `json:"nativeToken"`
	SaleStartTime       *time.Time                      `json:"saleStartTime,omitempty"`
	ReverseBondingCurve *sale.ReverseBondingCurveConfig `json:"reverseBondingCurveConfiguration,omitempty"`
	SupplyMultiplier    *decimal.Decimal                `json:"adjustableSupplyMultiplier,omitempty"`
	// PreBuyNative, when positive, executes a creator buy for this native
	// amount immediately after creation, priced from a zero sold baseline.
	PreBuyNative decimal.Decimal `json:"preBuyNative"`
}
