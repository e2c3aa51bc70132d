// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"github.com/luxfi/lpx/pkg/errs"
	"github.com/shopspring/decimal"
)

// Rounding policy: every quantity that moves through a transfer is quantized
// to the token's decimal limit first. Amounts owed by the trader round up,
// amounts paid out to the trader round down, so the vault is never drained
// below its curve-implied reserve.

// RoundOwed quantizes an amount the trader must pay, rounding up.
func RoundOwed(q decimal.Decimal, decimals int32) decimal.Decimal {
	return q.RoundUp(decimals)
}

// RoundPayout quantizes an amount paid out to the trader, rounding down.
func RoundPayout(q decimal.Decimal, decimals int32) decimal.Decimal {
	return q.RoundDown(decimals)
}

// CheckPrecision rejects user-supplied quantities carrying more fractional
// digits than the token allows. Computed quantities are rounded instead,
// never rejected.
func CheckPrecision(q decimal.Decimal, key Key, decimals int32) error {
	if !q.Equal(q.Truncate(decimals)) {
		return errs.Decimalf("quantity %s exceeds %d decimal places allowed for token %s",
			q.String(), decimals, key.String())
	}
	return nil
}

// CheckPositive rejects zero or negative user-supplied quantities.
func CheckPositive(q decimal.Decimal, field string) error {
	if !q.IsPositive() {
		return errs.Validationf("%s must be positive, got %s", field, q.String())
	}
	return nil
}
