// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package sale holds the authoritative mutable record of a token sale: its
// remaining inventory, curve constants and lifecycle status.
package sale

import (
	"time"

	"github.com/luxfi/lpx/pkg/curve"
	"github.com/luxfi/lpx/pkg/errs"
	"github.com/luxfi/lpx/pkg/ids"
	"github.com/luxfi/lpx/pkg/token"
	"github.com/shopspring/decimal"
)

// Status is the sale lifecycle state. Transitions are linear:
// Upcoming -> Ongoing -> Finished. Upcoming is derived at read time from the
// start time; Finished is persisted and terminal.
type Status string

const (
	StatusUpcoming Status = "UPCOMING"
	StatusOngoing  Status = "ONGOING"
	StatusFinished Status = "FINISHED"
)

// ReverseBondingCurveConfig enables a progressive sell-side exit fee.
// Both portions live in [0, 0.5]; a zero MaxFeePortion disables the fee.
type ReverseBondingCurveConfig struct {
	MinFeePortion decimal.Decimal `json:"minFeePortion"`
	MaxFeePortion decimal.Decimal `json:"maxFeePortion"`
}

var halfPortion = decimal.RequireFromString("0.5")

// Validate enforces the portion bounds.
func (c ReverseBondingCurveConfig) Validate() error {
	if c.MinFeePortion.IsNegative() || c.MinFeePortion.GreaterThan(halfPortion) {
		return errs.Validationf("minFeePortion %s outside [0, 0.5]", c.MinFeePortion.String())
	}
	if c.MaxFeePortion.IsNegative() || c.MaxFeePortion.GreaterThan(halfPortion) {
		return errs.Validationf("maxFeePortion %s outside [0, 0.5]", c.MaxFeePortion.String())
	}
	if c.MinFeePortion.GreaterThan(c.MaxFeePortion) {
		return errs.Validationf("minFeePortion %s exceeds maxFeePortion %s",
			c.MinFeePortion.String(), c.MaxFeePortion.String())
	}
	return nil
}

// Enabled reports whether the exit fee applies at all.
func (c *ReverseBondingCurveConfig) Enabled() bool {
	return c != nil && c.MaxFeePortion.IsPositive()
}

// Sale is one token launch. Quantities are vault custody balances and only
// move through BuyTokens/SellTokens/Finalize.
type Sale struct {
	VaultAddress string    `json:"vaultAddress"`
	Owner        string    `json:"owner"`
	SellingToken token.Key `json:"sellingToken"`
	NativeToken  token.Key `json:"nativeToken"`

	SellingTokenQuantity decimal.Decimal `json:"sellingTokenQuantity"`
	NativeTokenQuantity  decimal.Decimal `json:"nativeTokenQuantity"`

	MaxSupply      decimal.Decimal `json:"maxSupply"`
	BasePrice      decimal.Decimal `json:"basePrice"`
	ExponentFactor decimal.Decimal `json:"exponentFactor"`
	Euler          decimal.Decimal `json:"euler"`

	Status        Status    `json:"saleStatus"`
	SaleStartTime time.Time `json:"saleStartTime,omitzero"`

	ReverseBondingCurve *ReverseBondingCurveConfig `json:"reverseBondingCurveConfiguration,omitempty"`
	SupplyMultiplier    decimal.Decimal            `json:"adjustableSupplyMultiplier"`

	CreatedAt time.Time `json:"createdAt"`
}

// VaultAddressFor derives the deterministic vault address of a sale from its
// selling token key.
func VaultAddressFor(selling token.Key) string {
	return ids.NewFromData([]byte("token-sale\x00" + selling.String())).Short()
}

// Option tweaks sale creation.
type Option func(*Sale)

// WithStartTime schedules the sale; a future start time makes it Upcoming.
func WithStartTime(t time.Time) Option {
	return func(s *Sale) { s.SaleStartTime = t }
}

// WithReverseBondingCurve attaches the exit-fee configuration.
func WithReverseBondingCurve(cfg ReverseBondingCurveConfig) Option {
	return func(s *Sale) { s.ReverseBondingCurve = &cfg }
}

// WithSupplyMultiplier scales total supply while preserving market-cap
// economics: maxSupply is multiplied and the curve constants divided, so the
// native cost of any supply proportion is multiplier-invariant.
func WithSupplyMultiplier(m decimal.Decimal) Option {
	return func(s *Sale) { s.SupplyMultiplier = m }
}

// New creates a sale with full inventory in the vault and default curve
// constants scaled by the supply multiplier.
func New(owner string, selling, native token.Key, now time.Time, opts ...Option) (*Sale, error) {
	if err := selling.Validate(); err != nil {
		return nil, err
	}
	if err := native.Validate(); err != nil {
		return nil, err
	}
	if selling.String() == native.String() {
		return nil, errs.Validationf("selling token and native token must differ")
	}
	if owner == "" {
		return nil, errs.Validationf("sale owner is required")
	}

	s := &Sale{
		VaultAddress:     VaultAddressFor(selling),
		Owner:            owner,
		SellingToken:     selling,
		NativeToken:      native,
		Euler:            curve.Euler,
		Status:           StatusOngoing,
		SupplyMultiplier: decimal.New(1, 0),
		CreatedAt:        now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if !s.SupplyMultiplier.IsPositive() {
		return nil, errs.Validationf("adjustableSupplyMultiplier must be positive, got %s",
			s.SupplyMultiplier.String())
	}
	if s.ReverseBondingCurve != nil {
		if err := s.ReverseBondingCurve.Validate(); err != nil {
			return nil, err
		}
	}
	if !s.SaleStartTime.IsZero() {
		if !s.SaleStartTime.After(now) {
			return nil, errs.Validationf("saleStartTime must be in the future")
		}
		s.Status = StatusUpcoming
	}

	s.MaxSupply = decimal.NewFromInt(curve.BaseMaxSupply).Mul(s.SupplyMultiplier)
	s.BasePrice = curve.DefaultBasePrice.Div(s.SupplyMultiplier)
	s.ExponentFactor = curve.DefaultExponentFactor.Div(s.SupplyMultiplier)
	s.SellingTokenQuantity = s.MaxSupply
	s.NativeTokenQuantity = decimal.Zero
	return s, nil
}

// Calculator builds the curve calculator for this sale's constants.
func (s *Sale) Calculator() curve.Calculator {
	return curve.New(s.BasePrice, s.ExponentFactor, s.Euler, s.MaxSupply)
}

// TokensSold is the cumulative quantity bought from the curve.
func (s *Sale) TokensSold() decimal.Decimal {
	return s.MaxSupply.Sub(s.SellingTokenQuantity)
}

// CirculatingProportion is tokensSold/maxSupply in [0, 1].
func (s *Sale) CirculatingProportion() decimal.Decimal {
	if !s.MaxSupply.IsPositive() {
		return decimal.Zero
	}
	return decimal.New(1, 0).Sub(s.SellingTokenQuantity.DivRound(s.MaxSupply, 20))
}

// EffectiveStatus resolves Upcoming to Ongoing once the start time passes.
// The transition is computed on read, never persisted.
func (s *Sale) EffectiveStatus(now time.Time) Status {
	if s.Status == StatusUpcoming && !now.Before(s.SaleStartTime) {
		return StatusOngoing
	}
	return s.Status
}

// CheckTradeable rejects trades against unstarted or finished sales.
func (s *Sale) CheckTradeable(now time.Time) error {
	switch s.EffectiveStatus(now) {
	case StatusFinished:
		return errs.Validationf("sale %s has finished", s.VaultAddress)
	case StatusUpcoming:
		return errs.Validationf("sale %s has not started yet", s.VaultAddress)
	}
	return nil
}

// BuyTokens moves inventory out of the vault and native payment in.
func (s *Sale) BuyTokens(tokensOut, nativeIn decimal.Decimal) error {
	if tokensOut.IsNegative() || nativeIn.IsNegative() {
		return errs.Validationf("trade quantities must be non-negative")
	}
	if tokensOut.GreaterThan(s.SellingTokenQuantity) {
		return errs.Validationf("buy of %s exceeds remaining inventory %s",
			tokensOut.String(), s.SellingTokenQuantity.String())
	}
	s.SellingTokenQuantity = s.SellingTokenQuantity.Sub(tokensOut)
	s.NativeTokenQuantity = s.NativeTokenQuantity.Add(nativeIn)
	return nil
}

// SellTokens is the inverse of BuyTokens.
func (s *Sale) SellTokens(tokensIn, nativeOut decimal.Decimal) error {
	if tokensIn.IsNegative() || nativeOut.IsNegative() {
		return errs.Validationf("trade quantities must be non-negative")
	}
	if nativeOut.GreaterThan(s.NativeTokenQuantity) {
		return errs.Validationf("payout of %s exceeds vault native balance %s",
			nativeOut.String(), s.NativeTokenQuantity.String())
	}
	s.SellingTokenQuantity = s.SellingTokenQuantity.Add(tokensIn)
	s.NativeTokenQuantity = s.NativeTokenQuantity.Sub(nativeOut)
	return nil
}

// Finalize flips the sale to its terminal state and zeroes custody balances.
// Residual dust is swept by the finalization handoff before this is called.
func (s *Sale) Finalize() {
	s.Status = StatusFinished
	s.SellingTokenQuantity = decimal.Zero
	s.NativeTokenQuantity = decimal.Zero
}
