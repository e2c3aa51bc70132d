// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fee implements the platform transaction fee and the progressive
// reverse-bonding-curve exit fee, plus the singleton fee configuration.
package fee

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/luxfi/lpx/pkg/curve"
	"github.com/luxfi/lpx/pkg/errs"
	"github.com/luxfi/lpx/pkg/identity"
	"github.com/luxfi/lpx/pkg/storage"
	"github.com/luxfi/lpx/pkg/token"
)

// Config is the singleton platform fee configuration, stored under a
// well-known key. Absence means the platform fee is disabled.
type Config struct {
	FeeAddress  string          `json:"feeAddress"`
	FeeAmount   decimal.Decimal `json:"feeAmount"` // rate in [0, 1]
	Authorities []string        `json:"authorities"`
}

var one = decimal.New(1, 0)

// Validate enforces the fee rate bounds and a usable address.
func (c Config) Validate() error {
	if c.FeeAddress == "" {
		return errs.Validationf("feeAddress is required")
	}
	if c.FeeAmount.IsNegative() || c.FeeAmount.GreaterThan(one) {
		return errs.Validationf("feeAmount %s outside [0, 1]", c.FeeAmount.String())
	}
	if len(c.Authorities) == 0 {
		return errs.Validationf("at least one authority is required")
	}
	return nil
}

// IsAuthority reports whether user may mutate the configuration.
func (c Config) IsAuthority(user string) bool {
	for _, a := range c.Authorities {
		if a == user {
			return true
		}
	}
	return false
}

// PlatformFee computes tradedNative * feeAmount rounded up to the native
// token's decimals. A nil config yields zero.
func PlatformFee(cfg *Config, tradedNative decimal.Decimal, nativeDecimals int32) decimal.Decimal {
	if cfg == nil || !cfg.FeeAmount.IsPositive() {
		return decimal.Zero
	}
	return token.RoundOwed(tradedNative.Mul(cfg.FeeAmount), nativeDecimals)
}

// ReverseBondingCurvePortion computes the exit-fee portion for the given
// bounds at a circulating-supply proportion.
func ReverseBondingCurvePortion(minPortion, maxPortion, circulating decimal.Decimal) decimal.Decimal {
	if !maxPortion.IsPositive() {
		return decimal.Zero
	}
	return curve.FeePortion(minPortion, maxPortion, circulating)
}

// ReverseBondingCurveFee applies a portion to native proceeds, rounding up.
func ReverseBondingCurveFee(proceeds, portion decimal.Decimal, nativeDecimals int32) decimal.Decimal {
	if !portion.IsPositive() {
		return decimal.Zero
	}
	return token.RoundOwed(proceeds.Mul(portion), nativeDecimals)
}

// Receipt is the audit record written whenever a reverse-bonding-curve fee
// is charged. Receipts are date-partitioned per user.
type Receipt struct {
	ID           string          `json:"id"`
	User         string          `json:"user"`
	VaultAddress string          `json:"vaultAddress"`
	Amount       decimal.Decimal `json:"amount"`
	FeePortion   decimal.Decimal `json:"feePortion"`
	CreatedAt    time.Time       `json:"createdAt"`
}

const (
	configEntity  = "platform-fee-config"
	receiptEntity = "fee-receipt"
)

// ConfigKey is the well-known storage key of the singleton configuration.
func ConfigKey() []byte {
	return storage.Key(configEntity)
}

// ReceiptKey partitions receipts by day, then user, then receipt ID.
func ReceiptKey(r Receipt) []byte {
	return storage.Key(receiptEntity, r.CreatedAt.UTC().Format("2006-01-02"), r.User, r.ID)
}

// Service reads and mutates the fee configuration and writes fee receipts.
type Service struct {
	store *storage.Store
}

// NewService creates a fee service on the shared store.
func NewService(store *storage.Store) *Service {
	return &Service{store: store}
}

// Fetch loads the configuration. Absence is not an error: a nil Config with
// nil error means the platform fee is disabled.
func (s *Service) Fetch(ctx context.Context) (*Config, error) {
	var cfg Config
	err := s.store.GetObject(ConfigKey(), &cfg)
	if errs.HasCode(err, errs.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FetchRequired loads the configuration or fails with NotFound.
func (s *Service) FetchRequired(ctx context.Context) (*Config, error) {
	cfg, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, errs.NotFoundf("platform fee configuration does not exist")
	}
	return cfg, nil
}

// Set creates or replaces the configuration. Once a configuration exists,
// only its authorities may replace it.
func (s *Service) Set(ctx context.Context, next Config) error {
	if err := next.Validate(); err != nil {
		return err
	}
	current, err := s.Fetch(ctx)
	if err != nil {
		return err
	}
	if current != nil {
		caller, err := identity.Caller(ctx)
		if err != nil {
			return err
		}
		if !current.IsAuthority(caller) {
			return errs.Unauthorizedf("user %s is not a fee configuration authority", caller)
		}
	}
	return s.store.PutObject(ConfigKey(), next)
}

// UpdateAuthorities replaces the authority set in one batch mutation.
func (s *Service) UpdateAuthorities(ctx context.Context, authorities []string) (*Config, error) {
	cfg, err := s.FetchRequired(ctx)
	if err != nil {
		return nil, err
	}
	caller, err := identity.Caller(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.IsAuthority(caller) {
		return nil, errs.Unauthorizedf("user %s is not a fee configuration authority", caller)
	}
	if len(authorities) == 0 {
		return nil, errs.Validationf("authority set cannot be emptied")
	}
	cfg.Authorities = authorities
	if err := s.store.PutObject(ConfigKey(), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RecordReceipt writes the audit record for a charged exit fee.
func (s *Service) RecordReceipt(ctx context.Context, user, vault string, amount, portion decimal.Decimal, now time.Time) (*Receipt, error) {
	r := Receipt{
		ID:           uuid.NewString(),
		User:         user,
		VaultAddress: vault,
		Amount:       amount,
		FeePortion:   portion,
		CreatedAt:    now,
	}
	if err := s.store.PutObject(ReceiptKey(r), r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ReceiptsOn lists a user's receipts for one UTC day.
func (s *Service) ReceiptsOn(ctx context.Context, day time.Time, user string) ([]Receipt, error) {
	prefix := storage.Key(receiptEntity, day.UTC().Format("2006-01-02"), user)
	var out []Receipt
	err := s.store.IteratePrefix(prefix, func(_, value []byte) error {
		var r Receipt
		if err := json.Unmarshal(value, &r); err != nil {
			return err
		}
		out = append(out, r)
		return nil
	})
	return out, err
}
