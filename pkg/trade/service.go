// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package trade sequences the four trade entry points of the token-sale
// settlement engine: calculator, rounding, slippage guard, fee charges,
// transfers, state mutation and finalization, in that order. Validation
// always completes before the first persisted write.
package trade

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/luxfi/lpx/pkg/amm"
	"github.com/luxfi/lpx/pkg/errs"
	"github.com/luxfi/lpx/pkg/fee"
	"github.com/luxfi/lpx/pkg/identity"
	"github.com/luxfi/lpx/pkg/ledger"
	"github.com/luxfi/lpx/pkg/log"
	"github.com/luxfi/lpx/pkg/metric"
	"github.com/luxfi/lpx/pkg/sale"
	"github.com/luxfi/lpx/pkg/storage"
	"github.com/luxfi/lpx/pkg/token"
)

const (
	saleEntity  = "sale"
	tradeEntity = "trade"
)

// Allocation splits the vault's native balance at finalization. Liquidity
// receives whatever the owner and platform portions leave behind.
type Allocation struct {
	OwnerPortion    decimal.Decimal
	PlatformPortion decimal.Decimal
}

// DefaultAllocation is 5% owner / 1% platform / 94% liquidity.
func DefaultAllocation() Allocation {
	return Allocation{
		OwnerPortion:    decimal.RequireFromString("0.05"),
		PlatformPortion: decimal.RequireFromString("0.01"),
	}
}

// Service is the trade orchestrator. One request is processed to completion
// before the next touches the same sale; serialization is provided by the
// surrounding ledger's ordering guarantees.
type Service struct {
	store    *storage.Store
	ledger   ledger.Ledger
	pools    amm.PoolService
	decimals token.DecimalService
	fees     *fee.Service
	metrics  *metric.Metrics
	log      log.Logger
	alloc    Allocation
	now      func() time.Time
}

// Config wires the orchestrator's collaborators. Metrics may be nil.
type Config struct {
	Store    *storage.Store
	Ledger   ledger.Ledger
	Pools    amm.PoolService
	Decimals token.DecimalService
	Fees     *fee.Service
	Metrics  *metric.Metrics
	Logger   log.Logger
	Now      func() time.Time
}

// NewService builds the orchestrator.
func NewService(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = log.NoLog
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		store:    cfg.Store,
		ledger:   cfg.Ledger,
		pools:    cfg.Pools,
		decimals: cfg.Decimals,
		fees:     cfg.Fees,
		metrics:  cfg.Metrics,
		log:      cfg.Logger,
		alloc:    DefaultAllocation(),
		now:      cfg.Now,
	}
}

// SaleKey is the composite storage key of a sale record.
func SaleKey(vaultAddress string) []byte {
	return storage.Key(saleEntity, vaultAddress)
}

// ReceiptKey partitions trade receipts by vault, then day, then trade ID.
func ReceiptKey(r *Result) []byte {
	return storage.Key(tradeEntity, r.VaultAddress, r.Timestamp.UTC().Format("2006-01-02"), r.TradeID)
}

// CreateSale validates and persists a new sale, mints the full inventory to
// its vault, and optionally executes the creator pre-buy.
func (s *Service) CreateSale(ctx context.Context, req CreateSaleRequest) (*sale.Sale, error) {
	owner, err := identity.Caller(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var opts []sale.Option
	if req.SaleStartTime != nil {
		opts = append(opts, sale.WithStartTime(*req.SaleStartTime))
	}
	if req.ReverseBondingCurve != nil {
		opts = append(opts, sale.WithReverseBondingCurve(*req.ReverseBondingCurve))
	}
	if req.SupplyMultiplier != nil {
		opts = append(opts, sale.WithSupplyMultiplier(*req.SupplyMultiplier))
	}
	if req.PreBuyNative.IsNegative() {
		return nil, errs.Validationf("preBuyNative cannot be negative")
	}

	sl, err := sale.New(owner, req.SellingToken, req.NativeToken, now, opts...)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.Has(SaleKey(sl.VaultAddress))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.Validationf("sale for token %s already exists", req.SellingToken.String())
	}

	if err := s.ledger.Mint(ctx, sl.VaultAddress, sl.SellingToken, sl.MaxSupply); err != nil {
		return nil, err
	}
	if err := s.store.PutObject(SaleKey(sl.VaultAddress), sl); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SalesCreated.Inc()
	}
	s.log.Infof("sale created: vault=%s selling=%s maxSupply=%s",
		sl.VaultAddress, sl.SellingToken.String(), sl.MaxSupply.String())

	if req.PreBuyNative.IsPositive() {
		if _, err := s.BuyWithNative(ctx, BuyWithNativeRequest{
			VaultAddress:        sl.VaultAddress,
			NativeTokenQuantity: req.PreBuyNative,
		}); err != nil {
			return nil, err
		}
		return s.FetchSale(ctx, sl.VaultAddress)
	}
	return sl, nil
}

// FetchSale loads a sale with its read-time effective status applied.
func (s *Service) FetchSale(ctx context.Context, vaultAddress string) (*sale.Sale, error) {
	var sl sale.Sale
	if err := s.store.GetObject(SaleKey(vaultAddress), &sl); err != nil {
		if errs.HasCode(err, errs.NotFound) {
			return nil, errs.NotFoundf("sale %s does not exist", vaultAddress)
		}
		return nil, err
	}
	sl.Status = sl.EffectiveStatus(s.now())
	return &sl, nil
}

// ListSales returns every sale record.
func (s *Service) ListSales(ctx context.Context) ([]*sale.Sale, error) {
	now := s.now()
	var out []*sale.Sale
	err := s.store.IteratePrefix(storage.Key(saleEntity), func(_, value []byte) error {
		var sl sale.Sale
		if err := json.Unmarshal(value, &sl); err != nil {
			return err
		}
		sl.Status = sl.EffectiveStatus(now)
		out = append(out, &sl)
		return nil
	})
	return out, err
}

// Receipts lists the trade receipts of a sale for one UTC day.
func (s *Service) Receipts(ctx context.Context, vaultAddress string, day time.Time) ([]*Result, error) {
	prefix := storage.Key(tradeEntity, vaultAddress, day.UTC().Format("2006-01-02"))
	var out []*Result
	err := s.store.IteratePrefix(prefix, func(_, value []byte) error {
		var r Result
		if err := json.Unmarshal(value, &r); err != nil {
			return err
		}
		out = append(out, &r)
		return nil
	})
	return out, err
}

// loadTradeable fetches the sale and rejects trades it cannot accept.
func (s *Service) loadTradeable(ctx context.Context, vaultAddress string) (*sale.Sale, error) {
	sl, err := s.FetchSale(ctx, vaultAddress)
	if err != nil {
		return nil, err
	}
	if err := sl.CheckTradeable(s.now()); err != nil {
		return nil, err
	}
	return sl, nil
}

// tokenDecimals resolves decimal limits for both legs of a sale.
func (s *Service) tokenDecimals(sl *sale.Sale) (sellingDec, nativeDec int32, err error) {
	sellingDec, err = s.decimals.GetTokenDecimals(sl.SellingToken)
	if err != nil {
		return 0, 0, err
	}
	nativeDec, err = s.decimals.GetTokenDecimals(sl.NativeToken)
	if err != nil {
		return 0, 0, err
	}
	return sellingDec, nativeDec, nil
}

// record persists the receipt and updates metrics. Called after the sale
// record itself has been written.
func (s *Service) record(r *Result, nativeMoved, fees decimal.Decimal, started time.Time) error {
	if err := s.store.PutObject(ReceiptKey(r), r); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.TradesExecuted.WithLabelValues(string(r.TradeType)).Inc()
		s.metrics.NativeVolume.Add(nativeMoved.InexactFloat64())
		if fees.IsPositive() {
			s.metrics.FeesCollected.Add(fees.InexactFloat64())
		}
		s.metrics.TradeDuration.Observe(time.Since(started).Seconds())
	}
	return nil
}

func (s *Service) rejected(err error) error {
	if s.metrics != nil && err != nil {
		s.metrics.TradesRejected.WithLabelValues(string(errs.CodeOf(err))).Inc()
	}
	return err
}

func newResult(t Type, sl *sale.Sale, user string, tokens, native, fees decimal.Decimal, finalized bool, at time.Time) *Result {
	return &Result{
		TradeID:         uuid.NewString(),
		VaultAddress:    sl.VaultAddress,
		TradeType:       t,
		User:            user,
		TokenQuantity:   tokens,
		NativeQuantity:  native,
		TotalFees:       fees,
		TotalTokensSold: sl.TokensSold(),
		IsFinalized:     finalized,
		Timestamp:       at,
	}
}
