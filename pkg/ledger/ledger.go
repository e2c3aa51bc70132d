// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger defines the balance-transfer collaborator contract the
// settlement engine executes trades against, plus an in-memory engine used
// by the daemon and tests.
package ledger

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/luxfi/lpx/pkg/errs"
	"github.com/luxfi/lpx/pkg/token"
)

// Ledger is the external token-transfer service. Implementations must reject
// quantities carrying more fractional precision than the token allows.
type Ledger interface {
	Transfer(ctx context.Context, from, to string, key token.Key, amount decimal.Decimal) error
	Mint(ctx context.Context, to string, key token.Key, amount decimal.Decimal) error
	Burn(ctx context.Context, from string, key token.Key, amount decimal.Decimal) error
	BalanceOf(ctx context.Context, account string, key token.Key) (decimal.Decimal, error)
}

// Engine is an in-memory Ledger with decimal balances per token and account.
type Engine struct {
	mu       sync.RWMutex
	balances map[string]map[string]decimal.Decimal // token -> account -> balance
	decimals token.DecimalService
}

// NewEngine creates an engine enforcing the given per-token decimal limits.
func NewEngine(decimals token.DecimalService) *Engine {
	return &Engine{
		balances: make(map[string]map[string]decimal.Decimal),
		decimals: decimals,
	}
}

func (e *Engine) checkQuantity(key token.Key, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errs.Validationf("amount must be positive, got %s", amount.String())
	}
	limit, err := e.decimals.GetTokenDecimals(key)
	if err != nil {
		return err
	}
	return token.CheckPrecision(amount, key, limit)
}

// Transfer moves amount between accounts, failing with InsufficientBalance
// semantics when the source cannot cover it.
func (e *Engine) Transfer(ctx context.Context, from, to string, key token.Key, amount decimal.Decimal) error {
	if err := e.checkQuantity(key, amount); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	asset := e.balances[key.String()]
	if asset == nil {
		asset = make(map[string]decimal.Decimal)
		e.balances[key.String()] = asset
	}

	fromBalance, exists := asset[from]
	if !exists || fromBalance.LessThan(amount) {
		return errs.Validationf("insufficient balance: account %s holds %s of %s, needs %s",
			from, fromBalance.String(), key.String(), amount.String())
	}

	asset[from] = fromBalance.Sub(amount)
	asset[to] = asset[to].Add(amount)
	return nil
}

// Mint credits freshly issued tokens to an account.
func (e *Engine) Mint(ctx context.Context, to string, key token.Key, amount decimal.Decimal) error {
	if err := e.checkQuantity(key, amount); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	asset := e.balances[key.String()]
	if asset == nil {
		asset = make(map[string]decimal.Decimal)
		e.balances[key.String()] = asset
	}
	asset[to] = asset[to].Add(amount)
	return nil
}

// Burn destroys tokens held by an account.
func (e *Engine) Burn(ctx context.Context, from string, key token.Key, amount decimal.Decimal) error {
	if err := e.checkQuantity(key, amount); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	asset := e.balances[key.String()]
	balance, exists := asset[from]
	if !exists || balance.LessThan(amount) {
		return errs.Validationf("insufficient balance to burn: account %s holds %s of %s, needs %s",
			from, balance.String(), key.String(), amount.String())
	}
	asset[from] = balance.Sub(amount)
	return nil
}

// BalanceOf returns the current balance for an account and token.
func (e *Engine) BalanceOf(ctx context.Context, account string, key token.Key) (decimal.Decimal, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	asset := e.balances[key.String()]
	if asset == nil {
		return decimal.Zero, nil
	}
	return asset[account], nil
}
