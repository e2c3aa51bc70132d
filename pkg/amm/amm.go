// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package amm is the liquidity-pool collaborator contract consumed during
// sale finalization. The pool's own pricing and tick math stay external;
// the engine only hands off seeding parameters.
package amm

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/luxfi/lpx/pkg/errs"
	"github.com/luxfi/lpx/pkg/token"
)

// DefaultFeeTier is the fee tier, in hundredths of a bip, requested for
// pools seeded at finalization.
const DefaultFeeTier uint32 = 3000

// PoolParams seed a new pool at a fixed sqrt price.
type PoolParams struct {
	TokenA           token.Key
	TokenB           token.Key
	FeeTier          uint32
	InitialSqrtPrice decimal.Decimal
}

// PoolState is a snapshot of a pool's holdings.
type PoolState struct {
	PoolID    string
	Address   string
	Params    PoolParams
	AmountA   decimal.Decimal
	AmountB   decimal.Decimal
	SqrtPrice decimal.Decimal
}

// PoolService is the external AMM.
type PoolService interface {
	// CreatePool creates a pool and returns its ID and deposit address.
	CreatePool(ctx context.Context, params PoolParams) (*PoolState, error)
	// AddLiquidity records token amounts deposited to the pool address.
	AddLiquidity(ctx context.Context, poolID string, key token.Key, amount decimal.Decimal) error
	// GetPoolState fetches a pool by the token pair, or NotFound.
	GetPoolState(ctx context.Context, tokenA, tokenB token.Key) (*PoolState, error)
}

// MemoryPools is an in-memory PoolService for the dev daemon and tests.
type MemoryPools struct {
	mu    sync.RWMutex
	pools map[string]*PoolState // pair key -> state
	byID  map[string]*PoolState
}

// NewMemoryPools creates an empty pool registry.
func NewMemoryPools() *MemoryPools {
	return &MemoryPools{
		pools: make(map[string]*PoolState),
		byID:  make(map[string]*PoolState),
	}
}

func pairKey(a, b token.Key) string {
	return a.String() + "/" + b.String()
}

// CreatePool registers a pool for the pair at the given sqrt price.
func (m *MemoryPools) CreatePool(ctx context.Context, params PoolParams) (*PoolState, error) {
	if !params.InitialSqrtPrice.IsPositive() {
		return nil, errs.Validationf("initial sqrt price must be positive, got %s",
			params.InitialSqrtPrice.String())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey(params.TokenA, params.TokenB)
	if _, exists := m.pools[key]; exists {
		return nil, errs.Validationf("pool for pair %s already exists", key)
	}

	id := uuid.NewString()
	state := &PoolState{
		PoolID:    id,
		Address:   "pool-" + id,
		Params:    params,
		AmountA:   decimal.Zero,
		AmountB:   decimal.Zero,
		SqrtPrice: params.InitialSqrtPrice,
	}
	m.pools[key] = state
	m.byID[id] = state
	return state, nil
}

// AddLiquidity credits a deposit into the pool.
func (m *MemoryPools) AddLiquidity(ctx context.Context, poolID string, key token.Key, amount decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.byID[poolID]
	if !ok {
		return errs.NotFoundf("pool %s does not exist", poolID)
	}
	switch key.String() {
	case state.Params.TokenA.String():
		state.AmountA = state.AmountA.Add(amount)
	case state.Params.TokenB.String():
		state.AmountB = state.AmountB.Add(amount)
	default:
		return errs.Validationf("token %s does not belong to pool %s", key.String(), poolID)
	}
	return nil
}

// GetPoolState fetches the pool for a token pair.
func (m *MemoryPools) GetPoolState(ctx context.Context, tokenA, tokenB token.Key) (*PoolState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if state, ok := m.pools[pairKey(tokenA, tokenB)]; ok {
		return state, nil
	}
	return nil, errs.NotFoundf("pool for pair %s does not exist", pairKey(tokenA, tokenB))
}
