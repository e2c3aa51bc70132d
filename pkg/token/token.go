// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"strings"
	"sync"

	"github.com/luxfi/lpx/pkg/errs"
)

// Key identifies a token class as a collection/category/type/instance tuple.
type Key struct {
	Collection    string `json:"collection"`
	Category      string `json:"category"`
	Type          string `json:"type"`
	AdditionalKey string `json:"additionalKey"`
}

// String joins the tuple with "|" for use in composite keys and ledger accounts.
func (k Key) String() string {
	return strings.Join([]string{k.Collection, k.Category, k.Type, k.AdditionalKey}, "|")
}

// IsZero reports whether the key is entirely empty.
func (k Key) IsZero() bool {
	return k.Collection == "" && k.Category == "" && k.Type == "" && k.AdditionalKey == ""
}

// Validate rejects keys with empty identifying fields.
func (k Key) Validate() error {
	if k.Collection == "" || k.Category == "" || k.Type == "" {
		return errs.Validationf("token key requires collection, category and type: %q", k.String())
	}
	return nil
}

// DecimalService resolves the declared decimal-place limit of a token.
// Quantities moving through a transfer must respect this limit.
type DecimalService interface {
	GetTokenDecimals(key Key) (int32, error)
}

// DefaultDecimals is the decimal limit assumed for unregistered tokens.
const DefaultDecimals int32 = 8

// Registry is an in-memory DecimalService.
type Registry struct {
	mu       sync.RWMutex
	decimals map[string]int32
}

// NewRegistry creates a registry that answers DefaultDecimals for unknown tokens.
func NewRegistry() *Registry {
	return &Registry{decimals: make(map[string]int32)}
}

// Register pins the decimal limit for a token.
func (r *Registry) Register(key Key, decimals int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decimals[key.String()] = decimals
}

// GetTokenDecimals returns the registered limit, or DefaultDecimals.
func (r *Registry) GetTokenDecimals(key Key) (int32, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.decimals[key.String()]; ok {
		return d, nil
	}
	return DefaultDecimals, nil
}
