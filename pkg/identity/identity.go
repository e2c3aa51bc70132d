// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package identity carries the calling user through request contexts.
// Signature verification happens upstream; the engine only consumes the
// resolved identity.
package identity

import (
	"context"

	"github.com/luxfi/lpx/pkg/errs"
)

type contextKey struct{}

// WithCaller attaches the authenticated caller to the context.
func WithCaller(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// Caller returns the authenticated caller, or Unauthorized when absent.
func Caller(ctx context.Context) (string, error) {
	user, _ := ctx.Value(contextKey{}).(string)
	if user == "" {
		return "", errs.Unauthorizedf("no calling user on request")
	}
	return user, nil
}
