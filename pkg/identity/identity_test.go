// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/lpx/pkg/errs"
)

func TestCaller(t *testing.T) {
	require := require.New(t)

	_, err := Caller(context.Background())
	require.True(errs.HasCode(err, errs.Unauthorized))

	ctx := WithCaller(context.Background(), "alice")
	user, err := Caller(ctx)
	require.NoError(err)
	require.Equal("alice", user)

	_, err = Caller(WithCaller(context.Background(), ""))
	require.True(errs.HasCode(err, errs.Unauthorized))
}
