// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package errs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodes(t *testing.T) {
	require := require.New(t)

	err := Validationf("bad quantity %d", 5)
	require.EqualError(err, "VALIDATION_FAILED: bad quantity 5")
	require.Equal(ValidationFailed, CodeOf(err))
	require.True(HasCode(err, ValidationFailed))
	require.False(HasCode(err, NotFound))

	require.Equal(SlippageExceeded, CodeOf(Slippagef("moved")))
	require.Equal(InvalidDecimal, CodeOf(Decimalf("too precise")))
	require.Equal(NotFound, CodeOf(NotFoundf("missing")))
	require.Equal(Unauthorized, CodeOf(Unauthorizedf("who")))
	require.Equal(PreConditionFailed, CodeOf(PreConditionf("not yet")))
}

func TestCodeOfWrapped(t *testing.T) {
	require := require.New(t)

	wrapped := fmt.Errorf("settle trade: %w", NotFoundf("sale missing"))
	require.Equal(NotFound, CodeOf(wrapped))
	require.True(HasCode(wrapped, NotFound))

	// Untyped errors classify as conflicts.
	require.Equal(Conflict, CodeOf(fmt.Errorf("disk on fire")))
	require.False(HasCode(nil, Conflict))
}
