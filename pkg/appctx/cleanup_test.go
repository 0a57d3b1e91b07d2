// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package appctx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanupRunsInReverseOrder(t *testing.T) {
	var order []string
	ctx := WithCleanup(context.Background(), func() error {
		order = append(order, "log file")
		return errors.New("close log file")
	})
	ctx = WithCleanup(ctx, func() error {
		order = append(order, "temp dir")
		return nil
	})

	err := Cleanup(ctx)
	require.EqualError(t, err, "close log file")
	require.Equal(t, []string{"temp dir", "log file"}, order)
}

func TestCleanupWithoutFunctions(t *testing.T) {
	require.NoError(t, Cleanup(context.Background()))
	require.NoError(t, Cleanup(WithCleanup(context.Background(), nil)))
}
