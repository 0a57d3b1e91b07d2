// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "default", config: DefaultConfig()},
		{name: "no retry", config: NoRetry()},
		{name: "negative attempts", config: Config{MaxAttempts: -1}, wantErr: true},
		{name: "negative initial wait", config: Config{MaxAttempts: 3, InitialWait: -time.Second}, wantErr: true},
		{name: "negative max wait", config: Config{MaxAttempts: 3, MaxWait: -time.Second, Multiplier: 2}, wantErr: true},
		{name: "multiplier below one", config: Config{MaxAttempts: 3, Multiplier: 0.5}, wantErr: true},
		{
			name:    "initial wait above max wait",
			config:  Config{MaxAttempts: 3, InitialWait: 10 * time.Second, MaxWait: 5 * time.Second, Multiplier: 2},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfig_wait(t *testing.T) {
	cfg := Config{InitialWait: time.Second, MaxWait: 10 * time.Second, Multiplier: 2}

	require.Equal(t, time.Duration(0), cfg.wait(0))
	require.Equal(t, 1*time.Second, cfg.wait(1))
	require.Equal(t, 2*time.Second, cfg.wait(2))
	require.Equal(t, 4*time.Second, cfg.wait(3))
	require.Equal(t, 10*time.Second, cfg.wait(5))
}

func TestConfig_waitJitterBounds(t *testing.T) {
	cfg := Config{InitialWait: time.Second, MaxWait: 10 * time.Second, Multiplier: 2, Jitter: true}
	for i := 0; i < 50; i++ {
		w := cfg.wait(1)
		require.GreaterOrEqual(t, w, 750*time.Millisecond)
		require.LessOrEqual(t, w, 1250*time.Millisecond)
	}
}

func TestIsRetryable(t *testing.T) {
	require.False(t, IsRetryable(nil))
	require.False(t, IsRetryable(context.Canceled))
	require.False(t, IsRetryable(errors.New("access denied")))
	require.True(t, IsRetryable(errors.New("dial tcp 10.0.0.1:22: connect: connection refused")))
	require.True(t, IsRetryable(errors.New("read: connection reset by peer")))
	require.True(t, IsRetryable(Transient(errors.New("503 slow down"))))
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("i/o timeout")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("bucket does not exist")
	err := Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		calls++
		return permanent
	})

	require.ErrorIs(t, err, permanent)
	require.Equal(t, 1, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		calls++
		return errors.New("connection refused")
	})

	require.Error(t, err)
	require.Contains(t, err.Error(), "max attempts (3) exceeded")
	require.Equal(t, 3, calls)
}

func TestDo_NoRetryTriesOnce(t *testing.T) {
	calls := 0
	err := Do(context.Background(), NoRetry(), func(ctx context.Context) error {
		calls++
		return errors.New("connection refused")
	})

	require.EqualError(t, err, "connection refused")
	require.Equal(t, 1, calls)
}

func TestDo_RespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxAttempts: 5, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1}

	calls := 0
	err := Do(ctx, cfg, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("connection refused")
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestDo_InvalidConfig(t *testing.T) {
	err := Do(context.Background(), Config{MaxAttempts: -1}, func(ctx context.Context) error { return nil })
	require.ErrorContains(t, err, "invalid retry config")
}
