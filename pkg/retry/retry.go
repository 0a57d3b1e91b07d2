// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package retry implements retry with exponential backoff for network
// operations that may fail transiently.
//
// Usage:
//
//	cfg := retry.Config{
//	    MaxAttempts: 3,
//	    InitialWait: 1 * time.Second,
//	    MaxWait:     30 * time.Second,
//	    Multiplier:  2.0,
//	    Jitter:      true,
//	}
//
//	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
//	    return connector.Store(ctx, key, path)
//	})
//
// Only transient errors (timeouts, refused or reset connections, DNS
// failures, or errors marked with Transient) are retried.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net"
	"strings"
	"time"
)

// Config defines retry behavior.
type Config struct {
	// MaxAttempts is the total number of attempts (0 and 1 both mean a single try).
	MaxAttempts int

	// InitialWait is the wait before the second attempt.
	InitialWait time.Duration

	// MaxWait caps the wait between attempts (0 = uncapped).
	MaxWait time.Duration

	// Multiplier for exponential backoff (must be >= 1.0).
	Multiplier float64

	// Jitter adds up to ±25% randomness to each wait.
	Jitter bool
}

// DefaultConfig returns 3 attempts with 1s doubling backoff, capped at 30s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		InitialWait: 1 * time.Second,
		MaxWait:     30 * time.Second,
		Multiplier:  2.0,
		Jitter:      true,
	}
}

// NoRetry returns a config that tries exactly once.
func NoRetry() Config {
	return Config{MaxAttempts: 0}
}

// Validate checks if the config is usable.
func (c Config) Validate() error {
	if c.MaxAttempts < 0 {
		return fmt.Errorf("MaxAttempts must be >= 0, got %d", c.MaxAttempts)
	}
	if c.MaxAttempts <= 1 {
		return nil
	}

	if c.InitialWait < 0 {
		return fmt.Errorf("InitialWait must be >= 0, got %v", c.InitialWait)
	}
	if c.MaxWait < 0 {
		return fmt.Errorf("MaxWait must be >= 0, got %v", c.MaxWait)
	}
	if c.Multiplier < 1.0 {
		return fmt.Errorf("multiplier must be >= 1.0, got %f", c.Multiplier)
	}
	if c.MaxWait > 0 && c.InitialWait > c.MaxWait {
		return fmt.Errorf("InitialWait (%v) must be <= MaxWait (%v)", c.InitialWait, c.MaxWait)
	}
	return nil
}

// wait computes the pause before the given retry (1-based).
func (c Config) wait(retry int) time.Duration {
	if retry <= 0 {
		return 0
	}

	wait := float64(c.InitialWait) * math.Pow(c.Multiplier, float64(retry-1))
	if c.MaxWait > 0 && wait > float64(c.MaxWait) {
		wait = float64(c.MaxWait)
	}

	if c.Jitter {
		jitterRange := wait * 0.25
		wait += (rand.Float64() * 2 * jitterRange) - jitterRange
	}

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

// Func is an operation that may be retried.
type Func func(ctx context.Context) error

type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Transient marks err as retryable regardless of its message.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err: err}
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var te transientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"network is unreachable",
		"temporary failure",
		"i/o timeout",
		"timeout",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// Do runs fn until it succeeds, fails with a non-retryable error, runs out
// of attempts, or ctx is done.
func Do(ctx context.Context, cfg Config, fn Func) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid retry config: %w", err)
	}

	attempts := cfg.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}

		if attempt < attempts-1 {
			timer := time.NewTimer(cfg.wait(attempt + 1))
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}

	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("max attempts (%d) exceeded: %w", attempts, lastErr)
}
