// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package appctx

import "context"

type cleanupKey struct{}

// WithCleanup records fn to be run by Cleanup once the command has finished.
// Functions stack; the last one added runs first.
func WithCleanup(ctx context.Context, fn func() error) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if fn == nil {
		return ctx
	}
	prev, _ := ctx.Value(cleanupKey{}).(func() error)
	if prev == nil {
		return context.WithValue(ctx, cleanupKey{}, fn)
	}
	return context.WithValue(ctx, cleanupKey{}, func() error {
		err := fn()
		if prevErr := prev(); err == nil {
			err = prevErr
		}
		return err
	})
}

// Cleanup runs the functions recorded with WithCleanup. It returns the first
// error; every function runs regardless.
func Cleanup(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	fn, _ := ctx.Value(cleanupKey{}).(func() error)
	if fn == nil {
		return nil
	}
	return fn()
}
