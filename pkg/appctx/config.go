// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package appctx carries the values a command resolves once at startup
// (the config manager and the config file it was read from) on its context.
package appctx

import (
	"context"
	"errors"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/config"
)

// ErrNoConfig is returned by Current when no manager was stored.
var ErrNoConfig = errors.New("configuration not loaded")

type ctxKey int

const (
	managerKey ctxKey = iota
	configFileKey
)

// WithConfig stores the config manager and the file it was loaded from.
// file is empty when no config file was found.
func WithConfig(ctx context.Context, manager *config.Manager, file string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, managerKey, manager)
	return context.WithValue(ctx, configFileKey, file)
}

// Config retrieves the config manager from ctx.
func Config(ctx context.Context) (*config.Manager, bool) {
	if ctx == nil {
		return nil, false
	}
	mgr, ok := ctx.Value(managerKey).(*config.Manager)
	return mgr, ok && mgr != nil
}

// ConfigFile returns the config file recorded by WithConfig, or "".
func ConfigFile(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	file, _ := ctx.Value(configFileKey).(string)
	return file
}

// Current returns a snapshot of the configuration held by the manager on ctx.
func Current(ctx context.Context) (config.Config, error) {
	mgr, ok := Config(ctx)
	if !ok {
		return config.Config{}, ErrNoConfig
	}
	return mgr.Get(), nil
}
