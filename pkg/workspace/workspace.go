// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created in the report directory while a run is active.
const LockFileName = ".zscan.lock"

var (
	// ErrNotDirectory is returned when a path does not exist or is not a directory.
	ErrNotDirectory = errors.New("not a valid directory")

	// ErrLocked is returned when another run holds the directory lock.
	ErrLocked = errors.New("another run is in progress")
)

// ResolveDir returns the absolute form of dir after checking that it exists
// and is a directory.
func ResolveDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", dir, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotDirectory, abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}
	return abs, nil
}

// Prepare ensures dir exists, creating it if needed, and returns its
// absolute path.
func Prepare(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return "", fmt.Errorf("create directory %s: %w", abs, err)
	}
	return abs, nil
}

// Lock is an exclusive, non-blocking lock on a directory.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock file in dir. It fails with ErrLocked if another
// process holds it.
func Acquire(dir string) (*Lock, error) {
	fl := flock.New(filepath.Join(dir, LockFileName))

	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s is locked", ErrLocked, fl.Path())
	}
	return &Lock{fl: fl}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.fl.Path() }

// Release unlocks and removes the lock file.
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", l.fl.Path(), err)
	}
	if err := os.Remove(l.fl.Path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}
