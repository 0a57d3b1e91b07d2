// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/workspace"
)

// Discover returns the regular files in dir whose base name matches
// pattern (`*` and `?` wildcards, `[...]` classes), ordered by name.
// Matching directories are skipped, as are the run lock and partial report
// downloads this tool writes itself. More than maxFiles matches is an error.
func Discover(dir, pattern string, maxFiles int, logger zerolog.Logger) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, pattern, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDirectory, err)
	}

	var files []string
	for _, entry := range entries {
		if ok, _ := filepath.Match(pattern, entry.Name()); !ok || ownFile(entry.Name()) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			logger.Info().Str("path", path).Msg("Matched entry does not exist or is a directory. Skipping.")
			continue
		}
		files = append(files, path)
	}

	logger.Info().Int("count", len(files)).Str("pattern", pattern).Msg("Found matching files to upload")

	if maxFiles > 0 && len(files) > maxFiles {
		return nil, fmt.Errorf("%w: %d matches, no more than %d files are allowed", ErrTooManyFiles, len(files), maxFiles)
	}
	return files, nil
}

// ownFile reports whether name is a file a run creates next to the binaries.
func ownFile(name string) bool {
	if name == workspace.LockFileName {
		return true
	}
	return strings.HasPrefix(name, ".report-") && strings.HasSuffix(name, ".part")
}
