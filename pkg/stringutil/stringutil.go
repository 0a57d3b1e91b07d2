// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package stringutil provides small helpers for log- and console-safe text.
package stringutil

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis collapses s onto one line and shortens it to at most maxLength
// runes, ending in "..." when truncated. Surrounding whitespace is trimmed
// first. For maxLength <= 3 the result is cut without an ellipsis.
func Ellipsis(s string, maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")

	if utf8.RuneCountInString(s) <= maxLength {
		return s
	}
	runes := []rune(s)
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	return string(runes[:maxLength-3]) + "..."
}
