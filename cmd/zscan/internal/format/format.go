// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/workflow"
)

// OutputMode selects how results are rendered.
type OutputMode string

const (
	// ModeJSON renders indented JSON
	ModeJSON OutputMode = "json"
	// ModeYAML renders YAML
	ModeYAML OutputMode = "yaml"
	// ModeTable renders aligned columns for CI logs
	ModeTable OutputMode = "table"
)

// Formatter writes command results in the selected OutputMode.
type Formatter interface {
	// PrintJSON writes data as JSON to stdout
	PrintJSON(data any) error

	// PrintYAML writes data as YAML to stdout
	PrintYAML(data any) error

	// PrintTable outputs rows under headers, or structured data in JSON/YAML mode
	PrintTable(headers []string, rows [][]string) error

	// PrintSummary writes a one-line message; suppressed by --quiet
	PrintSummary(message string) error

	// PrintError reports err on stderr
	PrintError(err error) error

	// PrintBatch renders the outcome of an upload run
	PrintBatch(result workflow.BatchResult) error

	// IsJSON reports whether machine-readable JSON output is selected
	IsJSON() bool
}

type formatter struct {
	stdout io.Writer
	stderr io.Writer
	mode   OutputMode
	quiet  bool
	color  bool
}

// New returns a Formatter writing to stdout and stderr.
func New(stdout, stderr io.Writer, mode OutputMode, quiet, color bool) Formatter {
	return &formatter{
		stdout: stdout,
		stderr: stderr,
		mode:   mode,
		quiet:  quiet,
		color:  color,
	}
}

func (f *formatter) IsJSON() bool { return f.mode == ModeJSON }

// PrintJSON writes data as indented JSON.
func (f *formatter) PrintJSON(data any) error {
	enc := json.NewEncoder(f.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// PrintYAML writes data as YAML with two-space indentation.
func (f *formatter) PrintYAML(data any) error {
	enc := yaml.NewEncoder(f.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

func (f *formatter) printStructured(data any) error {
	if f.mode == ModeYAML {
		return f.PrintYAML(data)
	}
	return f.PrintJSON(data)
}

// PrintTable writes rows under upper-cased headers. In JSON and YAML modes
// each row becomes an object keyed by header.
func (f *formatter) PrintTable(headers []string, rows [][]string) error {
	if f.mode != ModeTable {
		items := make([]map[string]string, 0, len(rows))
		for _, row := range rows {
			item := make(map[string]string)
			for i, header := range headers {
				if i < len(row) {
					item[header] = row[i]
				}
			}
			items = append(items, item)
		}
		return f.printStructured(items)
	}

	w := tabwriter.NewWriter(f.stdout, 0, 0, 2, ' ', 0)

	headerLine := make([]string, len(headers))
	for i, h := range headers {
		headerLine[i] = strings.ToUpper(h)
		if f.color {
			headerLine[i] = color.New(color.Bold).Sprint(headerLine[i])
		}
	}
	if _, err := fmt.Fprintln(w, strings.Join(headerLine, "\t")); err != nil {
		return err
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}

	return w.Flush()
}

// PrintSummary writes message to stdout in table mode and to stderr
// otherwise.
func (f *formatter) PrintSummary(message string) error {
	if f.quiet {
		return nil
	}

	if f.mode != ModeTable {
		// Keep stdout machine-readable.
		_, err := fmt.Fprintln(f.stderr, message)
		return err
	}

	if f.color {
		_, err := color.New(color.FgGreen).Fprintln(f.stdout, message)
		return err
	}

	_, err := fmt.Fprintln(f.stdout, message)
	return err
}

// PrintError writes err to stderr. JSON mode emits a single-line
// {"success":false,"error":...} object so log scrapers can parse it; stdout
// stays reserved for the result document.
func (f *formatter) PrintError(err error) error {
	if err == nil {
		return nil
	}

	if f.mode == ModeJSON {
		return json.NewEncoder(f.stderr).Encode(map[string]any{
			"success": false,
			"error":   err.Error(),
		})
	}

	var writeErr error
	if f.color {
		_, writeErr = color.New(color.FgRed).Fprintf(f.stderr, "Error: %v\n", err)
	} else {
		_, writeErr = fmt.Fprintf(f.stderr, "Error: %v\n", err)
	}

	return writeErr
}

// ValidateMode rejects unknown --output values.
func ValidateMode(mode string) error {
	switch OutputMode(strings.ToLower(mode)) {
	case ModeJSON, ModeYAML, ModeTable:
		return nil
	default:
		return fmt.Errorf("invalid output mode: %s (must be 'table', 'json' or 'yaml')", mode)
	}
}

// ParseMode maps an --output value to an OutputMode, defaulting to table.
func ParseMode(mode string) OutputMode {
	switch strings.ToLower(mode) {
	case "json":
		return ModeJSON
	case "yaml", "yml":
		return ModeYAML
	default:
		return ModeTable
	}
}
