// Copyright 2025 zScan Plugin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/Zimperium/zscan-plugin-gocd/pkg/stringutil"
	"github.com/Zimperium/zscan-plugin-gocd/pkg/workflow"
)

// maxErrorWidth bounds the error column; the JSON and YAML modes keep the
// full message.
const maxErrorWidth = 80

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// BatchView is the machine-readable form of a run.
type BatchView struct {
	RunID        string     `json:"run_id" yaml:"run_id"`
	Success      bool       `json:"success" yaml:"success"`
	SuccessCount int        `json:"success_count" yaml:"success_count"`
	FailedCount  int        `json:"failed_count" yaml:"failed_count"`
	Message      string     `json:"message" yaml:"message"`
	Files        []FileView `json:"files" yaml:"files"`
}

// FileView is the machine-readable form of one file's outcome.
type FileView struct {
	Path         string `json:"path" yaml:"path"`
	Stage        string `json:"stage" yaml:"stage"`
	AppID        string `json:"app_id,omitempty" yaml:"app_id,omitempty"`
	BuildID      string `json:"build_id,omitempty" yaml:"build_id,omitempty"`
	AssessmentID string `json:"assessment_id,omitempty" yaml:"assessment_id,omitempty"`
	ReportPath   string `json:"report_path,omitempty" yaml:"report_path,omitempty"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewBatchView converts a run result for output.
func NewBatchView(result workflow.BatchResult) BatchView {
	view := BatchView{
		RunID:        result.RunID,
		Success:      result.Success,
		SuccessCount: result.SuccessCount,
		FailedCount:  len(result.Failed()),
		Message:      result.Message,
		Files:        make([]FileView, 0, len(result.Files)),
	}
	for _, f := range result.Files {
		fv := FileView{
			Path:         f.Path,
			Stage:        string(f.Stage),
			AppID:        f.AppID,
			BuildID:      f.BuildID,
			AssessmentID: f.AssessmentID,
			ReportPath:   f.ReportPath,
		}
		if f.Err != nil {
			fv.Error = f.Err.Error()
		}
		view.Files = append(view.Files, fv)
	}
	return view
}

// PrintBatch prints the run result.
// Example table output:
//
//	╭───────────────────────────────────────────────────╮
//	│ Successfully uploaded 1 binaries for analysis.    │
//	│ run 6f1c…  ✓ 1  ✗ 1                               │
//	╰───────────────────────────────────────────────────╯
//	FILE        STAGE  ASSESSMENT  REPORT
//	app.apk     done   A1          report-A1-json.json
//	other.apk   upload -           upload: status 500
func (f *formatter) PrintBatch(result workflow.BatchResult) error {
	view := NewBatchView(result)

	if f.mode != ModeTable {
		return f.printStructured(view)
	}

	if f.quiet {
		_, err := fmt.Fprintln(f.stdout, view.Message)
		return err
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(view.Message))
	if view.RunID != "" {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("run %s  %s  %s", view.RunID,
			f.colored(color.FgGreen, "✓ %d", view.SuccessCount),
			f.colored(color.FgRed, "✗ %d", view.FailedCount)))
	}
	if _, err := fmt.Fprintln(f.stdout, boxStyle.Render(sb.String())); err != nil {
		return err
	}

	if len(view.Files) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(view.Files))
	for _, fv := range view.Files {
		detail := fv.ReportPath
		if fv.Error != "" {
			detail = stringutil.Ellipsis(fv.Error, maxErrorWidth)
		}
		rows = append(rows, []string{fv.Path, f.stageLabel(fv), orDash(fv.AssessmentID), orDash(detail)})
	}
	return f.PrintTable([]string{"file", "stage", "assessment", "report"}, rows)
}

func (f *formatter) stageLabel(fv FileView) string {
	switch {
	case fv.Error == "":
		return f.colored(color.FgGreen, "%s", fv.Stage)
	case fv.Stage == string(workflow.StageSkipped):
		return f.colored(color.FgYellow, "%s", fv.Stage)
	default:
		return f.colored(color.FgRed, "%s", fv.Stage)
	}
}

func (f *formatter) colored(attr color.Attribute, format string, args ...any) string {
	if !f.color {
		return fmt.Sprintf(format, args...)
	}
	return color.New(attr).Sprintf(format, args...)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
