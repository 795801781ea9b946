package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/computerscienceiscool/gocheck/pkg/check"
	"github.com/computerscienceiscool/gocheck/pkg/config"
	"github.com/computerscienceiscool/gocheck/pkg/diagnostics"
	"github.com/computerscienceiscool/gocheck/pkg/history"
	"github.com/computerscienceiscool/gocheck/pkg/imports"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	promptColor  = color.New(color.FgYellow, color.Bold)
	dimColor     = color.New(color.Faint)
)

func severityColor(s diagnostics.Severity) *color.Color {
	switch s {
	case diagnostics.SeverityError:
		return errorColor
	case diagnostics.SeverityWarning:
		return warningColor
	default:
		return infoColor
	}
}

// writeStructured encodes v as JSON or YAML. It reports false for text.
func writeStructured(w io.Writer, format string, v interface{}) (bool, error) {
	switch format {
	case config.FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("failed to encode JSON: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return true, err
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, fmt.Errorf("failed to encode YAML: %w", err)
		}
		return true, enc.Close()
	}
	return false, nil
}

func writeReport(w io.Writer, format string, report check.Report) error {
	if done, err := writeStructured(w, format, report); done {
		return err
	}

	var out strings.Builder
	counts := map[diagnostics.Severity]int{}
	for _, d := range report.Diagnostics {
		counts[d.Severity]++
		c := severityColor(d.Severity)
		out.WriteString(d.String())
		out.WriteString(" ")
		out.WriteString(c.Sprintf("[%s]", d.Severity))
		if d.Tool != "" {
			out.WriteString(dimColor.Sprintf(" (%s)", d.Tool))
		}
		out.WriteString("\n")
	}

	out.WriteString(fmt.Sprintf("%s, %s, %s in %.2fs\n",
		plural(counts[diagnostics.SeverityError], "error"),
		plural(counts[diagnostics.SeverityWarning], "warning"),
		plural(counts[diagnostics.SeverityInfo], "note"),
		report.Duration.Seconds()))

	_, err := io.WriteString(w, out.String())
	return err
}

func writeListing(w io.Writer, format string, listing imports.Listing) error {
	if done, err := writeStructured(w, format, listing); done {
		return err
	}
	for _, p := range listing.Packages {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	return nil
}

func writeHistory(w io.Writer, format string, runs []history.Run) error {
	if runs == nil {
		runs = []history.Run{}
	}
	if done, err := writeStructured(w, format, runs); done {
		return err
	}
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No check runs recorded")
		return err
	}

	var out strings.Builder
	for _, run := range runs {
		out.WriteString(fmt.Sprintf("%s  %-9s %s  %s %s %s  %.2fs\n",
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Mode,
			run.File,
			errorColor.Sprintf("E%d", run.Errors),
			warningColor.Sprintf("W%d", run.Warnings),
			infoColor.Sprintf("I%d", run.Infos),
			run.Duration.Seconds()))
		if len(run.Missing) > 0 {
			out.WriteString(dimColor.Sprintf("    missing: %s\n", strings.Join(run.Missing, ", ")))
		}
		if len(run.Failures) > 0 {
			out.WriteString(dimColor.Sprintf("    failed: %s\n", strings.Join(run.Failures, ", ")))
		}
	}
	_, err := io.WriteString(w, out.String())
	return err
}

// writeProblems prints install prompts for missing tools and a note for
// every tool that could not run. Each missing tool is reported once.
func writeProblems(w io.Writer, missing []*check.MissingToolError, failures []check.ToolFailure) {
	seen := map[string]bool{}
	for _, m := range missing {
		if seen[m.Tool] {
			continue
		}
		seen[m.Tool] = true
		promptColor.Fprintln(w, m.Prompt())
	}
	for _, f := range failures {
		infoColor.Fprintf(w, "%s did not run: %v\n", f.Tool, f.Err)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
