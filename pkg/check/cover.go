package check

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/tools/cover"

	"github.com/computerscienceiscool/gocheck/pkg/diagnostics"
)

func parseCoverProfile(data []byte) ([]*cover.Profile, error) {
	profiles, err := cover.ParseProfilesFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid coverage profile: %w", err)
	}
	return profiles, nil
}

// uncovered turns the never-executed blocks of file into info diagnostics.
// Profile entries use import paths, so they are matched on the base name.
func uncovered(profiles []*cover.Profile, file string) []diagnostics.Diagnostic {
	base := filepath.Base(file)
	var diags []diagnostics.Diagnostic
	for _, p := range profiles {
		if p.FileName != base && !strings.HasSuffix(p.FileName, "/"+base) {
			continue
		}
		for _, b := range p.Blocks {
			if b.Count != 0 {
				continue
			}
			msg := fmt.Sprintf("not covered by tests (lines %d-%d)", b.StartLine, b.EndLine)
			if b.StartLine == b.EndLine {
				msg = fmt.Sprintf("not covered by tests (line %d)", b.StartLine)
			}
			diags = append(diags, diagnostics.Diagnostic{
				File:     file,
				Line:     b.StartLine,
				Column:   b.StartCol,
				Message:  msg,
				Severity: diagnostics.SeverityInfo,
				Tool:     "cover",
			})
		}
	}
	return diags
}
