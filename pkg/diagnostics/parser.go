package diagnostics

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// diagnosticLine matches "[prefix: ]path:line[:col][:kind:] message".
// Groups: 2 file, 4 line, 6 column, 7 message.
var diagnosticLine = regexp.MustCompile(`^([^:]*: )?((.:)?[^:]*):(\d+)(:(\d+)?)?:(?:\w+:)? (.*)$`)

// ParseOptions controls how matched lines become diagnostics
type ParseOptions struct {
	Dir      string     // Relative file paths are resolved against Dir
	Severity Severity   // Attached to every emitted diagnostic
	Tool     string     // Optional tool name recorded on each diagnostic
	Mapper   PathMapper // nil means IdentityMapper
}

// ParseLine folds one output line into the parse state.
//
// A tab-led line emits nothing and returns a copy of prev with the line
// appended to its message; with no prev it is dropped. prev itself is
// never modified. Any other line either matches the diagnostic pattern, in
// which case the new diagnostic is both emitted and returned as the next
// prev, or is ignored.
func ParseLine(line string, prev *Diagnostic, opts ParseOptions) (emitted *Diagnostic, next *Diagnostic) {
	if strings.HasPrefix(line, "\t") {
		if prev == nil {
			return nil, nil
		}
		folded := *prev
		folded.Message += "\n" + line
		return nil, &folded
	}

	match := diagnosticLine.FindStringSubmatch(line)
	if match == nil {
		return nil, prev
	}

	lineNo, err := strconv.Atoi(match[4])
	if err != nil {
		return nil, prev
	}
	column := 0
	if match[6] != "" {
		column, _ = strconv.Atoi(match[6])
	}

	d := &Diagnostic{
		File:     resolvePath(opts, match[2]),
		Line:     lineNo,
		Column:   column,
		Message:  match[7],
		Severity: opts.Severity,
		Tool:     opts.Tool,
	}
	return d, d
}

// Parse splits text on newlines and returns the diagnostics in the order
// the tool produced them.
func Parse(text string, opts ParseOptions) []Diagnostic {
	result := []Diagnostic{}
	var prev *Diagnostic
	for _, line := range strings.Split(text, "\n") {
		d, next := ParseLine(strings.TrimSuffix(line, "\r"), prev, opts)
		switch {
		case d != nil:
			result = append(result, *d)
		case next != prev:
			// prev is always the last emitted diagnostic
			result[len(result)-1] = *next
		}
		prev = next
	}
	return result
}

func resolvePath(opts ParseOptions, file string) string {
	if !filepath.IsAbs(file) && opts.Dir != "" {
		file = filepath.Join(opts.Dir, file)
	}
	mapper := opts.Mapper
	if mapper == nil {
		mapper = IdentityMapper{}
	}
	return mapper.ToLocal(filepath.Clean(file))
}
